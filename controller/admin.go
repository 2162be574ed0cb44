package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"zapchat/model"
)

// AdminController lets a privileged user browse end users and their
// transcripts.
type AdminController struct {
	store *model.ChatStore
}

func NewAdminController(store *model.ChatStore) *AdminController {
	return &AdminController{store: store}
}

func (ctrl *AdminController) ListUsers(c *gin.Context) {
	users, err := ctrl.store.ListUsers(c.Request.Context())
	if err != nil {
		logger.Warnf("[%s] Failed to list users: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (ctrl *AdminController) UserMessages(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	conv, err := ctrl.store.GetOrCreateConversation(c.Request.Context(), uint(userID))
	if err != nil {
		logger.Warnf("[%s] Failed to load conversation for user %d: %s", c.GetString("requestId"), userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return
	}

	messages, err := ctrl.store.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		logger.Warnf("[%s] Failed to list messages for conversation %d: %s", c.GetString("requestId"), conv.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv, "messages": messages})
}
