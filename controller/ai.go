package controller

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"zapchat/chat"
	"zapchat/service"
)

// AIController serves the completion endpoint the pipeline's completion
// client posts to. It mirrors the contract of the hosted function it
// replaces: bearer token, {message, conversationHistory} in, {response} out.
type AIController struct {
	persona *service.PersonaService
}

func NewAIController(persona *service.PersonaService) *AIController {
	return &AIController{persona: persona}
}

func (ctrl *AIController) authorized(c *gin.Context) bool {
	token := os.Getenv("COMPLETION_TOKEN")
	if token == "" {
		return true
	}
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ") == token
}

func (ctrl *AIController) ChatAI(c *gin.Context) {
	if !ctrl.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Message             string      `json:"message" binding:"required"`
		ConversationHistory []chat.Turn `json:"conversationHistory"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	reply, err := ctrl.persona.Reply(c.Request.Context(), input.Message, input.ConversationHistory)
	if err != nil {
		logger.Warnf("[%s] Completion failed: %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get response from AI"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
