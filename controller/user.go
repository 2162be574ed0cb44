package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zapchat/model"
	"zapchat/platform"
	"zapchat/service"
)

// UserController ...
type UserController struct{}

var userService = service.UserService{}
var tokenService = service.TokenService{}

var logger = platform.Logger

func (ctrl UserController) Login(c *gin.Context) {
	logger.Infof("[%s] Handling user login request", c.GetString("requestId"))

	var input struct {
		FullName       string `json:"full_name" binding:"required"`
		WhatsappNumber string `json:"whatsapp_number" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, token, err := userService.Login(&service.LoginInput{
		FullName:       input.FullName,
		WhatsappNumber: input.WhatsappNumber,
	})
	if err != nil {
		logger.Warnf("[%s] Login failed for %s: %s", c.GetString("requestId"), input.WhatsappNumber, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	logger.Infof("[%s] User %d login successfully", c.GetString("requestId"), user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (ctrl UserController) AdminLogin(c *gin.Context) {
	logger.Infof("[%s] Handling admin login request", c.GetString("requestId"))

	var input struct {
		WhatsappNumber string `json:"whatsapp_number" binding:"required"`
		Password       string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, token, err := userService.AdminLogin(input.WhatsappNumber, input.Password)
	if err != nil {
		logger.Warnf("[%s] Admin login failed for %s: %s", c.GetString("requestId"), input.WhatsappNumber, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	logger.Infof("[%s] Admin %d login successfully", c.GetString("requestId"), user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Refresh re-issues a token for the bearer of a still-valid one.
func (ctrl UserController) Refresh(c *gin.Context) {
	details, err := tokenService.ExtractTokenMetadata(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	user, err := model.GetUserByID(details.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	td, err := tokenService.CreateToken(user)
	if err != nil {
		logger.Warnf("[%s] Failed to refresh token for user %d: %s", c.GetString("requestId"), user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": td.AccessToken})
}
