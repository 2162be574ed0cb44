package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"zapchat/chat"
	"zapchat/controller"
	"zapchat/feed"
	"zapchat/model"
	"zapchat/platform"
	"zapchat/service"

	_uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware ...
// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

// RequestIDMiddleware ...
// Generate a unique ID and attach it to each request for future reference or use
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := _uuid.New()
		c.Writer.Header().Set("X-Request-Id", uuid.String())
		c.Set("requestId", uuid.String())
		c.Next()
	}
}

func LogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()
		requestId := c.GetString("requestId")

		logrus.Infof(
			" [%s] %d | %v | %s | %s | %s | %s ",
			requestId,
			status,
			latency,
			clientIP,
			method,
			path,
			userAgent,
		)
	}
}

var tokenService = service.TokenService{}

// TokenAuthMiddleware ...
// JWT authentication middleware: validates the access token and attaches
// the caller's identity to the request context.
func TokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		details, err := tokenService.ExtractTokenMetadata(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("userID", details.UserID)
		c.Set("isAdmin", details.IsAdmin)
		c.Next()
	}
}

func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

func completionTimeout() time.Duration {
	seconds, err := strconv.Atoi(os.Getenv("COMPLETION_TIMEOUT_SECONDS"))
	if err != nil || seconds <= 0 {
		return chat.DefaultCompletionTimeout
	}
	return time.Duration(seconds) * time.Second
}

func main() {
	fmt.Println("Server started...")

	//Load the .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("failed to load the env file")
	}

	platform.InitFile("./log", "gin")

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LogMiddleware())

	//init database
	platform.InitDB()
	model.InstallDB()

	platform.InitLLMClient()

	broker := feed.NewBroker(platform.Logger)
	store := model.NewChatStore(platform.DB, broker)
	completer := chat.NewCompletionClient(
		os.Getenv("COMPLETION_URL"),
		os.Getenv("COMPLETION_TOKEN"),
		completionTimeout(),
	)
	manager := chat.NewManager(store, chat.FeedFunc(
		func(conversationID uint, handler func(model.Message)) (chat.Subscription, error) {
			return broker.Subscribe(conversationID, handler)
		}), completer, platform.Logger)

	v1 := r.Group("/v1")
	{
		user := new(controller.UserController)
		v1.POST("/user/login", user.Login)
		v1.POST("/user/admin/login", user.AdminLogin)

		//Refresh the token
		v1.POST("/token/refresh", user.Refresh)

		// Conversation view
		chatCtrl := controller.NewChatController(store, manager, broker)
		v1.GET("/conversation", TokenAuthMiddleware(), chatCtrl.GetConversation)
		v1.GET("/messages", TokenAuthMiddleware(), chatCtrl.ListMessages)
		v1.POST("/messages", TokenAuthMiddleware(), chatCtrl.SendMessage)
		v1.GET("/state", TokenAuthMiddleware(), chatCtrl.State)
		v1.GET("/ws", TokenAuthMiddleware(), chatCtrl.Subscribe)

		// Completion backend
		ai := controller.NewAIController(&service.PersonaService{})
		v1.POST("/chat-ai", ai.ChatAI)

		// Admin browsing
		admin := controller.NewAdminController(store)
		adminGroup := v1.Group("/admin", TokenAuthMiddleware(), AdminOnlyMiddleware())
		adminGroup.GET("/users", admin.ListUsers)
		adminGroup.GET("/users/:id/messages", admin.UserMessages)
	}

	digest := service.NewDigestService(store)
	c := cron.New()
	c.AddFunc("0 7 * * *", func() {
		_ = digest.SendDailyDigest()
	})
	c.Start()

	defer manager.Shutdown()

	port := os.Getenv("PORT")
	r.Run(":" + port)
}
