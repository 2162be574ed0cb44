package controller

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"zapchat/chat"
	"zapchat/feed"
	"zapchat/model"
)

// ChatController serves the conversation view: transcript, send entry point,
// state signals and the realtime event socket.
type ChatController struct {
	store    *model.ChatStore
	manager  *chat.Manager
	broker   *feed.Broker
	upgrader websocket.Upgrader
}

func NewChatController(store *model.ChatStore, manager *chat.Manager, broker *feed.Broker) *ChatController {
	return &ChatController{
		store:   store,
		manager: manager,
		broker:  broker,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (ctrl *ChatController) conversation(c *gin.Context) (*model.Conversation, bool) {
	userID := c.GetUint("userID")
	conv, err := ctrl.store.GetOrCreateConversation(c.Request.Context(), userID)
	if err != nil {
		logger.Warnf("[%s] Failed to load conversation for user %d: %s", c.GetString("requestId"), userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return nil, false
	}
	return conv, true
}

func (ctrl *ChatController) GetConversation(c *gin.Context) {
	conv, ok := ctrl.conversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (ctrl *ChatController) ListMessages(c *gin.Context) {
	conv, ok := ctrl.conversation(c)
	if !ok {
		return
	}
	messages, err := ctrl.store.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		logger.Warnf("[%s] Failed to list messages for conversation %d: %s", c.GetString("requestId"), conv.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// SendMessage is fire-and-forget: 202 means the pipeline took the message,
// the outcome shows up in the transcript and the state signals. 409 means a
// send is already in flight for this conversation.
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	conv, ok := ctrl.conversation(c)
	if !ok {
		return
	}

	sess, err := ctrl.manager.Acquire(c.Request.Context(), conv.ID, c.GetUint("userID"))
	if err != nil {
		logger.Warnf("[%s] Failed to open session for conversation %d: %s", c.GetString("requestId"), conv.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		return
	}

	if !sess.Send(input.Content) {
		c.JSON(http.StatusConflict, gin.H{"error": "A message is already in flight"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sending": true})
}

// State exposes the sending/typing signals plus the last send failure.
func (ctrl *ChatController) State(c *gin.Context) {
	conv, ok := ctrl.conversation(c)
	if !ok {
		return
	}
	sess, err := ctrl.manager.Acquire(c.Request.Context(), conv.ID, c.GetUint("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open conversation"})
		return
	}

	lastError := ""
	if err := sess.LastError(); err != nil {
		lastError = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"sending":    sess.InFlight(),
		"typing":     sess.Typing(),
		"last_error": lastError,
	})
}

// Subscribe upgrades to a websocket and forwards the conversation's
// Message-insert events until the client hangs up.
func (ctrl *ChatController) Subscribe(c *gin.Context) {
	conv, ok := ctrl.conversation(c)
	if !ok {
		return
	}

	ws, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[%s] Websocket upgrade failed: %s", c.GetString("requestId"), err)
		return
	}
	conn := feed.NewConn(ws)
	conn.Start()

	sub, err := ctrl.broker.Subscribe(conv.ID, func(msg model.Message) {
		payload, err := json.Marshal(msg)
		if err != nil {
			return
		}
		_ = conn.Send(payload)
	})
	if err != nil {
		logger.Warnf("[%s] Feed subscription failed for conversation %d: %s", c.GetString("requestId"), conv.ID, err)
		conn.Close(websocket.CloseInternalServerErr, "subscription failed")
		return
	}

	// Block until the peer closes; the read loop also services control frames.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	sub.Close()
	conn.Close(websocket.CloseNormalClosure, "bye")
}
