package model

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message rows are insert-only. The ID is assigned by the database, so a
// message has no usable identity until the insert returns.
type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint      `json:"conversation_id" gorm:"index:idx_conversation_id_created_at"`
	UserID         uint      `json:"user_id"`
	Sender         string    `gorm:"type:varchar(16)" json:"sender"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_conversation_id_created_at"`
}
