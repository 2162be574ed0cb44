package model

import "time"

// Conversation is the single thread between one user and the assistant.
// LastMessage and LastMessageTime are denormalized from the newest Message;
// UnreadCount is maintained by the presentation layer, never by the pipeline.
type Conversation struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Title           string    `gorm:"type:varchar(255)" json:"title"`
	AvatarURL       string    `gorm:"type:varchar(512)" json:"avatar_url"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
