package model

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// MessagePublisher receives every successfully inserted Message. The feed
// broker implements it; the indirection keeps model free of feed imports.
type MessagePublisher interface {
	PublishMessage(msg Message)
}

// ChatStore is the typed access layer for conversations and messages.
// It is constructed explicitly and injected so the pipeline can run
// against a test double.
type ChatStore struct {
	db  *gorm.DB
	pub MessagePublisher
}

func NewChatStore(db *gorm.DB, pub MessagePublisher) *ChatStore {
	return &ChatStore{db: db, pub: pub}
}

// InsertMessage persists msg and fills in the database-assigned ID and
// creation timestamp. The insert is announced on the feed after commit.
func (s *ChatStore) InsertMessage(ctx context.Context, msg *Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	if s.pub != nil {
		s.pub.PublishMessage(*msg)
	}
	return nil
}

// ListMessages returns the transcript ordered by creation time. The ID is
// the tiebreaker so ordering stays stable within one timestamp.
func (s *ChatStore) ListMessages(ctx context.Context, conversationID uint) ([]Message, error) {
	var messages []Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetOrCreateConversation returns the user's conversation, creating it on
// first access.
func (s *ChatStore) GetOrCreateConversation(ctx context.Context, userID uint) (*Conversation, error) {
	var conv Conversation
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	conv = Conversation{
		UserID: userID,
		Title:  "Dr. Juan",
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *ChatStore) GetConversation(ctx context.Context, id uint) (*Conversation, error) {
	var conv Conversation
	if err := s.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateConversationSummary denormalizes the newest message onto the
// conversation row. Last write wins.
func (s *ChatStore) UpdateConversationSummary(ctx context.Context, conversationID uint, lastMessage string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":      lastMessage,
			"last_message_time": at,
		}).Error
}

func (s *ChatStore) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("last_login_at desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListMessagesSince returns all messages for a user created after the cutoff,
// oldest first. Used by the daily digest.
func (s *ChatStore) ListMessagesSince(ctx context.Context, userID uint, since time.Time) ([]Message, error) {
	var messages []Message
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at asc, id asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
