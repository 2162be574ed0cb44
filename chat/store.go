package chat

import (
	"context"
	"time"

	"zapchat/model"
)

// Store is the slice of the durable store the pipeline needs. model.ChatStore
// is the production implementation; tests inject doubles.
type Store interface {
	InsertMessage(ctx context.Context, msg *model.Message) error
	ListMessages(ctx context.Context, conversationID uint) ([]model.Message, error)
	UpdateConversationSummary(ctx context.Context, conversationID uint, lastMessage string, at time.Time) error
}

// Subscription is a live change-feed registration. Close tears it down;
// after Close returns no further events reach the handler.
type Subscription interface {
	Close()
}

// Feed delivers Message-insert events scoped to one conversation.
type Feed interface {
	Subscribe(conversationID uint, handler func(model.Message)) (Subscription, error)
}

// FeedFunc adapts a plain function to the Feed interface.
type FeedFunc func(conversationID uint, handler func(model.Message)) (Subscription, error)

func (f FeedFunc) Subscribe(conversationID uint, handler func(model.Message)) (Subscription, error) {
	return f(conversationID, handler)
}
