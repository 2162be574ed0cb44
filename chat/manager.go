package chat

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"zapchat/model"
)

// Manager hands out at most one Session per conversation, so there is never
// more than one live feed subscription or in-flight send for the same
// thread no matter how many requests hit it.
type Manager struct {
	store     Store
	feed      Feed
	completer Completer
	logger    *logrus.Logger

	mu       sync.Mutex
	sessions map[uint]*Session
}

func NewManager(store Store, feed Feed, completer Completer, logger *logrus.Logger) *Manager {
	return &Manager{
		store:     store,
		feed:      feed,
		completer: completer,
		logger:    logger,
		sessions:  make(map[uint]*Session),
	}
}

// Acquire returns the live session for the conversation, creating it on
// first access: the transcript is loaded into the cache and the feed
// subscription established. A subscription failure is degraded, not fatal:
// the session still works from the initial load plus local echoes, and
// cross-device updates are missed until a reload.
func (m *Manager) Acquire(ctx context.Context, conversationID, userID uint) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[conversationID]; ok {
		m.mu.Unlock()
		return sess, nil
	}
	m.mu.Unlock()

	sess := newSession(conversationID, userID, m.store, m.completer, m.logger)

	history, err := m.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, PersistError("load messages", err)
	}
	for _, msg := range history {
		sess.cache.AppendIfNew(msg)
	}

	sub, err := m.feed.Subscribe(conversationID, func(msg model.Message) {
		sess.cache.AppendIfNew(msg)
	})
	if err != nil {
		m.logger.Warnf("[conversation %d] feed subscription failed, realtime sync degraded, %s",
			conversationID, SubscriptionError("subscribe", err))
	} else {
		sess.sub = sub
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[conversationID]; ok {
		// Lost the race against a concurrent Acquire; keep the winner.
		sess.Close()
		return existing, nil
	}
	m.sessions[conversationID] = sess
	return sess, nil
}

// Release tears down the conversation's session: the subscription is
// closed and the frozen cache ignores any stale event still in flight.
func (m *Manager) Release(conversationID uint) {
	m.mu.Lock()
	sess, ok := m.sessions[conversationID]
	delete(m.sessions, conversationID)
	m.mu.Unlock()
	if ok {
		sess.Close()
	}
}

// Shutdown releases every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uint]*Session)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}
