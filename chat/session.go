package chat

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"zapchat/model"
)

// State is the send pipeline phase of a session.
type State int

const (
	// StateIdle accepts a new send.
	StateIdle State = iota
	// StateSending means the user message is being persisted.
	StateSending
	// StateAwaitingCompletion means the user message is durable and the
	// assistant reply is pending. This is the visible typing signal.
	StateAwaitingCompletion
)

// Session owns the live view of one conversation: the message cache, the
// feed subscription and the typing/sending state machine. At most one send
// runs at a time.
type Session struct {
	conversationID uint
	userID         uint

	store     Store
	completer Completer
	cache     *Cache
	sub       Subscription
	logger    *logrus.Logger

	mu      sync.Mutex
	state   State
	lastErr error

	updates chan struct{}
}

func newSession(conversationID, userID uint, store Store, completer Completer, logger *logrus.Logger) *Session {
	s := &Session{
		conversationID: conversationID,
		userID:         userID,
		store:          store,
		completer:      completer,
		logger:         logger,
		updates:        make(chan struct{}, 1),
	}
	s.cache = NewCache(s.signalUpdate)
	return s
}

func (s *Session) signalUpdate() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Updates signals (debounced) that the message sequence changed.
func (s *Session) Updates() <-chan struct{} { return s.updates }

// Messages returns the ordered transcript as currently cached.
func (s *Session) Messages() []model.Message { return s.cache.Messages() }

// Typing reports whether the assistant reply is pending.
func (s *Session) Typing() bool { return s.currentState() == StateAwaitingCompletion }

// InFlight reports whether a send is in progress; the input surface is
// expected to disable submission while true.
func (s *Session) InFlight() bool { return s.currentState() != StateIdle }

// LastError returns the failure of the most recent send, if any. It is
// cleared when the next send is accepted.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateIdle
	s.lastErr = err
	s.mu.Unlock()
}

// Send starts the send pipeline for text and returns whether it was
// accepted. It is a no-op while a previous send is still in flight: the
// single-flight guard is the only backpressure, and it guarantees at most
// one completion call per conversation at a time. The outcome is observed
// via Typing, InFlight, LastError and the message sequence.
func (s *Session) Send(text string) bool {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return false
	}
	s.state = StateSending
	s.lastErr = nil
	s.mu.Unlock()

	go s.run(context.Background(), text)
	return true
}

func (s *Session) run(ctx context.Context, text string) {
	// History is captured before the optimistic append: the window is built
	// from the prior transcript plus the new message exactly once.
	history := s.cache.Messages()

	userMsg := &model.Message{
		ConversationID: s.conversationID,
		UserID:         s.userID,
		Sender:         model.SenderUser,
		Content:        text,
	}
	if err := s.store.InsertMessage(ctx, userMsg); err != nil {
		err = PersistError("insert user message", err)
		s.logger.Warnf("[conversation %d] send aborted, %s", s.conversationID, err)
		s.fail(err)
		return
	}
	s.cache.AppendIfNew(*userMsg)
	s.updateSummary(ctx, userMsg.Content, userMsg.CreatedAt)

	// User message is durable; from here on a failure leaves it visible
	// and simply produces no reply.
	s.setState(StateAwaitingCompletion)

	window := BuildWindow(history, *userMsg)
	reply, err := s.completer.Complete(ctx, text, window)
	if err != nil {
		s.logger.Warnf("[conversation %d] completion failed, %s", s.conversationID, err)
		s.fail(err)
		return
	}

	assistantMsg := &model.Message{
		ConversationID: s.conversationID,
		UserID:         s.userID,
		Sender:         model.SenderAssistant,
		Content:        reply,
		IsRead:         true,
	}
	if err := s.store.InsertMessage(ctx, assistantMsg); err != nil {
		err = PersistError("insert assistant message", err)
		s.logger.Warnf("[conversation %d] reply lost, %s", s.conversationID, err)
		s.fail(err)
		return
	}
	s.cache.AppendIfNew(*assistantMsg)
	s.updateSummary(ctx, assistantMsg.Content, assistantMsg.CreatedAt)

	s.setState(StateIdle)
}

// updateSummary is best-effort denormalization; a failure never unwinds the
// already-persisted message.
func (s *Session) updateSummary(ctx context.Context, text string, at time.Time) {
	if err := s.store.UpdateConversationSummary(ctx, s.conversationID, text, at); err != nil {
		s.logger.Warnf("[conversation %d] summary update failed, %s", s.conversationID, err)
	}
}

// Close tears down the feed subscription and freezes the cache. Events
// delivered to a stale handler afterwards mutate nothing.
func (s *Session) Close() {
	if s.sub != nil {
		s.sub.Close()
	}
	s.cache.Close()
}
