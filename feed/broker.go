package feed

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"zapchat/model"
)

const subscriptionBuffer = 64

// Broker is the in-process change feed: every persisted message is
// published here and fanned out to the subscriptions of its conversation.
// It stands in for a hosted change-notification stream, so delivery is
// best-effort: a subscriber that cannot keep up drops events rather than
// blocking the writer.
type Broker struct {
	logger *logrus.Logger

	mu    sync.RWMutex
	rooms map[uint]map[string]*Subscription
}

func NewBroker(logger *logrus.Logger) *Broker {
	return &Broker{
		logger: logger,
		rooms:  make(map[uint]map[string]*Subscription),
	}
}

// Subscription is one live registration for a conversation's insert events.
type Subscription struct {
	id             string
	conversationID uint
	broker         *Broker
	handler        func(model.Message)

	events  chan model.Message
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// Subscribe registers handler for every message inserted into the
// conversation. The handler runs on a dedicated goroutine, one event at a
// time, in publish order.
func (b *Broker) Subscribe(conversationID uint, handler func(model.Message)) (*Subscription, error) {
	sub := &Subscription{
		id:             uuid.NewString(),
		conversationID: conversationID,
		broker:         b,
		handler:        handler,
		events:         make(chan model.Message, subscriptionBuffer),
		done:           make(chan struct{}),
		stopped:        make(chan struct{}),
	}

	b.mu.Lock()
	room := b.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Subscription)
		b.rooms[conversationID] = room
	}
	room[sub.id] = sub
	b.mu.Unlock()

	go sub.pump()
	return sub, nil
}

// PublishMessage fans the inserted row out to the subscriptions of its
// conversation. Implements model.MessagePublisher.
func (b *Broker) PublishMessage(msg model.Message) {
	b.mu.RLock()
	room := b.rooms[msg.ConversationID]
	for _, sub := range room {
		select {
		case sub.events <- msg:
		default:
			b.logger.Warnf("[conversation %d] feed subscriber %s lagging, event dropped",
				msg.ConversationID, sub.id)
		}
	}
	b.mu.RUnlock()
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	room := b.rooms[sub.conversationID]
	if room != nil {
		delete(room, sub.id)
		if len(room) == 0 {
			delete(b.rooms, sub.conversationID)
		}
	}
	b.mu.Unlock()
}

func (s *Subscription) pump() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.events:
			select {
			case <-s.done:
				return
			default:
			}
			s.handler(msg)
		}
	}
}

// Close unregisters the subscription and waits for the pump goroutine to
// exit, so once it returns the handler will never run again. It must not
// be called from inside the handler. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.remove(s)
		close(s.done)
		<-s.stopped
	})
}
