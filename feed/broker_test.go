package feed

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapchat/model"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type collector struct {
	mu       sync.Mutex
	received []model.Message
}

func (c *collector) handle(msg model.Message) {
	c.mu.Lock()
	c.received = append(c.received, msg)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.received)
}

func (c *collector) messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.received))
	copy(out, c.received)
	return out
}

func event(id, conversationID uint) model.Message {
	return model.Message{
		ID:             id,
		ConversationID: conversationID,
		Sender:         model.SenderUser,
		Content:        "evento",
		CreatedAt:      time.Now(),
	}
}

func TestBrokerDeliversToSubscriber(t *testing.T) {
	b := NewBroker(quietLogger())
	c := &collector{}

	sub, err := b.Subscribe(1, c.handle)
	require.NoError(t, err)
	defer sub.Close()

	b.PublishMessage(event(10, 1))
	require.Eventually(t, func() bool { return c.count() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, uint(10), c.messages()[0].ID)
}

func TestBrokerScopedByConversation(t *testing.T) {
	b := NewBroker(quietLogger())
	one := &collector{}
	two := &collector{}

	subOne, err := b.Subscribe(1, one.handle)
	require.NoError(t, err)
	defer subOne.Close()
	subTwo, err := b.Subscribe(2, two.handle)
	require.NoError(t, err)
	defer subTwo.Close()

	b.PublishMessage(event(10, 1))
	b.PublishMessage(event(11, 1))
	b.PublishMessage(event(20, 2))

	require.Eventually(t, func() bool { return one.count() == 2 && two.count() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, uint(20), two.messages()[0].ID)
}

func TestBrokerDeliversInPublishOrder(t *testing.T) {
	b := NewBroker(quietLogger())
	c := &collector{}

	sub, err := b.Subscribe(1, c.handle)
	require.NoError(t, err)
	defer sub.Close()

	for i := uint(1); i <= 10; i++ {
		b.PublishMessage(event(i, 1))
	}
	require.Eventually(t, func() bool { return c.count() == 10 },
		time.Second, 5*time.Millisecond)
	for i, msg := range c.messages() {
		assert.Equal(t, uint(i+1), msg.ID)
	}
}

func TestBrokerTeardown(t *testing.T) {
	b := NewBroker(quietLogger())
	c := &collector{}

	sub, err := b.Subscribe(1, c.handle)
	require.NoError(t, err)

	b.PublishMessage(event(10, 1))
	require.Eventually(t, func() bool { return c.count() == 1 },
		time.Second, 5*time.Millisecond)

	sub.Close()

	// Once Close returns, later publishes never reach the handler.
	b.PublishMessage(event(11, 1))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, c.count())
}

func TestBrokerCloseIdempotent(t *testing.T) {
	b := NewBroker(quietLogger())
	sub, err := b.Subscribe(1, func(model.Message) {})
	require.NoError(t, err)

	sub.Close()
	sub.Close()
}

func TestBrokerIndependentSubscriptionsSameConversation(t *testing.T) {
	b := NewBroker(quietLogger())
	a := &collector{}
	c := &collector{}

	subA, err := b.Subscribe(1, a.handle)
	require.NoError(t, err)
	subC, err := b.Subscribe(1, c.handle)
	require.NoError(t, err)
	defer subC.Close()

	b.PublishMessage(event(10, 1))
	require.Eventually(t, func() bool { return a.count() == 1 && c.count() == 1 },
		time.Second, 5*time.Millisecond)

	// Closing one subscription leaves the other delivering.
	subA.Close()
	b.PublishMessage(event(11, 1))
	require.Eventually(t, func() bool { return c.count() == 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, a.count())
}

func TestBrokerPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker(quietLogger())
	b.PublishMessage(event(10, 1))
}
