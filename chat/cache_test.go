package chat

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapchat/model"
)

func msgAt(id uint, at time.Time) model.Message {
	return model.Message{
		ID:             id,
		ConversationID: 1,
		Sender:         model.SenderUser,
		Content:        "m",
		CreatedAt:      at,
	}
}

func TestCacheAppendIfNewDedup(t *testing.T) {
	c := NewCache(nil)
	base := time.Now()

	require.True(t, c.AppendIfNew(msgAt(1, base)))
	require.False(t, c.AppendIfNew(msgAt(1, base)))
	require.False(t, c.AppendIfNew(msgAt(1, base.Add(time.Hour))))
	require.True(t, c.AppendIfNew(msgAt(2, base.Add(time.Second))))
	require.False(t, c.AppendIfNew(msgAt(2, base.Add(time.Second))))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, uint(1), messages[0].ID)
	assert.Equal(t, uint(2), messages[1].ID)
}

func TestCacheRejectsUnassignedID(t *testing.T) {
	c := NewCache(nil)
	require.False(t, c.AppendIfNew(msgAt(0, time.Now())))
	assert.Equal(t, 0, c.Len())
}

func TestCacheSortsByCreationTime(t *testing.T) {
	c := NewCache(nil)
	base := time.Now()

	// Feed events can arrive out of timestamp order; the rendered sequence
	// must not.
	require.True(t, c.AppendIfNew(msgAt(3, base.Add(3*time.Second))))
	require.True(t, c.AppendIfNew(msgAt(1, base.Add(1*time.Second))))
	require.True(t, c.AppendIfNew(msgAt(2, base.Add(2*time.Second))))

	messages := c.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, uint(1), messages[0].ID)
	assert.Equal(t, uint(2), messages[1].ID)
	assert.Equal(t, uint(3), messages[2].ID)
}

func TestCacheSortsByIDWithinSameTimestamp(t *testing.T) {
	c := NewCache(nil)
	at := time.Now()

	require.True(t, c.AppendIfNew(msgAt(5, at)))
	require.True(t, c.AppendIfNew(msgAt(4, at)))

	messages := c.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, uint(4), messages[0].ID)
	assert.Equal(t, uint(5), messages[1].ID)
}

func TestCacheClosedIgnoresAppends(t *testing.T) {
	c := NewCache(nil)
	require.True(t, c.AppendIfNew(msgAt(1, time.Now())))

	c.Close()
	require.False(t, c.AppendIfNew(msgAt(2, time.Now())))
	assert.Equal(t, 1, c.Len())
}

func TestCacheNotifyDebounced(t *testing.T) {
	var fired atomic.Int32
	c := NewCache(func() { fired.Add(1) })
	base := time.Now()

	c.AppendIfNew(msgAt(1, base))
	c.AppendIfNew(msgAt(2, base.Add(time.Second)))
	c.AppendIfNew(msgAt(3, base.Add(2*time.Second)))

	require.Eventually(t, func() bool { return fired.Load() >= 1 },
		time.Second, 10*time.Millisecond)
	// A burst of inserts collapses into one notification.
	time.Sleep(2 * notifyDebounce)
	assert.Equal(t, int32(1), fired.Load())
}

func TestCacheCloseSuppressesPendingNotify(t *testing.T) {
	var fired atomic.Int32
	c := NewCache(func() { fired.Add(1) })

	c.AppendIfNew(msgAt(1, time.Now()))
	c.Close()

	time.Sleep(2 * notifyDebounce)
	assert.Equal(t, int32(0), fired.Load())
}
