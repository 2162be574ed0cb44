package chat

import (
	"sort"
	"sync"
	"time"

	"zapchat/model"
)

const notifyDebounce = 100 * time.Millisecond

// Cache holds the ordered message sequence for one open conversation.
// AppendIfNew is the single dedup point between the optimistic echo of a
// just-sent message and the feed event for the same row: whichever arrives
// second is dropped by ID. Entries are kept sorted by (CreatedAt, ID), so
// the merge of local and feed-driven appends is order-independent.
type Cache struct {
	mu       sync.Mutex
	messages []model.Message
	closed   bool
	notify   func()
	timer    *time.Timer
}

// NewCache builds a cache. notify, when non-nil, fires debounced after any
// successful insertion (the scroll side effect); it runs on a timer
// goroutine and must not call back into the cache synchronously.
func NewCache(notify func()) *Cache {
	return &Cache{notify: notify}
}

// AppendIfNew inserts msg in sorted position unless an entry with the same
// assigned ID already exists. Messages without an assigned ID are rejected:
// dedup works on store identity only, never on a provisional local copy.
// A closed cache ignores everything, which covers feed events that race
// with subscription teardown.
func (c *Cache) AppendIfNew(msg model.Message) bool {
	if msg.ID == 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	for _, existing := range c.messages {
		if existing.ID == msg.ID {
			return false
		}
	}

	i := sort.Search(len(c.messages), func(i int) bool {
		m := c.messages[i]
		if !m.CreatedAt.Equal(msg.CreatedAt) {
			return m.CreatedAt.After(msg.CreatedAt)
		}
		return m.ID > msg.ID
	})
	c.messages = append(c.messages, model.Message{})
	copy(c.messages[i+1:], c.messages[i:])
	c.messages[i] = msg

	c.scheduleNotifyLocked()
	return true
}

func (c *Cache) scheduleNotifyLocked() {
	if c.notify == nil {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(notifyDebounce, func() {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			c.notify()
		}
	})
}

// Messages returns a copy of the ordered sequence.
func (c *Cache) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Close freezes the cache. Subsequent appends and pending notifications
// are no-ops.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
