package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection refused")

	persist := PersistError("insert user message", cause)
	assert.True(t, IsPersist(persist))
	assert.False(t, IsUpstream(persist))
	assert.True(t, errors.Is(persist, cause))
	assert.Contains(t, persist.Error(), "PERSIST_FAILURE")
	assert.Contains(t, persist.Error(), "insert user message")

	upstream := UpstreamError("send request", cause)
	assert.True(t, IsUpstream(upstream))
	assert.False(t, IsSubscription(upstream))

	subscription := SubscriptionError("subscribe", cause)
	assert.True(t, IsSubscription(subscription))
	assert.False(t, IsPersist(subscription))
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("session: %w", UpstreamError("send request", errors.New("boom")))
	assert.True(t, IsUpstream(err))
	assert.False(t, IsPersist(err))
}

func TestKindOfPlainError(t *testing.T) {
	assert.False(t, IsPersist(errors.New("plain")))
	assert.False(t, IsUpstream(nil))
}
