package chat

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapchat/model"
)

func transcript(n int) []model.Message {
	base := time.Now()
	messages := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAssistant
		}
		messages = append(messages, model.Message{
			ID:        uint(i + 1),
			Sender:    sender,
			Content:   fmt.Sprintf("message %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	return messages
}

func TestBuildWindowShortTranscript(t *testing.T) {
	for n := 0; n+1 <= windowLimit; n++ {
		history := transcript(n)
		latest := model.Message{ID: 100, Sender: model.SenderUser, Content: "novo"}

		window := BuildWindow(history, latest)
		require.Len(t, window, n+1, "N=%d", n)
		for i, msg := range history {
			assert.Equal(t, msg.Content, window[i].Content)
		}
		assert.Equal(t, "novo", window[len(window)-1].Content)
	}
}

func TestBuildWindowBounded(t *testing.T) {
	history := transcript(40)
	latest := model.Message{ID: 100, Sender: model.SenderUser, Content: "novo"}

	window := BuildWindow(history, latest)
	require.Len(t, window, windowLimit)

	// Strict suffix: the oldest retained entry is message 27 of 40, the
	// newest is the just-sent one.
	assert.Equal(t, "message 27", window[0].Content)
	assert.Equal(t, "novo", window[windowLimit-1].Content)
}

func TestBuildWindowRoleMapping(t *testing.T) {
	history := []model.Message{
		{ID: 1, Sender: model.SenderUser, Content: "oi"},
		{ID: 2, Sender: model.SenderAssistant, Content: "olá"},
	}
	latest := model.Message{ID: 3, Sender: model.SenderUser, Content: "tudo bem?"}

	window := BuildWindow(history, latest)
	require.Len(t, window, 3)
	assert.Equal(t, "user", window[0].Role)
	assert.Equal(t, "assistant", window[1].Role)
	assert.Equal(t, "user", window[2].Role)
}
