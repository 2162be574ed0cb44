package chat

import "zapchat/model"

// windowLimit bounds the transcript slice sent upstream. Recency beats
// completeness for a short-lived support conversation.
const windowLimit = 15

// Turn is one role-tagged entry of the context window.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildWindow derives the context window from the locally known transcript
// plus the just-persisted user message: the last windowLimit entries of the
// combined sequence, oldest first. Messages are included whole or not at all.
func BuildWindow(history []model.Message, latest model.Message) []Turn {
	combined := make([]model.Message, 0, len(history)+1)
	combined = append(combined, history...)
	combined = append(combined, latest)

	if len(combined) > windowLimit {
		combined = combined[len(combined)-windowLimit:]
	}

	window := make([]Turn, 0, len(combined))
	for _, msg := range combined {
		role := "assistant"
		if msg.Sender == model.SenderUser {
			role = "user"
		}
		window = append(window, Turn{Role: role, Content: msg.Content})
	}
	return window
}
