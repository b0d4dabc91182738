// Package chat relays user messages to a conversational-AI upstream and
// streams the reply back token by token. The showcase service only needs
// the Streamer boundary; the Gemini client here is the default
// implementation of it.
package chat

import "context"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior exchange in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamRequest carries a new user message plus prior conversation turns.
type StreamRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history,omitempty"`
}

// Streamer streams a model reply for a request, invoking fn for every
// text delta as it arrives. Implementations must stop and return the
// context error when ctx is cancelled (client disconnect).
type Streamer interface {
	Stream(ctx context.Context, req StreamRequest, fn func(delta string) error) error
}
