package ai

import "context"

// Client sends one user prompt to a chat-completion model and returns the reply text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
