package driven

import "context"

// LLMService generates the answer text from the assembled prompt.
type LLMService interface {
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of the conversation sent to the model.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions are per-call generation settings. Zero MaxTokens leaves the
// provider default.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
}
