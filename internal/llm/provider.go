package llm

import "context"

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the model's raw text.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its text output.
	// The text is untrusted: callers are expected to sanitize, parse and
	// validate it before use.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Empty for the single-prompt tasks
	// that embed their role in the user message.
	System string

	// Messages is the conversation history. For every pipeline task this
	// contains exactly one user message carrying the full prompt.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64

	// TopK limits sampling to the K most likely tokens. Zero leaves the
	// provider default. Ignored by providers that do not support it.
	TopK int

	// TopP is the nucleus sampling threshold. Zero leaves the provider default.
	TopP float64

	// JSONMode asks providers with a native JSON response mode to use it.
	// The prompt must still describe the expected shape.
	JSONMode bool
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the single-turn message list used by the pipeline.
func UserPrompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// Response holds the LLM's output.
type Response struct {
	// Text is the model output exactly as returned, possibly wrapped in
	// Markdown fences or surrounded by prose.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
