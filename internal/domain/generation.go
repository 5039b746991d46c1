package domain

import "context"

// Prompt is a fully assembled request for the answer-generation provider.
type Prompt struct {
	System string
	User   string
}

// Generation is the provider's answer with token usage.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (Generation, error)
}
