package domain

// KeyPrefix namespaces every key the service writes to the KV store.
const KeyPrefix = "manualrag:"

// Defaults mirrored by the config layer.
const (
	DefaultTopK           = 5
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4.1-mini"
	DefaultTemperature    = 0.2
	DefaultSourceLabel    = "Source"
)

// DefaultSystemPrompt constrains answers to the supplied manual excerpts.
const DefaultSystemPrompt = `You are a support assistant for product manuals.
Answer using only the manual excerpts provided with the question.

- If the excerpts do not cover the question, answer from general knowledge and say so.
- Always finish the answer with the source numbers you relied on.`
