package chat

import (
	"context"

	"github.com/kailas-cloud/manualrag/internal/domain"
	"github.com/kailas-cloud/manualrag/internal/domain/account"
	domchat "github.com/kailas-cloud/manualrag/internal/domain/chat"
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

// Embedder vectorizes the question.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the answer text.
type Generator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (domain.Generation, error)
}

// Retriever ranks the corpus and assembles the prompt context.
type Retriever interface {
	Retrieve(query []float32, store *corpus.Store, k int) (domret.Result, error)
}

// Authenticator verifies a user id/password pair.
type Authenticator interface {
	Login(ctx context.Context, userID, password string) (account.Profile, error)
}

// AccountChecker verifies that a user may ask a question and reports remaining quota.
type AccountChecker interface {
	CheckUser(ctx context.Context, userID string) (account.Status, error)
}

// UsageIncrementer charges one question against the user's quota.
type UsageIncrementer interface {
	IncreaseUsage(ctx context.Context, userID string) error
}

// ChatSaver appends a message to the user's transcript.
type ChatSaver interface {
	SaveChat(ctx context.Context, userID string, msg domchat.Message) error
}

// ChatLoader reads the user's transcript.
type ChatLoader interface {
	LoadChat(ctx context.Context, userID string) ([]domchat.Message, error)
}

// Backend is the full account backend surface. The service keeps each
// capability separately so tests can fake only what they exercise.
type Backend interface {
	Authenticator
	AccountChecker
	UsageIncrementer
	ChatSaver
	ChatLoader
}
