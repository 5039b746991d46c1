package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/domain"
	"github.com/kailas-cloud/manualrag/internal/domain/account"
	domchat "github.com/kailas-cloud/manualrag/internal/domain/chat"
	"github.com/kailas-cloud/manualrag/internal/domain/corpus"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
	"github.com/kailas-cloud/manualrag/internal/metrics"
)

// Service answers questions grounded in the manual corpus.
type Service struct {
	store     *corpus.Store
	retriever Retriever
	embed     Embedder
	generate  Generator

	auth    Authenticator
	checker AccountChecker
	usage   UsageIncrementer
	saver   ChatSaver
	loader  ChatLoader

	topK           int
	systemPrompt   string
	requireContext bool
	now            func() time.Time
	logger         *zap.Logger
}

// New creates a chat service over a corpus loaded once at startup.
func New(
	store *corpus.Store, retriever Retriever, embed Embedder, generate Generator,
	backend Backend, logger *zap.Logger,
) *Service {
	return &Service{
		store:        store,
		retriever:    retriever,
		embed:        embed,
		generate:     generate,
		auth:         backend,
		checker:      backend,
		usage:        backend,
		saver:        backend,
		loader:       backend,
		topK:         domain.DefaultTopK,
		systemPrompt: domain.DefaultSystemPrompt,
		now:          time.Now,
		logger:       logger,
	}
}

// WithTopK sets how many passages ground each answer.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithSystemPrompt replaces the generation system instructions.
func (s *Service) WithSystemPrompt(prompt string) *Service {
	if prompt != "" {
		s.systemPrompt = prompt
	}
	return s
}

// WithRequireContext makes Ask fail with domain.ErrNoContext when retrieval finds nothing.
func (s *Service) WithRequireContext(require bool) *Service {
	s.requireContext = require
	return s
}

// TopK returns the configured number of grounding passages.
func (s *Service) TopK() int { return s.topK }

// Login authenticates a user against the account backend.
func (s *Service) Login(ctx context.Context, userID, password string) (account.Profile, error) {
	if userID == "" || password == "" {
		return account.Profile{}, fmt.Errorf("%w: missing credentials", domain.ErrInvalidRequest)
	}
	profile, err := s.auth.Login(ctx, userID, password)
	if err != nil {
		return account.Profile{}, fmt.Errorf("login: %w", err)
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}
	return profile, nil
}

// Ask answers question for userID: account check, retrieval, generation,
// then usage and transcript bookkeeping.
func (s *Service) Ask(ctx context.Context, userID, question string) (domchat.Answer, error) {
	question = strings.TrimSpace(question)
	if userID == "" || question == "" {
		return domchat.Answer{}, fmt.Errorf("%w: question and userId are required", domain.ErrInvalidRequest)
	}

	status, err := s.checker.CheckUser(ctx, userID)
	if err != nil {
		return domchat.Answer{}, fmt.Errorf("check user: %w", err)
	}

	res, err := s.retrieve(ctx, question, s.topK)
	if err != nil {
		return domchat.Answer{}, err
	}
	if res.Empty() && s.requireContext {
		return domchat.Answer{}, domain.ErrNoContext
	}

	gen, err := s.generate.Generate(ctx, BuildPrompt(s.systemPrompt, res.Context, question))
	if err != nil {
		return domchat.Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(gen.TotalTokens)

	s.record(ctx, userID, question, gen.Text)

	return domchat.Answer{
		Text:      gen.Text,
		Remaining: status.Remaining,
		Sources:   res.Citations,
		Scores:    res.Scores(),
	}, nil
}

// Preview runs retrieval only, without quota checks or generation.
func (s *Service) Preview(ctx context.Context, question string, k int) (domret.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domret.Result{}, fmt.Errorf("%w: question is required", domain.ErrInvalidRequest)
	}
	return s.retrieve(ctx, question, k)
}

// History returns the user's stored transcript.
func (s *Service) History(ctx context.Context, userID string) ([]domchat.Message, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrInvalidRequest)
	}
	msgs, err := s.loader.LoadChat(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	return msgs, nil
}

// Corpus returns the store the service answers from.
func (s *Service) Corpus() *corpus.Store { return s.store }

func (s *Service) retrieve(ctx context.Context, question string, k int) (domret.Result, error) {
	emb, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domret.Result{}, fmt.Errorf("vectorize question: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(emb.TotalTokens)

	start := time.Now()
	res, err := s.retriever.Retrieve(emb.Embedding, s.store, k)
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domret.Result{}, fmt.Errorf("retrieve: %w", err)
	}

	metrics.RetrievedDocuments.Observe(float64(len(res.Ranked)))
	if !res.Empty() {
		metrics.RetrievalTopScore.Observe(res.Ranked[0].Score)
	}
	return res, nil
}

// record charges usage and stores both sides of the exchange. The answer has
// already been produced, so failures here are logged rather than returned.
func (s *Service) record(ctx context.Context, userID, question, answer string) {
	log := s.logger.With(zap.String("user_id", userID))

	if err := s.usage.IncreaseUsage(ctx, userID); err != nil {
		log.Warn("Failed to increase usage", zap.Error(err))
	}

	now := s.now()
	for _, msg := range []domchat.Message{
		domchat.NewMessage(domchat.RoleUser, question, now),
		domchat.NewMessage(domchat.RoleAssistant, answer, now),
	} {
		if err := s.saver.SaveChat(ctx, userID, msg); err != nil {
			log.Warn("Failed to save chat message",
				zap.String("role", string(msg.Role)),
				zap.Error(err),
			)
		}
	}
}

// BuildPrompt renders the generation prompt: system instructions plus a user
// message carrying the manual excerpts and the question.
func BuildPrompt(system, context, question string) domain.Prompt {
	if context == "" {
		context = "(no matching manual excerpts)"
	}
	var b strings.Builder
	b.WriteString("[Manual excerpts]\n")
	b.WriteString(context)
	b.WriteString("\n\n[Question]\n")
	b.WriteString(question)
	return domain.Prompt{System: strings.TrimSpace(system), User: b.String()}
}
