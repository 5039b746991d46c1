// Package chi exposes the question-answering service over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/domain"
	domusage "github.com/kailas-cloud/manualrag/internal/domain/usage"
	logpkg "github.com/kailas-cloud/manualrag/internal/logger"
	chatuc "github.com/kailas-cloud/manualrag/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/manualrag/internal/usecase/health"
	usageuc "github.com/kailas-cloud/manualrag/internal/usecase/usage"
)

const maxPreviewK = 50

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	limiter       *UserLimiter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. A nil limiter disables rate limiting.
func NewServer(
	chat *chatuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	limiter *UserLimiter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:    chat,
		usage:   usage,
		health:  health,
		limiter: limiter,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials),
		accountRejectedHandler,
		sentinelHandler(domain.ErrTokenQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrNoContext, http.StatusUnprocessableEntity, CodeNoContext),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, CodeDimensionMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, CodeGenerationProvider),
		sentinelHandler(domain.ErrAccountBackend, http.StatusBadGateway, CodeAccountBackendError),
	}
	return s
}

// Routes registers all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/auth/login", s.Login)
	r.Post("/api/chat", s.Chat)
	r.Post("/api/chat/load", s.LoadChat)
	r.Post("/api/retrieve", s.Retrieve)
	r.Get("/usage", s.GetUsage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Login handles POST /api/auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := s.chat.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		UserID:  profile.UserID,
		Role:    profile.Role,
	})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !s.limiter.Allow(limiterKey(req.UserID, r)) {
		s.handleDomainError(w, r, fmt.Errorf("chat: %w", domain.ErrRateLimited))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.chat.Ask(ctx, req.UserID, req.Question)
	setTokenHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Answer:    answer.Text,
		Remaining: answer.Remaining,
		Sources:   nonNilCitations(answer.Sources),
		Scores:    nonNilScores(answer.Scores),
	})
}

// LoadChat handles POST /api/chat/load.
func (s *Server) LoadChat(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msgs, err := s.chat.History(r.Context(), req.UserID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loadResponse{
		Success:  true,
		Messages: messagesToResponse(msgs),
	})
}

// Retrieve handles POST /api/retrieve: retrieval only, for operators.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	k := s.chat.TopK()
	if req.K != nil {
		k = *req.K
	}
	if k < 0 || k > maxPreviewK {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"k must be between 0 and "+strconv.Itoa(maxPreviewK))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.chat.Preview(ctx, req.Question, k)
	setTokenHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, retrieveResponse{
		Context:   res.Context,
		Citations: nonNilCitations(res.Citations),
		Scores:    nonNilScores(res.Scores()),
	})
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "period must be day or month")
		return
	}

	report := s.usage.GetReport(r.Context(), period)

	resp := usageResponse{
		Period:        string(report.Period),
		PeriodStartAt: report.PeriodStart.UTC(),
		PeriodEndAt:   report.PeriodEnd.UTC(),
		Budget: budgetResponse{
			TokensLimit:     report.Budget.Limit,
			TokensUsed:      report.Budget.Used,
			TokensRemaining: report.Budget.Remaining,
			IsExhausted:     report.Budget.Exhausted(),
		},
	}
	if !report.Budget.ResetsAt.IsZero() {
		resetsAt := report.Budget.ResetsAt.UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:          string(report.Status),
		Checks:          checks,
		CorpusDocuments: report.CorpusDocuments,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// limiterKey buckets by user id, falling back to the client address.
func limiterKey(userID string, r *http.Request) string {
	if userID != "" {
		return "user:" + userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func setTokenHeaders(w http.ResponseWriter, usage *domain.TokenUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.GenerationTokens))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrInvalidCredentials,
		domain.ErrAccountRejected,
		domain.ErrTokenQuotaExceeded,
		domain.ErrRateLimited,
		domain.ErrNoContext,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
		domain.ErrAccountBackend,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// accountRejectedHandler passes the backend's rejection reason through to the user.
func accountRejectedHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrAccountRejected) {
		return false
	}
	var are *domain.AccountRejectedError
	if errors.As(err, &are) && are.Message != "" {
		msg = are.Message
	}
	writeError(w, http.StatusForbidden, CodeAccountRejected, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
