package chi

import (
	"time"

	domchat "github.com/kailas-cloud/manualrag/internal/domain/chat"
	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

// ErrorCode is the machine-readable error code returned to clients.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInvalidCredentials  ErrorCode = "invalid_credentials"
	CodeAccountRejected     ErrorCode = "account_rejected"
	CodeQuotaExceeded       ErrorCode = "token_quota_exceeded"
	CodeRateLimited         ErrorCode = "rate_limited"
	CodeNoContext           ErrorCode = "no_context"
	CodeDimensionMismatch   ErrorCode = "vector_dimension_mismatch"
	CodeEmbeddingProvider   ErrorCode = "embedding_provider_error"
	CodeGenerationProvider  ErrorCode = "generation_provider_error"
	CodeAccountBackendError ErrorCode = "account_backend_error"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Role    string `json:"role,omitempty"`
}

type chatRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

type chatResponse struct {
	Success   bool              `json:"success"`
	Answer    string            `json:"answer"`
	Remaining int               `json:"remaining"`
	Sources   []domret.Citation `json:"sources"`
	Scores    []float64         `json:"scores"`
}

type loadRequest struct {
	UserID string `json:"userId"`
}

type messageResponse struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Message   string     `json:"message"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type loadResponse struct {
	Success  bool              `json:"success"`
	Messages []messageResponse `json:"messages"`
}

type retrieveRequest struct {
	Question string `json:"question"`
	K        *int   `json:"k,omitempty"`
}

type retrieveResponse struct {
	Context   string            `json:"context"`
	Citations []domret.Citation `json:"citations"`
	Scores    []float64         `json:"scores"`
}

type budgetResponse struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensUsed      int64      `json:"tokens_used"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type usageResponse struct {
	Period        string         `json:"period"`
	PeriodStartAt time.Time      `json:"period_start_at"`
	PeriodEndAt   time.Time      `json:"period_end_at"`
	Budget        budgetResponse `json:"budget"`
}

type healthResponse struct {
	Status          string            `json:"status"`
	Checks          map[string]string `json:"checks"`
	CorpusDocuments int               `json:"corpus_documents"`
}

func messagesToResponse(msgs []domchat.Message) []messageResponse {
	out := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = messageResponse{ID: m.ID, Role: string(m.Role), Message: m.Text}
		if !m.CreatedAt.IsZero() {
			at := m.CreatedAt.UTC()
			out[i].CreatedAt = &at
		}
	}
	return out
}

func nonNilCitations(c []domret.Citation) []domret.Citation {
	if c == nil {
		return []domret.Citation{}
	}
	return c
}

func nonNilScores(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
