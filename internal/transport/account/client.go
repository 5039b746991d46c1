// Package account is the HTTP client for the user/account backend that owns
// credentials, per-user question quotas and chat transcripts.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/manualrag/internal/domain"
	domacc "github.com/kailas-cloud/manualrag/internal/domain/account"
	domchat "github.com/kailas-cloud/manualrag/internal/domain/chat"
	"github.com/kailas-cloud/manualrag/internal/metrics"
	"github.com/kailas-cloud/manualrag/internal/version"
)

const maxResponseBytes = 4 << 20

// Config holds account backend settings.
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client posts JSON actions to a single backend endpoint.
type Client struct {
	http   *http.Client
	url    string
	secret string
	logger *zap.Logger
}

// New creates an account backend client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    cfg.URL,
		secret: cfg.Secret,
		logger: cfg.Logger,
	}
}

// Login verifies credentials. A rejected login maps to domain.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, userID, password string) (domacc.Profile, error) {
	resp, err := c.call(ctx, request{Action: actionLogin, UserID: userID, Password: password})
	if err != nil {
		return domacc.Profile{}, err
	}
	if !resp.Success {
		return domacc.Profile{}, fmt.Errorf("%s: %w", orDefault(resp.Message, "login failed"), domain.ErrInvalidCredentials)
	}
	return domacc.Profile{UserID: userID, Role: resp.Role}, nil
}

// CheckUser verifies the user may ask and returns the remaining quota.
func (c *Client) CheckUser(ctx context.Context, userID string) (domacc.Status, error) {
	resp, err := c.call(ctx, request{Action: actionCheckUser, UserID: userID})
	if err != nil {
		return domacc.Status{}, err
	}
	if !resp.Success {
		return domacc.Status{}, domain.NewAccountRejected(orDefault(resp.Message, "user not allowed"))
	}
	status := domacc.Status{Remaining: -1}
	if resp.Remaining != nil {
		status.Remaining = *resp.Remaining
	}
	return status, nil
}

// IncreaseUsage charges one question against the user's quota.
func (c *Client) IncreaseUsage(ctx context.Context, userID string) error {
	return c.expectSuccess(ctx, request{Action: actionIncreaseUsage, UserID: userID})
}

// SaveChat appends one message to the user's transcript.
func (c *Client) SaveChat(ctx context.Context, userID string, msg domchat.Message) error {
	return c.expectSuccess(ctx, saveRequest(userID, msg))
}

// LoadChat returns the user's transcript in backend order. Entries with an
// unknown role are skipped.
func (c *Client) LoadChat(ctx context.Context, userID string) ([]domchat.Message, error) {
	resp, err := c.call(ctx, request{Action: actionLoadChat, UserID: userID})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("load chat: %s: %w", orDefault(resp.Message, "rejected"), domain.ErrAccountBackend)
	}

	msgs := make([]domchat.Message, 0, len(resp.Messages))
	for _, dto := range resp.Messages {
		msg, err := dto.toDomain()
		if err != nil {
			c.logger.Warn("Skipping transcript entry",
				zap.String("user_id", userID),
				zap.String("message_id", dto.MessageID),
				zap.Error(err),
			)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// HealthCheck reports whether the backend is configured. The backend has no
// side-effect-free action, so it is not called.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.url == "" {
		return errors.New("account backend url not configured")
	}
	return nil
}

func (c *Client) expectSuccess(ctx context.Context, req request) error {
	resp, err := c.call(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s: %w", req.Action, orDefault(resp.Message, "rejected"), domain.ErrAccountBackend)
	}
	return nil
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	req.Secret = c.secret

	start := time.Now()
	resp, err := c.do(ctx, req)
	metrics.AccountRequestDuration.WithLabelValues(req.Action).Observe(time.Since(start).Seconds())

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case !resp.Success:
		status = "rejected"
	}
	metrics.AccountRequestsTotal.WithLabelValues(req.Action, status).Inc()

	if err != nil {
		c.logger.Error("Account backend call failed",
			zap.String("action", req.Action),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req request) (response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return response{}, fmt.Errorf("marshal %s: %w", req.Action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return response{}, fmt.Errorf("build %s request: %w", req.Action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.String())

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("%s: %w: %w", req.Action, domain.ErrAccountBackend, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return response{}, fmt.Errorf("%s: read body: %w: %w", req.Action, domain.ErrAccountBackend, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return response{}, fmt.Errorf("%s: status %d: %w", req.Action, httpResp.StatusCode, domain.ErrAccountBackend)
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return response{}, fmt.Errorf("%s: decode response: %w: %w", req.Action, domain.ErrAccountBackend, err)
	}
	return out, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
