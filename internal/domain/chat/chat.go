// Package chat holds conversation values exchanged with the transcript store.
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domret "github.com/kailas-cloud/manualrag/internal/domain/retrieval"
)

// Role identifies the author of a message.
type Role string

// Message authors.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown chat role %q", s)
	}
}

// Message is one transcript entry.
type Message struct {
	ID        string
	Role      Role
	Text      string
	CreatedAt time.Time
}

// NewMessage creates a message with a fresh id stamped at now.
func NewMessage(role Role, text string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: now.UTC(),
	}
}

// Answer is the grounded reply returned to the user.
type Answer struct {
	Text      string
	Remaining int // quota left as reported by the account backend before this question
	Sources   []domret.Citation
	Scores    []float64
}
