package account

import (
	"time"

	domchat "github.com/kailas-cloud/manualrag/internal/domain/chat"
)

// Backend actions.
const (
	actionLogin         = "login"
	actionCheckUser     = "checkUser"
	actionIncreaseUsage = "increaseUsage"
	actionSaveChat      = "saveChat"
	actionLoadChat      = "loadChat"
)

type request struct {
	Action    string `json:"action"`
	UserID    string `json:"userId"`
	Secret    string `json:"secret,omitempty"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type response struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message,omitempty"`
	Remaining *int         `json:"remaining,omitempty"`
	Role      string       `json:"role,omitempty"`
	Messages  []messageDTO `json:"messages,omitempty"`
}

type messageDTO struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

func saveRequest(userID string, msg domchat.Message) request {
	return request{
		Action:    actionSaveChat,
		UserID:    userID,
		Role:      string(msg.Role),
		Message:   msg.Text,
		MessageID: msg.ID,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (d messageDTO) toDomain() (domchat.Message, error) {
	role, err := domchat.ParseRole(d.Role)
	if err != nil {
		return domchat.Message{}, err //nolint:wrapcheck // caller adds the message id
	}
	var created time.Time
	if d.CreatedAt != "" {
		if t, perr := time.Parse(time.RFC3339, d.CreatedAt); perr == nil {
			created = t.UTC()
		}
	}
	return domchat.Message{
		ID:        d.MessageID,
		Role:      role,
		Text:      d.Message,
		CreatedAt: created,
	}, nil
}
