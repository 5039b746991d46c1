package chat

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "assistant"} {
		if _, err := ParseRole(s); err != nil {
			t.Errorf("ParseRole(%q): unexpected error %v", s, err)
		}
	}
	for _, s := range []string{"", "system", "USER"} {
		if _, err := ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q): expected error", s)
		}
	}
}

func TestNewMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("KST", 9*3600))
	a := NewMessage(RoleUser, "hello", now)
	b := NewMessage(RoleUser, "hello", now)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.CreatedAt.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", a.CreatedAt.Location())
	}
	if !a.CreatedAt.Equal(now) {
		t.Errorf("timestamp changed: %v vs %v", a.CreatedAt, now)
	}
}
