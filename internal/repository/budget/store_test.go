package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/manualrag/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockKV struct {
	values  map[string]int64
	raw     map[string][]byte
	expires []expireCall
	err     error
}

func newMockKV() *mockKV {
	return &mockKV{values: make(map[string]int64), raw: make(map[string][]byte)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.raw[key]; ok {
		return b, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) IncrBy(_ context.Context, key string, val int64) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] += val
	return nil
}

func (m *mockKV) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key, ttl, nx})
	return nil
}

func TestIncrBy_SetsPeriodTTL(t *testing.T) {
	kv := newMockKV()
	s := New(kv, 0, 0)

	if err := s.IncrBy(t.Context(), "manualrag:budget:openai:daily:2026-10-19", 10); err != nil {
		t.Fatalf("IncrBy: %v", err)
	}
	if err := s.IncrBy(t.Context(), "manualrag:budget:openai:monthly:2026-10", 10); err != nil {
		t.Fatalf("IncrBy: %v", err)
	}

	if len(kv.expires) != 2 {
		t.Fatalf("expected 2 expire calls, got %d", len(kv.expires))
	}
	if kv.expires[0].ttl != DefaultDailyTTL || !kv.expires[0].nx {
		t.Errorf("unexpected daily expire %+v", kv.expires[0])
	}
	if kv.expires[1].ttl != DefaultMonthlyTTL {
		t.Errorf("unexpected monthly expire %+v", kv.expires[1])
	}
}

func TestIncrBy_Error(t *testing.T) {
	kv := newMockKV()
	kv.err = errors.New("conn refused")

	if err := New(kv, time.Hour, time.Hour).IncrBy(t.Context(), "k:daily:x", 1); err == nil {
		t.Fatal("expected error")
	}
	if len(kv.expires) != 0 {
		t.Error("expire must not run after a failed increment")
	}
}

func TestGet(t *testing.T) {
	kv := newMockKV()
	kv.raw["present"] = []byte("1234")
	kv.raw["garbage"] = []byte("abc")
	s := New(kv, 0, 0)

	if v, err := s.Get(t.Context(), "present"); err != nil || v != 1234 {
		t.Errorf("Get(present) = %d, %v", v, err)
	}
	if v, err := s.Get(t.Context(), "missing"); err != nil || v != 0 {
		t.Errorf("Get(missing) = %d, %v; want 0, nil", v, err)
	}
	if _, err := s.Get(t.Context(), "garbage"); err == nil {
		t.Error("expected parse error")
	}
}
