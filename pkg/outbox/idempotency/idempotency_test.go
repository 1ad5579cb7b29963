package idempotency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubStore struct {
	keys   map[string]string
	setErr error
}

func newStubStore() *stubStore {
	return &stubStore{keys: map[string]string{}}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, ok := s.keys[key]; ok {
		return false, nil
	}
	s.keys[key] = value.(string)
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return strings.Join([]string{"omex", "idempotency", scope, id}, ":")
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, time.Minute); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewManager(newStubStore(), -time.Second); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestCheckAndMarkProcessed(t *testing.T) {
	store := newStubStore()
	mgr, err := NewManager(store, time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	eventID := uuid.New()

	seen, err := mgr.CheckAndMarkProcessed(context.Background(), "relay", eventID)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if seen {
		t.Fatal("first delivery should not be marked as processed")
	}

	seen, err = mgr.CheckAndMarkProcessed(context.Background(), "relay", eventID)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !seen {
		t.Fatal("second delivery should be flagged as already processed")
	}
}

func TestCheckAndMarkProcessedValidatesInputs(t *testing.T) {
	mgr, err := NewManager(newStubStore(), time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected error for empty consumer")
	}
	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "relay", uuid.Nil); err == nil {
		t.Fatal("expected error for nil event id")
	}
}

func TestDeleteAllowsReprocessing(t *testing.T) {
	store := newStubStore()
	mgr, err := NewManager(store, time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	eventID := uuid.New()

	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "relay", eventID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := mgr.Delete(context.Background(), "relay", eventID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err := mgr.CheckAndMarkProcessed(context.Background(), "relay", eventID)
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if seen {
		t.Fatal("marker should have been cleared")
	}
}

func TestCheckAndMarkProcessedPropagatesStoreError(t *testing.T) {
	store := newStubStore()
	store.setErr = errors.New("redis down")
	mgr, err := NewManager(store, time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.CheckAndMarkProcessed(context.Background(), "relay", uuid.New()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
