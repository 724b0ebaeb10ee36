package store

import (
	"context"
	"errors"
	"testing"
)

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, s Store, key string) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before set, got %v", err)
	}

	if err := s.Set(ctx, key, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := s.Set(ctx, key, []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", got)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}

	if err := s.Set(ctx, " ", []byte("x")); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory(), "memory-key")
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	value := []byte("abc")
	if err := s.Set(ctx, "k", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'z'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected memory driver by default, got %T", s)
	}

	s, err = Open(ctx, Config{Driver: "FILE", DSN: t.TempDir() + "/state.json"})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	if _, ok := s.(*File); !ok {
		t.Fatalf("expected file driver, got %T", s)
	}

	if _, err := Open(ctx, Config{Driver: "etcd"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestPingAndCloseAreOptional(t *testing.T) {
	s := NewMemory()
	if err := Ping(context.Background(), s); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := Close(s); err != nil {
		t.Fatalf("close: %v", err)
	}
}
