package game

import (
	"context"
	"errors"
	"testing"
)

func TestAllocateFormat(t *testing.T) {
	alloc := NewRoomIDAllocator(func(ctx context.Context, roomID string) (bool, error) {
		return false, nil
	})

	id, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if len(id) != roomIDLength {
		t.Fatalf("expected %d characters, got %q", roomIDLength, id)
	}
	for _, c := range id {
		if c < 'A' || c > 'Z' {
			t.Fatalf("id %q contains non-uppercase character %q", id, c)
		}
	}
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	probes := 0
	alloc := NewRoomIDAllocator(func(ctx context.Context, roomID string) (bool, error) {
		probes++
		return probes <= 3, nil
	})

	id, err := alloc.Allocate(context.Background())
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected an id after retries")
	}
	if probes != 4 {
		t.Fatalf("expected 4 probes, got %d", probes)
	}
}

func TestAllocateExhaustion(t *testing.T) {
	probes := 0
	alloc := NewRoomIDAllocator(func(ctx context.Context, roomID string) (bool, error) {
		probes++
		return true, nil
	})

	_, err := alloc.Allocate(context.Background())
	if !errors.Is(err, ErrIDSpaceExhausted) {
		t.Fatalf("expected ErrIDSpaceExhausted, got %v", err)
	}
	if probes != maxAllocAttempts {
		t.Fatalf("expected %d probes, got %d", maxAllocAttempts, probes)
	}
}

func TestAllocateProbeError(t *testing.T) {
	probeErr := errors.New("store down")
	alloc := NewRoomIDAllocator(func(ctx context.Context, roomID string) (bool, error) {
		return false, probeErr
	})

	_, err := alloc.Allocate(context.Background())
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected wrapped probe error, got %v", err)
	}
}
