package game

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	roomIDLength     = 6
	maxAllocAttempts = 200
)

// ErrIDSpaceExhausted is returned when no free id was found within the
// attempt bound. At six uppercase letters the namespace holds over 300
// million ids, so hitting this means the store is misbehaving, not that we
// were unlucky.
var ErrIDSpaceExhausted = errors.New("room id space exhausted")

// ExistsFunc probes the store for an occupied room id.
type ExistsFunc func(ctx context.Context, roomID string) (bool, error)

// RoomIDAllocator hands out unique, human-typeable room identifiers.
type RoomIDAllocator struct {
	exists ExistsFunc
}

// NewRoomIDAllocator creates an allocator probing the given exists check.
func NewRoomIDAllocator(exists ExistsFunc) *RoomIDAllocator {
	return &RoomIDAllocator{exists: exists}
}

// Allocate generates a candidate id of six uppercase letters and retries on
// collision up to the attempt bound.
func (a *RoomIDAllocator) Allocate(ctx context.Context) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		b := make([]byte, roomIDLength)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}
		id := make([]byte, roomIDLength)
		for i := range id {
			id[i] = letters[int(b[i])%len(letters)]
		}

		taken, err := a.exists(ctx, string(id))
		if err != nil {
			return "", fmt.Errorf("failed to probe room id: %w", err)
		}
		if !taken {
			return string(id), nil
		}
	}
	return "", ErrIDSpaceExhausted
}
