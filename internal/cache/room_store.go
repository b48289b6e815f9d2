package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"triviarooms/internal/model"
)

var (
	// ErrRoomNotFound is returned when no snapshot exists for the id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrVersionConflict is returned by CompareAndSet when the stored
	// version no longer matches the version the caller read.
	ErrVersionConflict = errors.New("room version conflict")
)

// RoomStore is the durable keyed storage for room snapshots. Every read
// returns the snapshot together with its version token; every write is a
// compare-and-set against that token, so interleaved read-modify-write
// cycles can never silently lose an update.
type RoomStore interface {
	// Get returns the current snapshot and its version, or ErrRoomNotFound.
	Get(ctx context.Context, roomID string) (*model.Room, int64, error)
	// CompareAndSet writes the snapshot only if the stored version still
	// equals expectedVersion. expectedVersion 0 creates the room.
	CompareAndSet(ctx context.Context, roomID string, expectedVersion int64, room *model.Room) error
	// Exists reports whether a room occupies the id.
	Exists(ctx context.Context, roomID string) (bool, error)
}

type redisRoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomStore creates a Redis-backed RoomStore. Each room lives in its own
// hash under room:{id} with a JSON "data" field and a numeric "version"
// field; the compare-and-set runs as a single Lua script so the check and
// the write are atomic on the server.
func NewRoomStore(client *redis.Client) RoomStore {
	return &redisRoomStore{
		client: client,
		ttl:    24 * time.Hour, // rooms expire a day after their last write
	}
}

func (s *redisRoomStore) key(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

var casScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], 'version')
if not v then
  if ARGV[1] == '0' then
    redis.call('HSET', KEYS[1], 'data', ARGV[2], 'version', '1')
    redis.call('PEXPIRE', KEYS[1], ARGV[3])
    return 1
  end
  return 0
end
if v == ARGV[1] then
  redis.call('HSET', KEYS[1], 'data', ARGV[2], 'version', tostring(tonumber(v) + 1))
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
  return 1
end
return 0
`)

func (s *redisRoomStore) Get(ctx context.Context, roomID string) (*model.Room, int64, error) {
	fields, err := s.client.HMGet(ctx, s.key(roomID), "data", "version").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read room %s: %w", roomID, err)
	}
	data, ok := fields[0].(string)
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	versionStr, ok := fields[1].(string)
	if !ok {
		return nil, 0, ErrRoomNotFound
	}
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: bad version %q", model.ErrInvalidRoomData, versionStr)
	}

	var room model.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", model.ErrInvalidRoomData, err)
	}
	if err := room.Validate(); err != nil {
		return nil, 0, err
	}
	return &room, version, nil
}

func (s *redisRoomStore) CompareAndSet(ctx context.Context, roomID string, expectedVersion int64, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", roomID, err)
	}
	res, err := casScript.Run(ctx, s.client,
		[]string{s.key(roomID)},
		strconv.FormatInt(expectedVersion, 10),
		string(data),
		strconv.FormatInt(s.ttl.Milliseconds(), 10),
	).Int64()
	if err != nil {
		return fmt.Errorf("failed to write room %s: %w", roomID, err)
	}
	if res != 1 {
		return ErrVersionConflict
	}
	return nil
}

func (s *redisRoomStore) Exists(ctx context.Context, roomID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(roomID)).Result()
	return n > 0, err
}
