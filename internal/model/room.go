package model

import (
	"errors"
	"fmt"
)

// RoomPhase is the coarse lifecycle stage of a room.
type RoomPhase string

const (
	PhaseLobby      RoomPhase = "lobby"
	PhaseInProgress RoomPhase = "inProgress"
	PhaseEnded      RoomPhase = "ended"
)

const (
	// MaxPlayers bounds a room's player list, host included.
	MaxPlayers = 11
	// MaxMessages bounds the chat history kept on the snapshot (FIFO eviction).
	MaxMessages = 50
)

// ErrInvalidRoomData marks a stored snapshot that failed structural
// validation. Callers must treat the room as corrupt, never act on it.
var ErrInvalidRoomData = errors.New("invalid room data")

// Room is the authoritative snapshot of one game session. It is the unit
// of persistence and of optimistic concurrency control: every mutation
// produces a new snapshot that is written back with compare-and-set.
type Room struct {
	ID              string        `json:"gameId" bson:"gameId"`
	Host            string        `json:"host" bson:"host"`
	Players         []Player      `json:"players" bson:"players"`
	Questions       []Question    `json:"questions" bson:"questions"`
	CurrentQuestion int           `json:"currentQuestion" bson:"currentQuestion"` // 1-based
	Messages        []ChatMessage `json:"messages" bson:"messages"`
	Phase           RoomPhase     `json:"phase" bson:"phase"`
	Category        int           `json:"category" bson:"category"`
	Difficulty      Difficulty    `json:"difficulty" bson:"difficulty"`
	TimeLimit       int           `json:"timeLimit" bson:"timeLimit"` // seconds per question
}

// ChatMessage is an immutable chat entry; order is arrival order.
type ChatMessage struct {
	Message string `json:"message" bson:"message"`
	User    string `json:"user" bson:"user"`
}

// NewRoom builds the initial snapshot for a freshly created room. The host
// joins with an empty connection id; it is bound on the hostJoin event.
func NewRoom(id, host string, questions []Question, category int, difficulty Difficulty, timeLimit int) *Room {
	return &Room{
		ID:              id,
		Host:            host,
		Players:         []Player{NewPlayer(host, "", timeLimit)},
		Questions:       questions,
		CurrentQuestion: 1,
		Messages:        []ChatMessage{},
		Phase:           PhaseLobby,
		Category:        category,
		Difficulty:      difficulty,
		TimeLimit:       timeLimit,
	}
}

// Clone returns a deep copy of the snapshot. Questions are immutable after
// creation, so the questions slice is shared.
func (r *Room) Clone() *Room {
	next := *r
	next.Players = make([]Player, len(r.Players))
	copy(next.Players, r.Players)
	next.Messages = make([]ChatMessage, len(r.Messages))
	copy(next.Messages, r.Messages)
	return &next
}

// PlayerIndex returns the position of the named player, or -1.
// Names are the identity key; connection ids change on reconnect.
func (r *Room) PlayerIndex(name string) int {
	for i := range r.Players {
		if r.Players[i].Name == name {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether a player with the given name is in the room.
func (r *Room) HasPlayer(name string) bool {
	return r.PlayerIndex(name) >= 0
}

// AppendMessage adds a chat message, evicting the oldest entries beyond
// MaxMessages.
func (r *Room) AppendMessage(msg ChatMessage) {
	r.Messages = append(r.Messages, msg)
	if len(r.Messages) > MaxMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxMessages:]
	}
}

// Validate checks the structural invariants of a snapshot read from the
// store. It fails closed: external data that does not satisfy the schema
// is rejected rather than acted upon.
func (r *Room) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing game id", ErrInvalidRoomData)
	}
	if r.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidRoomData)
	}
	switch r.Phase {
	case PhaseLobby, PhaseInProgress, PhaseEnded:
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidRoomData, r.Phase)
	}
	if len(r.Questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidRoomData)
	}
	if r.CurrentQuestion < 1 || r.CurrentQuestion > len(r.Questions) {
		return fmt.Errorf("%w: question index %d out of range [1,%d]",
			ErrInvalidRoomData, r.CurrentQuestion, len(r.Questions))
	}
	if len(r.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players exceeds capacity %d",
			ErrInvalidRoomData, len(r.Players), MaxPlayers)
	}
	seen := make(map[string]bool, len(r.Players))
	for i := range r.Players {
		name := r.Players[i].Name
		if name == "" {
			return fmt.Errorf("%w: player with empty name", ErrInvalidRoomData)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate player name %q", ErrInvalidRoomData, name)
		}
		seen[name] = true
	}
	return nil
}
