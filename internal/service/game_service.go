package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"triviarooms/internal/cache"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/repository"
)

const (
	// MaxChatLength bounds a single chat message.
	MaxChatLength = 500

	maxCASRetries = 3
	applyTimeout  = 5 * time.Second

	defaultQuestionCount = 10
	defaultTimeLimitSec  = 30
)

var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrContention is surfaced when optimistic-concurrency retries are
	// exhausted; the caller may retry the whole operation.
	ErrContention = errors.New("room update contention")
)

// QuestionProvider supplies the trivia questions a room is created with.
type QuestionProvider interface {
	FetchQuestions(ctx context.Context, count, category int, difficulty model.Difficulty) ([]model.Question, error)
}

// GameService bridges the pure room state machine to I/O: it loads a
// snapshot from the RoomStore, applies the state machine, persists the
// result with compare-and-set, and only then dispatches the transition's
// effects. It owns the timer manager, connection registry and chat rate
// limiter for its process.
type GameService struct {
	store     cache.RoomStore
	archive   repository.RoomArchive
	questions QuestionProvider
	auth      *AuthService

	allocator *game.RoomIDAllocator
	timers    *game.TimerManager
	registry  *game.ConnectionRegistry
	limiter   *game.RateLimiter

	broadcaster Broadcaster
}

// NewGameService wires a game service. The archive may be nil; ended rooms
// are then only available until the store expires them.
func NewGameService(store cache.RoomStore, archive repository.RoomArchive, questions QuestionProvider, auth *AuthService) *GameService {
	return &GameService{
		store:     store,
		archive:   archive,
		questions: questions,
		auth:      auth,
		allocator: game.NewRoomIDAllocator(store.Exists),
		timers:    game.NewTimerManager(),
		registry:  game.NewConnectionRegistry(),
		limiter:   game.NewRateLimiter(game.ChatCooldown),
	}
}

// SetBroadcaster injects the transport's outbound side.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom fetches questions, allocates a fresh room id, persists the
// initial snapshot and returns it with the host's room token.
func (s *GameService) CreateRoom(ctx context.Context, playerName string, numQuestions, categoryID int, difficulty model.Difficulty, timeLimitSec int) (*model.Room, string, error) {
	if strings.TrimSpace(playerName) == "" {
		return nil, "", fmt.Errorf("%w: playerName is required", ErrInvalidInput)
	}
	if numQuestions <= 0 {
		numQuestions = defaultQuestionCount
	}
	if timeLimitSec <= 0 {
		timeLimitSec = defaultTimeLimitSec
	}

	questions, err := s.questions.FetchQuestions(ctx, numQuestions, categoryID, difficulty)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch questions: %w", err)
	}

	roomID, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, "", err
	}

	room := model.NewRoom(roomID, playerName, questions, categoryID, difficulty, timeLimitSec)
	if err := s.store.CompareAndSet(ctx, roomID, 0, room); err != nil {
		return nil, "", fmt.Errorf("failed to persist room %s: %w", roomID, err)
	}

	token, err := s.auth.GeneratePlayerToken(roomID, playerName)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[game] room %s created by %s (%d questions)", roomID, playerName, len(questions))
	return room, token, nil
}

// JoinCheck validates a join over HTTP before the client opens its socket.
// It does not add the player; the socket joinRoom event does, so a player
// who never connects does not occupy a seat.
func (s *GameService) JoinCheck(ctx context.Context, roomID, playerName string) (string, error) {
	if strings.TrimSpace(playerName) == "" {
		return "", fmt.Errorf("%w: playerName is required", ErrInvalidInput)
	}
	room, _, err := s.store.Get(ctx, roomID)
	if err != nil {
		return "", err
	}
	if err := game.CheckJoin(room, playerName); err != nil {
		return "", err
	}
	return s.auth.GeneratePlayerToken(roomID, playerName)
}

// RoomSnapshot returns the live snapshot for a room.
func (s *GameService) RoomSnapshot(ctx context.Context, roomID string) (*model.Room, error) {
	room, _, err := s.store.Get(ctx, roomID)
	return room, err
}

// FinishedRoom returns a room for the game-over summary, falling back to
// the archive once the store has expired the live key.
func (s *GameService) FinishedRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, _, err := s.store.Get(ctx, roomID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, cache.ErrRoomNotFound) || s.archive == nil {
		return nil, err
	}
	archived, archErr := s.archive.GetByID(ctx, roomID)
	if archErr != nil {
		return nil, archErr
	}
	if archived == nil {
		return nil, cache.ErrRoomNotFound
	}
	return archived, nil
}

// Connect registers a fresh transport connection. A duplicate id is
// refused and the transport must drop the connection.
func (s *GameService) Connect(connID string) bool {
	return s.registry.Register(connID)
}

// Disconnect releases everything scoped to the connection. The player
// entry stays on the snapshot so the name can reconnect; room timers are
// only dropped once nobody is left watching the room.
func (s *GameService) Disconnect(connID string) {
	s.limiter.Forget(connID)
	if roomID, ok := s.registry.Unregister(connID); ok {
		if s.registry.RoomConnections(roomID) == 0 {
			s.timers.CancelRoom(roomID)
			log.Printf("[game] room %s has no connections left, timers cancelled", roomID)
		}
	}
}

// HostJoin binds the creating connection to the host player.
func (s *GameService) HostJoin(ctx context.Context, connID, roomID, playerName string) {
	room, effects, err := s.apply(ctx, roomID, game.HostJoin{Name: playerName, ConnID: connID})
	if err != nil {
		if errors.Is(err, cache.ErrRoomNotFound) {
			s.broadcaster.SendToConnection(connID, game.EvtHostJoinFailed, roomID)
			return
		}
		s.sendError(connID, "Failed to join room (host)", err)
		return
	}
	s.broadcaster.JoinRoom(connID, roomID)
	s.registry.Bind(connID, roomID)
	s.finish(roomID, room, effects)
}

// PlayerJoin adds a named player over the socket.
func (s *GameService) PlayerJoin(ctx context.Context, connID, roomID, playerName string) {
	room, effects, err := s.apply(ctx, roomID, game.PlayerJoin{Name: playerName, ConnID: connID})
	if err != nil {
		if errors.Is(err, cache.ErrRoomNotFound) {
			s.broadcaster.SendToConnection(connID, game.EvtJoinFailed, game.ReasonRoomNotFound)
			return
		}
		s.sendError(connID, "Failed to join room", err)
		return
	}

	// Only subscribe the connection when the machine actually seated it;
	// a joinFailed reply leaves the snapshot untouched.
	if i := room.PlayerIndex(playerName); i >= 0 && room.Players[i].ID == connID {
		s.broadcaster.JoinRoom(connID, roomID)
		s.registry.Bind(connID, roomID)
	}
	s.finish(roomID, room, effects)
}

// StartGame begins the game and arms the countdown.
func (s *GameService) StartGame(ctx context.Context, connID, roomID string) {
	room, effects, err := s.apply(ctx, roomID, game.StartGame{})
	if err != nil {
		s.sendError(connID, "Failed to start game", err)
		return
	}
	s.finish(roomID, room, effects)
}

// SubmitAnswer records a player's answer for the current question.
func (s *GameService) SubmitAnswer(ctx context.Context, connID, roomID, playerName string, points, answerTimeMs int) {
	if points < 0 || answerTimeMs < 0 {
		s.sendError(connID, "Failed to submit answer", fmt.Errorf("%w: negative points or answer time", ErrInvalidInput))
		return
	}
	room, effects, err := s.apply(ctx, roomID, game.SubmitAnswer{
		Name:         playerName,
		Points:       points,
		AnswerTimeMs: answerTimeMs,
	})
	if err != nil {
		s.sendError(connID, "Failed to submit answer", err)
		return
	}
	s.finish(roomID, room, effects)
}

// Chat validates, rate-limits and broadcasts a chat message. Content
// validation runs first so malformed input never consumes a rate-limit
// slot.
func (s *GameService) Chat(ctx context.Context, connID, roomID, author, text string) {
	if strings.TrimSpace(text) == "" || len(text) > MaxChatLength {
		s.sendError(connID, "Failed to send message", fmt.Errorf("%w: empty or oversized message", ErrInvalidInput))
		return
	}
	if !s.limiter.Allow(connID, time.Now()) {
		s.broadcaster.SendToConnection(connID, game.EvtError, game.ErrorPayload{
			Message: "You are sending messages too quickly",
			Code:    "RATE_LIMITED",
		})
		return
	}
	room, effects, err := s.apply(ctx, roomID, game.Chat{Author: author, Text: text})
	if err != nil {
		s.sendError(connID, "Failed to send message", err)
		return
	}
	s.finish(roomID, room, effects)
}

// Reconnect rebinds a dropped player's connection. When the client
// presents its room token, the token must match the room and name.
func (s *GameService) Reconnect(ctx context.Context, connID, roomID, playerName, token string) {
	if token != "" {
		claims, err := s.auth.ValidatePlayerToken(token)
		if err != nil || claims.RoomID != roomID || claims.PlayerName != playerName {
			s.sendError(connID, "Failed to reconnect", ErrInvalidToken)
			return
		}
	}
	room, effects, err := s.apply(ctx, roomID, game.Reconnect{Name: playerName, ConnID: connID})
	if err != nil {
		if errors.Is(err, cache.ErrRoomNotFound) {
			s.broadcaster.SendToConnection(connID, game.EvtReconnectFailed, game.ReasonRoomNotFound)
			return
		}
		s.sendError(connID, "Failed to reconnect", err)
		return
	}
	s.broadcaster.JoinRoom(connID, roomID)
	s.registry.Bind(connID, roomID)
	s.finish(roomID, room, effects)
}

// apply runs the read-apply-write cycle with bounded retries on version
// conflict. The returned effects belong to the attempt whose write
// succeeded, so observers never see a notification for state that was not
// persisted.
func (s *GameService) apply(ctx context.Context, roomID string, ev game.Event) (*model.Room, []game.Effect, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		room, version, err := s.store.Get(ctx, roomID)
		if err != nil {
			return nil, nil, err
		}
		next, effects := game.Apply(room, ev)
		if err := s.store.CompareAndSet(ctx, roomID, version, next); err != nil {
			if errors.Is(err, cache.ErrVersionConflict) {
				continue
			}
			return nil, nil, err
		}
		return next, effects, nil
	}
	return nil, nil, ErrContention
}

// finish archives an ended room and dispatches the transition's effects in
// order.
func (s *GameService) finish(roomID string, room *model.Room, effects []game.Effect) {
	if room.Phase == model.PhaseEnded && s.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
		if err := s.archive.Save(ctx, room); err != nil {
			log.Printf("[game] failed to archive room %s: %v", roomID, err)
		}
		cancel()
	}

	for _, eff := range effects {
		switch e := eff.(type) {
		case game.Broadcast:
			s.broadcaster.BroadcastToRoom(roomID, e.Type, e.Payload)
		case game.Reply:
			s.broadcaster.SendToConnection(e.ConnID, e.Type, e.Payload)
		case game.ScheduleCountdown:
			s.timers.Schedule(game.CountdownKey(roomID), game.CountdownDelay, func() {
				s.handleCountdownDone(roomID)
			})
		case game.ScheduleAdvance:
			idx := e.QuestionIndex
			s.timers.Schedule(game.TimerKey{RoomID: roomID, QuestionIndex: idx}, game.AdvanceDelay, func() {
				s.handleQuestionTimeout(roomID, idx)
			})
		case game.CancelRoomTimers:
			s.timers.CancelRoom(roomID)
		}
	}
}

// handleCountdownDone fires when the post-start countdown elapses. It goes
// through the same read-apply-write cycle as client events, so it acts on
// the current snapshot rather than anything captured at schedule time.
func (s *GameService) handleCountdownDone(roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	room, effects, err := s.apply(ctx, roomID, game.CountdownDone{})
	if err != nil {
		log.Printf("[game] countdown for room %s failed: %v", roomID, err)
		return
	}
	s.finish(roomID, room, effects)
}

// handleQuestionTimeout fires when the advance delay after allAnswered
// elapses. The machine drops it if the room already moved on.
func (s *GameService) handleQuestionTimeout(roomID string, questionIndex int) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()
	room, effects, err := s.apply(ctx, roomID, game.QuestionTimeout{QuestionIndex: questionIndex})
	if err != nil {
		log.Printf("[game] advance timer for room %s question %d failed: %v", roomID, questionIndex, err)
		return
	}
	s.finish(roomID, room, effects)
}

// sendError turns an internal failure into a structured error event for
// the acting connection. Failures never crash the process or leak a
// half-applied snapshot.
func (s *GameService) sendError(connID, message string, err error) {
	code := "INTERNAL"
	switch {
	case errors.Is(err, cache.ErrRoomNotFound):
		code = "NOT_FOUND"
	case errors.Is(err, model.ErrInvalidRoomData):
		code = "INVALID_STATE"
	case errors.Is(err, ErrInvalidInput):
		code = "INVALID_INPUT"
	case errors.Is(err, ErrInvalidToken):
		code = "INVALID_TOKEN"
	case errors.Is(err, ErrContention):
		code = "CONTENTION"
	}
	log.Printf("[game] %s (conn %s): %v", message, connID, err)
	s.broadcaster.SendToConnection(connID, game.EvtError, game.ErrorPayload{Message: message, Code: code})
}
