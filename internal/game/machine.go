package game

import (
	"errors"
	"time"

	"triviarooms/internal/model"
)

// Timing knobs for the room lifecycle.
const (
	// CountdownDelay separates gameStarted from the first nextQuestion.
	CountdownDelay = 3 * time.Second
	// AdvanceDelay is the resolution window after allAnswered before the
	// room moves to the next question.
	AdvanceDelay = 5 * time.Second
)

var (
	// ErrNameTaken is returned when the requested name is already present.
	ErrNameTaken = errors.New("player name taken")
	// ErrRoomFull is returned when the room is at capacity.
	ErrRoomFull = errors.New("room full")
)

// CheckJoin validates that a named player may join the room. The name check
// runs before the capacity check: name-taken is the more specific error
// when both would apply.
func CheckJoin(room *model.Room, name string) error {
	if room.HasPlayer(name) {
		return ErrNameTaken
	}
	if len(room.Players) >= model.MaxPlayers {
		return ErrRoomFull
	}
	return nil
}

// Apply is the pure transition function: given a snapshot and an event it
// returns the next snapshot plus the ordered effects to dispatch once that
// snapshot is durable. The input room is never mutated, so a caller can
// retry Apply against a re-read snapshot after a version conflict.
//
// Events that are not legal in the current phase, and duplicate idempotent
// actions such as a second submitAnswer for the same question, degrade to
// no-ops rather than errors.
func Apply(room *model.Room, ev Event) (*model.Room, []Effect) {
	next := room.Clone()

	switch e := ev.(type) {
	case HostJoin:
		if i := next.PlayerIndex(e.Name); i >= 0 {
			next.Players[i].ID = e.ConnID
		}
		return next, []Effect{Reply{ConnID: e.ConnID, Type: EvtHostJoined, Payload: next}}

	case PlayerJoin:
		if next.Phase != model.PhaseLobby {
			return room, []Effect{Reply{ConnID: e.ConnID, Type: EvtJoinFailed, Payload: ReasonGameUnderway}}
		}
		if err := CheckJoin(next, e.Name); err != nil {
			reason := ReasonNameTaken
			if errors.Is(err, ErrRoomFull) {
				reason = ReasonRoomFull
			}
			return room, []Effect{Reply{ConnID: e.ConnID, Type: EvtJoinFailed, Payload: reason}}
		}
		next.Players = append(next.Players, model.NewPlayer(e.Name, e.ConnID, next.TimeLimit))
		return next, []Effect{Broadcast{Type: EvtPlayerJoined, Payload: next}}

	case StartGame:
		if next.Phase != model.PhaseLobby {
			return room, nil
		}
		next.Phase = model.PhaseInProgress
		return next, []Effect{
			Broadcast{Type: EvtGameStarted},
			ScheduleCountdown{},
		}

	case CountdownDone:
		if next.Phase != model.PhaseInProgress {
			return room, nil
		}
		resetAnswers(next)
		return next, []Effect{Broadcast{Type: EvtNextQuestion, Payload: next.CurrentQuestion}}

	case SubmitAnswer:
		return applySubmitAnswer(room, next, e)

	case QuestionTimeout:
		return applyQuestionTimeout(room, next, e)

	case Chat:
		if next.Phase == model.PhaseEnded {
			// Spectator chat: broadcast but stop mutating the dead snapshot.
			return room, []Effect{Broadcast{
				Type:    EvtReceivedMessage,
				Payload: MessagePayload{Message: e.Text, User: e.Author},
			}}
		}
		next.AppendMessage(model.ChatMessage{Message: e.Text, User: e.Author})
		return next, []Effect{Broadcast{
			Type:    EvtReceivedMessage,
			Payload: MessagePayload{Message: e.Text, User: e.Author},
		}}

	case Reconnect:
		if i := next.PlayerIndex(e.Name); i >= 0 {
			next.Players[i].ID = e.ConnID
		}
		return next, []Effect{Broadcast{
			Type:    EvtPlayerReconnected,
			Payload: ReconnectPayload{PlayerName: e.Name, RoomData: next},
		}}
	}

	return room, nil
}

func applySubmitAnswer(room, next *model.Room, e SubmitAnswer) (*model.Room, []Effect) {
	if next.Phase != model.PhaseInProgress {
		return room, nil
	}
	i := next.PlayerIndex(e.Name)
	if i < 0 || next.Players[i].HasAnswered {
		// Unknown player or duplicate submission: absorbed, not an error.
		return room, nil
	}

	p := &next.Players[i]
	p.HasAnswered = true
	p.TotalAnswers++

	var effects []Effect
	if e.Points != 0 {
		p.Score += e.Points
		p.CorrectAnswers++
		if e.AnswerTimeMs > 0 && e.AnswerTimeMs < p.FastestAnswer {
			p.FastestAnswer = e.AnswerTimeMs
		}
		effects = append(effects, Broadcast{
			Type:    EvtUpdatePlayerScore,
			Payload: ScorePayload{PlayerName: e.Name, Score: p.Score},
		})
	}

	if allAnswered(next) {
		effects = append(effects,
			Broadcast{Type: EvtAllAnswered},
			ScheduleAdvance{QuestionIndex: next.CurrentQuestion},
		)
	}
	return next, effects
}

func applyQuestionTimeout(room, next *model.Room, e QuestionTimeout) (*model.Room, []Effect) {
	if next.Phase != model.PhaseInProgress {
		return room, nil
	}
	if e.QuestionIndex != next.CurrentQuestion {
		// Stale timer: the room advanced past this question already.
		return room, nil
	}
	if next.CurrentQuestion == len(next.Questions) {
		next.Phase = model.PhaseEnded
		return next, []Effect{
			Broadcast{Type: EvtGameEnd},
			CancelRoomTimers{},
		}
	}
	resetAnswers(next)
	next.CurrentQuestion++
	return next, []Effect{Broadcast{Type: EvtNextQuestion, Payload: next.CurrentQuestion}}
}

func resetAnswers(room *model.Room) {
	for i := range room.Players {
		room.Players[i].HasAnswered = false
	}
}

func allAnswered(room *model.Room) bool {
	for i := range room.Players {
		if !room.Players[i].HasAnswered {
			return false
		}
	}
	return len(room.Players) > 0
}
