package game

import "triviarooms/internal/model"

// Outbound event names. These are the wire contract with the client and
// must not be renamed.
const (
	EvtHostJoined        = "hostJoined"
	EvtHostJoinFailed    = "hostJoinFailed"
	EvtPlayerJoined      = "playerJoined"
	EvtJoinFailed        = "joinFailed"
	EvtGameStarted       = "gameStarted"
	EvtNextQuestion      = "nextQuestion"
	EvtUpdatePlayerScore = "updatePlayerScore"
	EvtAllAnswered       = "allAnswered"
	EvtGameEnd           = "gameEnd"
	EvtReceivedMessage   = "receivedMessage"
	EvtPlayerReconnected = "playerReconnected"
	EvtReconnectFailed   = "reconnectFailed"
	EvtError             = "error"
)

// Join failure reasons sent with joinFailed.
const (
	ReasonRoomNotFound = "Room not found"
	ReasonNameTaken    = "Name not available"
	ReasonRoomFull     = "Room full"
	ReasonGameUnderway = "Game already started"
)

// Effect is an outbound notification or timer directive produced by a
// transition. Effects are dispatched only after the snapshot write that
// produced them has succeeded, in the order the machine emitted them.
type Effect interface {
	isEffect()
}

// Broadcast sends an event to every connection in the room.
type Broadcast struct {
	Type    string
	Payload any
}

// Reply sends an event to a single connection.
type Reply struct {
	ConnID  string
	Type    string
	Payload any
}

// ScheduleCountdown arms the post-start countdown timer.
type ScheduleCountdown struct{}

// ScheduleAdvance arms the advance timer for the given question index.
type ScheduleAdvance struct {
	QuestionIndex int
}

// CancelRoomTimers drops every timer still armed for the room.
type CancelRoomTimers struct{}

func (Broadcast) isEffect()         {}
func (Reply) isEffect()             {}
func (ScheduleCountdown) isEffect() {}
func (ScheduleAdvance) isEffect()   {}
func (CancelRoomTimers) isEffect()  {}

// ScorePayload goes with updatePlayerScore.
type ScorePayload struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// MessagePayload goes with receivedMessage.
type MessagePayload struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

// ReconnectPayload goes with playerReconnected.
type ReconnectPayload struct {
	PlayerName string      `json:"playerName"`
	RoomData   *model.Room `json:"roomData"`
}

// ErrorPayload goes with the generic error event.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}
