package game

// Event is an inbound occurrence the state machine can react to. Client
// events originate from a transport connection; CountdownDone and
// QuestionTimeout are internal, fired by the timer manager.
type Event interface {
	isEvent()
}

// HostJoin binds the creating connection to the host player.
type HostJoin struct {
	Name   string
	ConnID string
}

// PlayerJoin adds a new named player in the lobby.
type PlayerJoin struct {
	Name   string
	ConnID string
}

// StartGame moves the room out of the lobby and arms the countdown.
type StartGame struct{}

// CountdownDone fires after the post-start countdown; the first question
// becomes live.
type CountdownDone struct{}

// SubmitAnswer records one player's answer for the current question.
// Points carries the award computed client-side; non-zero means correct.
type SubmitAnswer struct {
	Name         string
	Points       int
	AnswerTimeMs int
}

// QuestionTimeout fires from the advance timer armed when every player has
// answered. QuestionIndex is the index the timer was armed for; a mismatch
// with the current index means the timer is stale.
type QuestionTimeout struct {
	QuestionIndex int
}

// Chat appends a validated chat message.
type Chat struct {
	Author string
	Text   string
}

// Reconnect rebinds an existing player's connection id after a dropped
// transport connection.
type Reconnect struct {
	Name   string
	ConnID string
}

func (HostJoin) isEvent()        {}
func (PlayerJoin) isEvent()      {}
func (StartGame) isEvent()       {}
func (CountdownDone) isEvent()   {}
func (SubmitAnswer) isEvent()    {}
func (QuestionTimeout) isEvent() {}
func (Chat) isEvent()            {}
func (Reconnect) isEvent()       {}
