package model

// Player is a participant in a room. Identity correlation is by Name; ID
// holds the current transport connection id and is the only field a
// reconnect may rewrite.
type Player struct {
	ID             string `json:"id" bson:"id"`
	Name           string `json:"name" bson:"name"`
	Score          int    `json:"score" bson:"score"`
	HasAnswered    bool   `json:"hasAnswered" bson:"hasAnswered"`
	CorrectAnswers int    `json:"correctAnswers" bson:"correctAnswers"`
	TotalAnswers   int    `json:"totalAnswers" bson:"totalAnswers"`
	FastestAnswer  int    `json:"fastestAnswer" bson:"fastestAnswer"` // ms, best (lowest) latency
}

// NewPlayer creates a player with zeroed counters. FastestAnswer starts at
// the room's full time limit (in ms), the "never answered correctly"
// sentinel, and only ever decreases.
func NewPlayer(name, connID string, timeLimitSec int) Player {
	return Player{
		ID:            connID,
		Name:          name,
		FastestAnswer: timeLimitSec * 1000,
	}
}
