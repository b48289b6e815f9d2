package model

import (
	"errors"
	"fmt"
	"testing"
)

func validRoom() *Room {
	questions := []Question{{
		Text:          "q1",
		Type:          QuestionMultiple,
		Difficulty:    DifficultyEasy,
		CorrectAnswer: "yes",
		AllAnswers:    []string{"yes", "no"},
	}}
	return NewRoom("ABCDEF", "alice", questions, 9, DifficultyEasy, 30)
}

func TestNewRoomSeedsHost(t *testing.T) {
	room := validRoom()

	if room.Phase != PhaseLobby {
		t.Fatalf("expected lobby, got %s", room.Phase)
	}
	if room.CurrentQuestion != 1 {
		t.Fatalf("expected question index 1, got %d", room.CurrentQuestion)
	}
	if len(room.Players) != 1 || room.Players[0].Name != "alice" {
		t.Fatalf("host not seeded: %+v", room.Players)
	}
	if room.Players[0].ID != "" {
		t.Fatalf("host connection must be unbound at creation")
	}
	if room.Players[0].FastestAnswer != 30000 {
		t.Fatalf("fastest answer sentinel off: %d", room.Players[0].FastestAnswer)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	room := validRoom()
	room.AppendMessage(ChatMessage{Message: "hi", User: "alice"})

	clone := room.Clone()
	clone.Players[0].Score = 99
	clone.Players = append(clone.Players, NewPlayer("bob", "conn2", 30))
	clone.Messages[0].Message = "edited"
	clone.Phase = PhaseEnded

	if room.Players[0].Score != 0 {
		t.Fatal("clone shares player backing array")
	}
	if len(room.Players) != 1 {
		t.Fatal("clone append leaked into original")
	}
	if room.Messages[0].Message != "hi" {
		t.Fatal("clone shares message backing array")
	}
	if room.Phase != PhaseLobby {
		t.Fatal("clone shares scalar fields")
	}
}

func TestAppendMessageEvictsOldest(t *testing.T) {
	room := validRoom()
	for i := 0; i < MaxMessages+5; i++ {
		room.AppendMessage(ChatMessage{Message: fmt.Sprintf("m%d", i), User: "alice"})
	}

	if len(room.Messages) != MaxMessages {
		t.Fatalf("expected %d messages, got %d", MaxMessages, len(room.Messages))
	}
	if room.Messages[0].Message != "m5" {
		t.Fatalf("oldest message not evicted, head is %q", room.Messages[0].Message)
	}
	if room.Messages[len(room.Messages)-1].Message != fmt.Sprintf("m%d", MaxMessages+4) {
		t.Fatalf("newest message missing, tail is %q", room.Messages[len(room.Messages)-1].Message)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Room)
	}{
		{"missing id", func(r *Room) { r.ID = "" }},
		{"missing host", func(r *Room) { r.Host = "" }},
		{"unknown phase", func(r *Room) { r.Phase = "paused" }},
		{"no questions", func(r *Room) { r.Questions = nil }},
		{"index below range", func(r *Room) { r.CurrentQuestion = 0 }},
		{"index above range", func(r *Room) { r.CurrentQuestion = 2 }},
		{"over capacity", func(r *Room) {
			for i := 0; i < MaxPlayers; i++ {
				r.Players = append(r.Players, NewPlayer(fmt.Sprintf("p%d", i), "", 30))
			}
		}},
		{"empty player name", func(r *Room) { r.Players[0].Name = "" }},
		{"duplicate player name", func(r *Room) {
			r.Players = append(r.Players, NewPlayer("alice", "conn2", 30))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := validRoom()
			tc.mutate(room)
			if err := room.Validate(); !errors.Is(err, ErrInvalidRoomData) {
				t.Fatalf("expected ErrInvalidRoomData, got %v", err)
			}
		})
	}

	if err := validRoom().Validate(); err != nil {
		t.Fatalf("valid room rejected: %v", err)
	}
}
