package game

import (
	"testing"
	"time"
)

func TestScheduleFires(t *testing.T) {
	m := NewTimerManager()
	fired := make(chan struct{})

	m.Schedule(TimerKey{RoomID: "AAAAAA", QuestionIndex: 1}, 10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	if m.Len() != 0 {
		t.Fatalf("fired timer still tracked, %d remaining", m.Len())
	}
}

func TestScheduleReplacesSameKey(t *testing.T) {
	m := NewTimerManager()
	key := TimerKey{RoomID: "AAAAAA", QuestionIndex: 1}
	fired := make(chan string, 2)

	m.Schedule(key, 20*time.Millisecond, func() { fired <- "first" })
	m.Schedule(key, 40*time.Millisecond, func() { fired <- "second" })

	select {
	case who := <-fired:
		if who != "second" {
			t.Fatalf("replaced timer fired: %s", who)
		}
	case <-time.After(time.Second):
		t.Fatal("replacement timer did not fire")
	}

	select {
	case who := <-fired:
		t.Fatalf("unexpected extra firing: %s", who)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelPreventsCallback(t *testing.T) {
	m := NewTimerManager()
	key := TimerKey{RoomID: "AAAAAA", QuestionIndex: 2}
	fired := make(chan struct{}, 1)

	m.Schedule(key, 20*time.Millisecond, func() { fired <- struct{}{} })
	m.Cancel(key)

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
	if m.Len() != 0 {
		t.Fatalf("cancelled timer still tracked")
	}
}

func TestCancelRoomDropsAllRoomTimers(t *testing.T) {
	m := NewTimerManager()
	fired := make(chan string, 3)

	m.Schedule(CountdownKey("AAAAAA"), 30*time.Millisecond, func() { fired <- "countdown" })
	m.Schedule(TimerKey{RoomID: "AAAAAA", QuestionIndex: 1}, 30*time.Millisecond, func() { fired <- "advance" })
	m.Schedule(TimerKey{RoomID: "BBBBBB", QuestionIndex: 1}, 30*time.Millisecond, func() { fired <- "other" })

	m.CancelRoom("AAAAAA")
	if m.Len() != 1 {
		t.Fatalf("expected only the other room's timer, got %d", m.Len())
	}

	select {
	case who := <-fired:
		if who != "other" {
			t.Fatalf("cancelled room timer fired: %s", who)
		}
	case <-time.After(time.Second):
		t.Fatal("surviving timer did not fire")
	}

	select {
	case who := <-fired:
		t.Fatalf("unexpected extra firing: %s", who)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCountdownKeyIsDistinctFromQuestions(t *testing.T) {
	m := NewTimerManager()
	fired := make(chan string, 2)

	m.Schedule(CountdownKey("AAAAAA"), 20*time.Millisecond, func() { fired <- "countdown" })
	m.Schedule(TimerKey{RoomID: "AAAAAA", QuestionIndex: 1}, 20*time.Millisecond, func() { fired <- "advance" })

	if m.Len() != 2 {
		t.Fatalf("countdown must not collide with question timers, got %d", m.Len())
	}
	m.CancelRoom("AAAAAA")
}
