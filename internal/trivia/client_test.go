package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"triviarooms/internal/model"
)

func stubServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(srv.URL)
}

func TestFetchQuestions(t *testing.T) {
	var gotQuery map[string][]string
	client := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(apiResponse{
			ResponseCode: 0,
			Results: []apiResult{{
				Type:             "multiple",
				Difficulty:       "easy",
				Category:         "Science &amp; Nature",
				Question:         "What is H&sub2;O?",
				CorrectAnswer:    "Water",
				IncorrectAnswers: []string{"Air", "Fire", "Earth"},
			}},
		})
	})

	questions, err := client.FetchQuestions(context.Background(), 1, 17, model.DifficultyEasy)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}

	q := questions[0]
	if q.Category != "Science & Nature" {
		t.Fatalf("HTML entities not unescaped: %q", q.Category)
	}
	if q.CorrectAnswer != "Water" || len(q.AllAnswers) != 4 {
		t.Fatalf("answer set off: %+v", q)
	}
	found := false
	for _, a := range q.AllAnswers {
		if a == "Water" {
			found = true
		}
	}
	if !found {
		t.Fatal("correct answer missing from the shuffled set")
	}

	if gotQuery["amount"][0] != "1" || gotQuery["category"][0] != "17" || gotQuery["difficulty"][0] != "easy" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestFetchQuestionsMixedDifficultyOmitsParam(t *testing.T) {
	client := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("difficulty") {
			t.Error("mixed difficulty must not send a difficulty param")
		}
		json.NewEncoder(w).Encode(apiResponse{
			Results: []apiResult{{
				Type: "boolean", Question: "q", CorrectAnswer: "True", IncorrectAnswers: []string{"False"},
			}},
		})
	})

	if _, err := client.FetchQuestions(context.Background(), 1, 0, model.DifficultyMixed); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

func TestFetchQuestionsProviderError(t *testing.T) {
	client := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{ResponseCode: 1})
	})

	if _, err := client.FetchQuestions(context.Background(), 50, 0, model.DifficultyHard); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestFetchQuestionsServerDown(t *testing.T) {
	client := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := client.FetchQuestions(context.Background(), 5, 0, model.DifficultyEasy); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
