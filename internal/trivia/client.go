package trivia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"triviarooms/internal/model"
)

// ErrUpstreamUnavailable is returned when the question provider cannot be
// reached or answers with anything other than usable questions.
var ErrUpstreamUnavailable = errors.New("trivia provider unavailable")

const defaultBaseURL = "https://opentdb.com/api.php"

// Client fetches questions from the Open Trivia DB API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a provider client with a sane request timeout.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// FetchQuestions requests count questions for the category/difficulty pair
// and returns them in wire order with the answer set shuffled. Difficulty
// "mixed" leaves the provider free to pick across all pools.
func (c *Client) FetchQuestions(ctx context.Context, count, category int, difficulty model.Difficulty) ([]model.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(count, category, difficulty), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if body.ResponseCode != 0 || len(body.Results) == 0 {
		return nil, fmt.Errorf("%w: response code %d", ErrUpstreamUnavailable, body.ResponseCode)
	}

	questions := make([]model.Question, 0, len(body.Results))
	for _, r := range body.Results {
		answers := make([]string, 0, len(r.IncorrectAnswers)+1)
		answers = append(answers, html.UnescapeString(r.CorrectAnswer))
		for _, a := range r.IncorrectAnswers {
			answers = append(answers, html.UnescapeString(a))
		}
		rand.Shuffle(len(answers), func(i, j int) {
			answers[i], answers[j] = answers[j], answers[i]
		})

		questions = append(questions, model.Question{
			Text:          html.UnescapeString(r.Question),
			Type:          model.QuestionType(r.Type),
			Difficulty:    model.Difficulty(r.Difficulty),
			Category:      html.UnescapeString(r.Category),
			CorrectAnswer: html.UnescapeString(r.CorrectAnswer),
			AllAnswers:    answers,
		})
	}
	return questions, nil
}

func (c *Client) buildURL(count, category int, difficulty model.Difficulty) string {
	params := url.Values{}
	if count > 0 {
		params.Set("amount", strconv.Itoa(count))
	}
	if category > 0 {
		params.Set("category", strconv.Itoa(category))
	}
	if difficulty != "" && difficulty != model.DifficultyMixed {
		params.Set("difficulty", string(difficulty))
	}
	return c.baseURL + "?" + params.Encode()
}
