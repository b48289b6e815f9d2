package model

// Difficulty selects the question pool requested from the trivia provider.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyMixed  Difficulty = "mixed"
)

// QuestionType mirrors the provider's fixed schema.
type QuestionType string

const (
	QuestionMultiple QuestionType = "multiple"
	QuestionBoolean  QuestionType = "boolean"
)

// Question is immutable once fetched. AllAnswers already contains the
// correct answer, shuffled in with the incorrect ones.
type Question struct {
	Text          string       `json:"question" bson:"question"`
	Type          QuestionType `json:"type" bson:"type"`
	Difficulty    Difficulty   `json:"difficulty" bson:"difficulty"`
	Category      string       `json:"category" bson:"category"`
	CorrectAnswer string       `json:"correct_answer" bson:"correct_answer"`
	AllAnswers    []string     `json:"all_answers" bson:"all_answers"`
}
