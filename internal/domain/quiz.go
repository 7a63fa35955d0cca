package domain

import "time"

// Quiz is an authored set of questions. Difficulty and category are optional
// labels used for filtering.
type Quiz struct {
	ID          string
	Title       string
	Description string
	Difficulty  string
	Category    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	var errs ValidationErrors
	if q.Title == "" {
		errs = append(errs, NewMissingFieldError("title"))
	}
	if q.Description == "" {
		errs = append(errs, NewMissingFieldError("description"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Question belongs to exactly one quiz.
type Question struct {
	ID           string
	QuizID       string
	QuestionText string
	Answers      []Answer
}

// Answer is one selectable option of a question. At most one answer per
// question carries IsCorrect; the repository enforces the swap atomically.
type Answer struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
}

// QuizFilters narrows and orders quiz listings.
type QuizFilters struct {
	Difficulty string
	Category   string
	Title      string
	SortBy     string
	SortOrder  string
}
