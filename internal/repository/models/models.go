package models

import (
	"database/sql"
	"time"
)

// User row in the users table.
type User struct {
	ID        string    `db:"id"` // ULID
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Quiz row in the quizzes table. Difficulty and category are nullable labels.
type Quiz struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Difficulty  sql.NullString `db:"difficulty"`
	Category    sql.NullString `db:"category"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Question row in the questions table.
type Question struct {
	ID           string `db:"id"`
	QuizID       string `db:"quiz_id"`
	QuestionText string `db:"question_text"`
}

// Answer row in the answers table.
type Answer struct {
	ID         string `db:"id"`
	QuestionID string `db:"question_id"`
	Text       string `db:"text"`
	IsCorrect  bool   `db:"is_correct"`
}

// Attempt row in the attempts table. Score and CompletedAt stay NULL until
// the attempt is submitted.
type Attempt struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	QuizID      string        `db:"quiz_id"`
	Score       sql.NullInt64 `db:"score"`
	StartedAt   time.Time     `db:"started_at"`
	CompletedAt sql.NullTime  `db:"completed_at"`
}

// AttemptAnswer row in the attempt_answers table. SelectedAnswerID is NULL
// for questions left unanswered, and is set to NULL by the schema when the
// referenced answer is deleted.
type AttemptAnswer struct {
	ID               string         `db:"id"`
	AttemptID        string         `db:"attempt_id"`
	QuestionID       string         `db:"question_id"`
	SelectedAnswerID sql.NullString `db:"selected_answer_id"`
}
