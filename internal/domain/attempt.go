package domain

import "time"

// Attempt is one user's single run through one quiz. It is created
// in-progress and transitions to completed exactly once, at submission, when
// the score is computed and frozen. A completed attempt is terminal.
type Attempt struct {
	ID          string
	UserID      string
	QuizID      string
	Score       *int
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Completed reports whether the attempt reached its terminal state.
func (a *Attempt) Completed() bool {
	return a.CompletedAt != nil
}

// AttemptAnswer records the selection (or absence thereof) for one question
// within one attempt. At most one row exists per (attempt, question) pair;
// recording again overwrites the previous selection.
type AttemptAnswer struct {
	ID               string
	AttemptID        string
	QuestionID       string
	SelectedAnswerID *string
}
