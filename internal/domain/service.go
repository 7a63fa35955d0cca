package domain

import (
	"context"
	"time"
)

// TransactionManager runs a function inside one storage transaction. The
// transaction is carried through the context; any error returned by fn rolls
// the whole unit back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for user persistence.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// QuizRepository defines the interface for quiz persistence.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context, filters QuizFilters) ([]Quiz, error)
	CountQuestions(ctx context.Context, quizID string) (int, error)
	// GetQuizStats aggregates completed attempts with a non-null score.
	GetQuizStats(ctx context.Context, quizID string) (count int, avg float64, max int, min int, err error)
}

// QuestionRepository defines the interface for question and answer
// persistence. SetAnswerCorrectness and CreateAnswer perform the
// clear-siblings-then-set swap as one storage-layer operation so the
// single-correct-answer invariant cannot be broken by calling the steps out
// of order; both must run inside a transaction supplied via the context.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestionByID(ctx context.Context, id string) (*Question, error)
	GetQuestionForQuiz(ctx context.Context, questionID, quizID string) (*Question, error)
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, id string) error
	// ListQuestionsWithAnswers returns the quiz's questions, each populated
	// with its answers, in insertion order.
	ListQuestionsWithAnswers(ctx context.Context, quizID string) ([]Question, error)

	CreateAnswer(ctx context.Context, answer *Answer) error
	GetAnswerByID(ctx context.Context, id string) (*Answer, error)
	GetAnswerForQuestion(ctx context.Context, answerID, questionID string) (*Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]Answer, error)
	UpdateAnswerText(ctx context.Context, id, text string) error
	SetAnswerCorrectness(ctx context.Context, answerID, questionID string, isCorrect bool) error
	DeleteAnswer(ctx context.Context, id string) error
}

// AttemptRepository defines the interface for attempt persistence.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	// GetAttemptForUser returns (nil, nil) when the attempt does not exist or
	// belongs to a different user; callers cannot tell the cases apart.
	GetAttemptForUser(ctx context.Context, attemptID, userID string) (*Attempt, error)
	ListAttemptsByUser(ctx context.Context, userID string) ([]Attempt, error)
	// UpsertAnswer records a selection for (attemptID, questionID),
	// overwriting a prior row if one exists. It reports whether a new row was
	// created.
	UpsertAnswer(ctx context.Context, attemptID, questionID string, selectedAnswerID *string) (created bool, err error)
	ListAttemptAnswers(ctx context.Context, attemptID string) ([]AttemptAnswer, error)
	// CountCorrectSelections counts attempt answers whose selected answer is
	// flagged correct.
	CountCorrectSelections(ctx context.Context, attemptID string) (int, error)
	CompleteAttempt(ctx context.Context, attemptID string, score int, completedAt time.Time) error
}
