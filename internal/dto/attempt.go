package dto

import "time"

// StartAttemptRequest is the body for POST /attempts.
type StartAttemptRequest struct {
	QuizID string `json:"quizId"`
}

// SanitizedAnswer is an answer as shown while taking a quiz: id and text
// only, the correctness flag deliberately withheld.
type SanitizedAnswer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SanitizedQuestion is a question within the sanitized quiz snapshot.
type SanitizedQuestion struct {
	ID           string            `json:"id"`
	QuestionText string            `json:"question_text"`
	Answers      []SanitizedAnswer `json:"answers"`
}

// SanitizedQuizSnapshot is the quiz as returned when an attempt starts.
type SanitizedQuizSnapshot struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []SanitizedQuestion `json:"questions"`
}

// StartAttemptResponse is the payload for a successfully started attempt.
type StartAttemptResponse struct {
	AttemptID string                `json:"attemptId"`
	Quiz      SanitizedQuizSnapshot `json:"quiz"`
}

// RecordAnswerRequest is the body for POST /attempts/:id/answer. A nil
// SelectedAnswerID clears the selection (question left unanswered).
type RecordAnswerRequest struct {
	QuestionID       string  `json:"questionId"`
	SelectedAnswerID *string `json:"selectedAnswerId"`
}

// SubmitAttemptResponse is the payload for POST /attempts/:id/submit.
type SubmitAttemptResponse struct {
	AttemptID      string `json:"attemptId"`
	QuizTitle      string `json:"quizTitle"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Message        string `json:"message"`
}

// AttemptQuestionDetail is the per-question review line in attempt detail.
type AttemptQuestionDetail struct {
	QuestionID         string   `json:"questionId"`
	QuestionText       string   `json:"question_text"`
	SelectedAnswerText string   `json:"selectedAnswerText"`
	CorrectAnswerTexts []string `json:"correctAnswerTexts"`
}

// AttemptDetailResponse is the full reconstruction for GET /attempts/:id.
type AttemptDetailResponse struct {
	AttemptID       string                  `json:"attemptId"`
	QuizID          string                  `json:"quizId"`
	QuizTitle       string                  `json:"quizTitle"`
	QuizDescription string                  `json:"quizDescription"`
	Status          string                  `json:"status"`
	Score           *int                    `json:"score"`
	TotalQuestions  int                     `json:"totalQuestions"`
	StartedAt       time.Time               `json:"startedAt"`
	CompletedAt     *time.Time              `json:"completedAt"`
	Questions       []AttemptQuestionDetail `json:"questions"`
}

// AttemptListItem is one row of GET /users/me/attempts.
type AttemptListItem struct {
	AttemptID   string     `json:"attemptId"`
	QuizID      string     `json:"quizId"`
	QuizTitle   string     `json:"quizTitle"`
	Score       *int       `json:"score"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}
