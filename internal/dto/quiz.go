package dto

import "time"

// CreateQuizRequest is the body for POST /quizzes.
type CreateQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
}

// UpdateQuizRequest is the body for PUT /quizzes/:id. Pointer fields
// distinguish "not sent" from "sent blank": a blank title/description keeps
// the old value while a blank difficulty/category clears it.
type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Difficulty  *string `json:"difficulty"`
	Category    *string `json:"category"`
}

// QuizResponse represents a quiz in the API response.
type QuizResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// QuizWithAverageResponse annotates a quiz with its average completed score
// for the sort-by-average listing.
type QuizWithAverageResponse struct {
	QuizResponse
	AverageScore float64 `json:"averageScore"`
}

// QuizStatsResponse is the payload for GET /quizzes/:quizId/stats.
type QuizStatsResponse struct {
	QuizID           string  `json:"quizId"`
	QuizTitle        string  `json:"quizTitle"`
	NumberOfAttempts int     `json:"numberOfAttempts"`
	AverageScore     float64 `json:"averageScore"`
	HighestScore     int     `json:"highestScore"`
	LowestScore      int     `json:"lowestScore"`
}

// CreateQuestionRequest is the body for POST /quizzes/:quizId/questions.
type CreateQuestionRequest struct {
	QuestionText string `json:"question_text"`
}

// UpdateQuestionRequest is the body for PUT /questions/:questionId.
type UpdateQuestionRequest struct {
	QuestionText string `json:"question_text"`
}

// QuestionResponse is a question in the authoring view, answers included
// with their correctness flags.
type QuestionResponse struct {
	ID           string           `json:"id"`
	QuizID       string           `json:"quizId"`
	QuestionText string           `json:"question_text"`
	Answers      []AnswerResponse `json:"answers"`
}

// CreateAnswerRequest is the body for POST /questions/:questionId/answers.
// IsCorrect is a pointer so a missing boolean can be rejected.
type CreateAnswerRequest struct {
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect"`
}

// UpdateAnswerRequest is the body for PUT /answers/:answerId.
type UpdateAnswerRequest struct {
	Text string `json:"text"`
}

// SetAnswerCorrectRequest is the body for PUT /answers/:answerId/correct.
type SetAnswerCorrectRequest struct {
	IsCorrect *bool `json:"isCorrect"`
}

// AnswerResponse is an answer in the authoring view.
type AnswerResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}
