package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
)

// QuestionService defines the authoring operations for questions and answers.
type QuestionService interface {
	CreateQuestion(ctx context.Context, quizID string, req dto.CreateQuestionRequest) (*dto.CreatedResponse, error)
	ListQuestions(ctx context.Context, quizID string) ([]dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, questionID string, req dto.UpdateQuestionRequest) error
	DeleteQuestion(ctx context.Context, questionID string) error
	CreateAnswer(ctx context.Context, questionID string, req dto.CreateAnswerRequest) (*dto.CreatedResponse, error)
	ListAnswers(ctx context.Context, questionID string) ([]dto.AnswerResponse, error)
	UpdateAnswerText(ctx context.Context, answerID string, req dto.UpdateAnswerRequest) error
	SetAnswerCorrect(ctx context.Context, answerID string, req dto.SetAnswerCorrectRequest) error
	DeleteAnswer(ctx context.Context, answerID string) error
}

type questionServiceImpl struct {
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	txManager    domain.TransactionManager
}

// NewQuestionService creates a new instance of QuestionService.
func NewQuestionService(quizRepo domain.QuizRepository, questionRepo domain.QuestionRepository, txManager domain.TransactionManager) QuestionService {
	return &questionServiceImpl{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		txManager:    txManager,
	}
}

func (s *questionServiceImpl) CreateQuestion(ctx context.Context, quizID string, req dto.CreateQuestionRequest) (*dto.CreatedResponse, error) {
	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return nil, domain.NewInvalidInputError("question_text is required")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}

	question := &domain.Question{
		ID:           util.NewULID(),
		QuizID:       quizID,
		QuestionText: text,
	}
	if err := s.questionRepo.CreateQuestion(ctx, question); err != nil {
		return nil, domain.NewInternalError("failed to create question", err)
	}

	logger.Get().Info("Question created", zap.String("questionID", question.ID), zap.String("quizID", quizID))
	return &dto.CreatedResponse{Message: "Question created.", ID: question.ID}, nil
}

func (s *questionServiceImpl) ListQuestions(ctx context.Context, quizID string) ([]dto.QuestionResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}

	questions, err := s.questionRepo.ListQuestionsWithAnswers(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}

	responses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		answers := make([]dto.AnswerResponse, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = dto.AnswerResponse{ID: a.ID, Text: a.Text, IsCorrect: a.IsCorrect}
		}
		responses[i] = dto.QuestionResponse{
			ID:           q.ID,
			QuizID:       q.QuizID,
			QuestionText: q.QuestionText,
			Answers:      answers,
		}
	}
	return responses, nil
}

func (s *questionServiceImpl) UpdateQuestion(ctx context.Context, questionID string, req dto.UpdateQuestionRequest) error {
	text := strings.TrimSpace(req.QuestionText)
	if text == "" {
		return domain.NewInvalidInputError("question_text is required")
	}

	question, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return domain.NewNotFoundError("question not found")
	}

	question.QuestionText = text
	if err := s.questionRepo.UpdateQuestion(ctx, question); err != nil {
		return domain.NewInternalError("failed to update question", err)
	}
	return nil
}

func (s *questionServiceImpl) DeleteQuestion(ctx context.Context, questionID string) error {
	question, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return domain.NewNotFoundError("question not found")
	}

	if err := s.questionRepo.DeleteQuestion(ctx, questionID); err != nil {
		return domain.NewInternalError("failed to delete question", err)
	}
	return nil
}

// CreateAnswer inserts an answer for a question. When the new answer is
// flagged correct, the insert runs in a transaction that first clears the
// flag on every sibling, keeping a single correct answer per question.
func (s *questionServiceImpl) CreateAnswer(ctx context.Context, questionID string, req dto.CreateAnswerRequest) (*dto.CreatedResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, domain.NewInvalidInputError("text is required")
	}
	if req.IsCorrect == nil {
		return nil, domain.NewInvalidInputError("isCorrect is required")
	}

	question, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewNotFoundError("question not found")
	}

	answer := &domain.Answer{
		ID:         util.NewULID(),
		QuestionID: questionID,
		Text:       text,
		IsCorrect:  *req.IsCorrect,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.questionRepo.CreateAnswer(txCtx, answer)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create answer", err)
	}

	logger.Get().Info("Answer created", zap.String("answerID", answer.ID), zap.String("questionID", questionID))
	return &dto.CreatedResponse{Message: "Answer created.", ID: answer.ID}, nil
}

func (s *questionServiceImpl) ListAnswers(ctx context.Context, questionID string) ([]dto.AnswerResponse, error) {
	question, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return nil, domain.NewNotFoundError("question not found")
	}

	answers, err := s.questionRepo.ListAnswers(ctx, questionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list answers", err)
	}

	responses := make([]dto.AnswerResponse, len(answers))
	for i, a := range answers {
		responses[i] = dto.AnswerResponse{ID: a.ID, Text: a.Text, IsCorrect: a.IsCorrect}
	}
	return responses, nil
}

func (s *questionServiceImpl) UpdateAnswerText(ctx context.Context, answerID string, req dto.UpdateAnswerRequest) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return domain.NewInvalidInputError("text is required")
	}

	if err := s.questionRepo.UpdateAnswerText(ctx, answerID, text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("answer not found")
		}
		return domain.NewInternalError("failed to update answer", err)
	}
	return nil
}

// SetAnswerCorrect flips the correctness flag. Marking an answer correct
// clears every sibling first, inside one transaction, so the swap is atomic.
func (s *questionServiceImpl) SetAnswerCorrect(ctx context.Context, answerID string, req dto.SetAnswerCorrectRequest) error {
	if req.IsCorrect == nil {
		return domain.NewInvalidInputError("isCorrect is required")
	}

	answer, err := s.questionRepo.GetAnswerByID(ctx, answerID)
	if err != nil {
		return domain.NewInternalError("failed to get answer", err)
	}
	if answer == nil {
		return domain.NewNotFoundError("answer not found")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.questionRepo.SetAnswerCorrectness(txCtx, answerID, answer.QuestionID, *req.IsCorrect)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("answer not found")
		}
		return domain.NewInternalError("failed to update answer correctness", err)
	}
	return nil
}

func (s *questionServiceImpl) DeleteAnswer(ctx context.Context, answerID string) error {
	answer, err := s.questionRepo.GetAnswerByID(ctx, answerID)
	if err != nil {
		return domain.NewInternalError("failed to get answer", err)
	}
	if answer == nil {
		return domain.NewNotFoundError("answer not found")
	}

	if err := s.questionRepo.DeleteAnswer(ctx, answerID); err != nil {
		return domain.NewInternalError("failed to delete answer", err)
	}
	return nil
}
