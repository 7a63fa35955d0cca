package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
)

const unansweredText = "unanswered"

// QuizStatsInvalidator drops any cached aggregate for a quiz. Satisfied by
// QuizService; the attempt side only needs this one method.
type QuizStatsInvalidator interface {
	InvalidateQuizStats(ctx context.Context, quizID string)
}

// AttemptService drives the attempt lifecycle: start, record answers,
// submit, review. Every operation is scoped to the authenticated user;
// attempts of other users are indistinguishable from missing ones.
type AttemptService interface {
	StartAttempt(ctx context.Context, userID string, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error)
	RecordAnswer(ctx context.Context, userID, attemptID string, req dto.RecordAnswerRequest) (created bool, err error)
	SubmitAttempt(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error)
	GetAttemptDetail(ctx context.Context, userID, attemptID string) (*dto.AttemptDetailResponse, error)
	ListMyAttempts(ctx context.Context, userID string) ([]dto.AttemptListItem, error)
}

type attemptServiceImpl struct {
	quizRepo     domain.QuizRepository
	questionRepo domain.QuestionRepository
	attemptRepo  domain.AttemptRepository
	txManager    domain.TransactionManager
	invalidator  QuizStatsInvalidator
}

// NewAttemptService creates a new instance of AttemptService.
func NewAttemptService(
	quizRepo domain.QuizRepository,
	questionRepo domain.QuestionRepository,
	attemptRepo domain.AttemptRepository,
	txManager domain.TransactionManager,
	invalidator QuizStatsInvalidator,
) AttemptService {
	return &attemptServiceImpl{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		txManager:    txManager,
		invalidator:  invalidator,
	}
}

// StartAttempt opens a new attempt and returns the quiz snapshot the taker
// works from. Answer correctness flags never leave this method.
func (s *attemptServiceImpl) StartAttempt(ctx context.Context, userID string, req dto.StartAttemptRequest) (*dto.StartAttemptResponse, error) {
	if req.QuizID == "" {
		return nil, domain.NewInvalidInputError("quizId is required")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, req.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}

	questions, err := s.questionRepo.ListQuestionsWithAnswers(ctx, quiz.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz questions", err)
	}
	if len(questions) == 0 {
		return nil, domain.NewInvalidInputError("quiz has no questions")
	}

	attempt := &domain.Attempt{
		ID:        util.NewULID(),
		UserID:    userID,
		QuizID:    quiz.ID,
		StartedAt: time.Now(),
	}
	if err := s.attemptRepo.CreateAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("failed to create attempt", err)
	}

	snapshot := dto.SanitizedQuizSnapshot{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   make([]dto.SanitizedQuestion, len(questions)),
	}
	for i, q := range questions {
		answers := make([]dto.SanitizedAnswer, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = dto.SanitizedAnswer{ID: a.ID, Text: a.Text}
		}
		snapshot.Questions[i] = dto.SanitizedQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Answers:      answers,
		}
	}

	logger.Get().Info("Attempt started",
		zap.String("attemptID", attempt.ID),
		zap.String("quizID", quiz.ID),
		zap.String("userID", userID))

	return &dto.StartAttemptResponse{AttemptID: attempt.ID, Quiz: snapshot}, nil
}

// RecordAnswer stores the user's selection for one question of an open
// attempt. A repeat call for the same question overwrites the earlier row.
// The reported created flag distinguishes first-time answers from overwrites.
func (s *attemptServiceImpl) RecordAnswer(ctx context.Context, userID, attemptID string, req dto.RecordAnswerRequest) (bool, error) {
	if req.QuestionID == "" {
		return false, domain.NewInvalidInputError("questionId is required")
	}

	attempt, err := s.attemptRepo.GetAttemptForUser(ctx, attemptID, userID)
	if err != nil {
		return false, domain.NewInternalError("failed to get attempt", err)
	}
	if attempt == nil {
		return false, domain.NewNotFoundError("attempt not found")
	}
	if attempt.Completed() {
		return false, domain.NewInvalidStateError("attempt already completed")
	}

	question, err := s.questionRepo.GetQuestionForQuiz(ctx, req.QuestionID, attempt.QuizID)
	if err != nil {
		return false, domain.NewInternalError("failed to get question", err)
	}
	if question == nil {
		return false, domain.NewInvalidInputError("question does not belong to this quiz")
	}

	if req.SelectedAnswerID != nil {
		answer, err := s.questionRepo.GetAnswerForQuestion(ctx, *req.SelectedAnswerID, question.ID)
		if err != nil {
			return false, domain.NewInternalError("failed to get answer", err)
		}
		if answer == nil {
			return false, domain.NewInvalidInputError("answer does not belong to this question")
		}
	}

	var created bool
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var upsertErr error
		created, upsertErr = s.attemptRepo.UpsertAnswer(txCtx, attemptID, question.ID, req.SelectedAnswerID)
		return upsertErr
	})
	if err != nil {
		return false, domain.NewInternalError("failed to record answer", err)
	}
	return created, nil
}

// SubmitAttempt finalizes an attempt exactly once. Scoring and completion
// run in one transaction; the completion update refuses already-completed
// attempts, so a concurrent double submit loses cleanly.
func (s *attemptServiceImpl) SubmitAttempt(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError("attempt not found")
	}
	if attempt.Completed() {
		return nil, domain.NewInvalidStateError("attempt already completed")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewInternalError("quiz missing for attempt", nil)
	}

	totalQuestions, err := s.quizRepo.CountQuestions(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}

	var score int
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var txErr error
		score, txErr = s.attemptRepo.CountCorrectSelections(txCtx, attemptID)
		if txErr != nil {
			return txErr
		}
		return s.attemptRepo.CompleteAttempt(txCtx, attemptID, score, time.Now())
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewInvalidStateError("attempt already completed")
		}
		return nil, domain.NewInternalError("failed to submit attempt", err)
	}

	s.invalidator.InvalidateQuizStats(ctx, attempt.QuizID)

	logger.Get().Info("Attempt submitted",
		zap.String("attemptID", attemptID),
		zap.String("quizID", attempt.QuizID),
		zap.Int("score", score))

	return &dto.SubmitAttemptResponse{
		AttemptID:      attemptID,
		QuizTitle:      quiz.Title,
		Score:          score,
		TotalQuestions: totalQuestions,
		Message:        "Attempt submitted.",
	}, nil
}

// GetAttemptDetail reconstructs an attempt for review: every quiz question
// with the taker's selection (or "unanswered") and the texts of the
// currently-correct answers.
func (s *attemptServiceImpl) GetAttemptDetail(ctx context.Context, userID, attemptID string) (*dto.AttemptDetailResponse, error) {
	attempt, err := s.attemptRepo.GetAttemptForUser(ctx, attemptID, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError("attempt not found")
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewInternalError("quiz missing for attempt", nil)
	}

	questions, err := s.questionRepo.ListQuestionsWithAnswers(ctx, attempt.QuizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz questions", err)
	}

	attemptAnswers, err := s.attemptRepo.ListAttemptAnswers(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load attempt answers", err)
	}
	selectedByQuestion := make(map[string]*string, len(attemptAnswers))
	for _, aa := range attemptAnswers {
		selectedByQuestion[aa.QuestionID] = aa.SelectedAnswerID
	}

	details := make([]dto.AttemptQuestionDetail, len(questions))
	for i, q := range questions {
		detail := dto.AttemptQuestionDetail{
			QuestionID:         q.ID,
			QuestionText:       q.QuestionText,
			SelectedAnswerText: unansweredText,
			CorrectAnswerTexts: []string{},
		}
		for _, a := range q.Answers {
			if a.IsCorrect {
				detail.CorrectAnswerTexts = append(detail.CorrectAnswerTexts, a.Text)
			}
			if sel := selectedByQuestion[q.ID]; sel != nil && *sel == a.ID {
				detail.SelectedAnswerText = a.Text
			}
		}
		details[i] = detail
	}

	status := "in_progress"
	if attempt.Completed() {
		status = "completed"
	}

	return &dto.AttemptDetailResponse{
		AttemptID:       attempt.ID,
		QuizID:          quiz.ID,
		QuizTitle:       quiz.Title,
		QuizDescription: quiz.Description,
		Status:          status,
		Score:           attempt.Score,
		TotalQuestions:  len(questions),
		StartedAt:       attempt.StartedAt,
		CompletedAt:     attempt.CompletedAt,
		Questions:       details,
	}, nil
}

// ListMyAttempts returns the user's attempts, in-progress first, then most
// recently completed. Quiz titles are resolved per row.
func (s *attemptServiceImpl) ListMyAttempts(ctx context.Context, userID string) ([]dto.AttemptListItem, error) {
	attempts, err := s.attemptRepo.ListAttemptsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list attempts", err)
	}

	titles := make(map[string]string)
	items := make([]dto.AttemptListItem, len(attempts))
	for i, a := range attempts {
		title, ok := titles[a.QuizID]
		if !ok {
			quiz, err := s.quizRepo.GetQuizByID(ctx, a.QuizID)
			if err != nil {
				return nil, domain.NewInternalError("failed to get quiz", err)
			}
			if quiz != nil {
				title = quiz.Title
			}
			titles[a.QuizID] = title
		}
		items[i] = dto.AttemptListItem{
			AttemptID:   a.ID,
			QuizID:      a.QuizID,
			QuizTitle:   title,
			Score:       a.Score,
			StartedAt:   a.StartedAt,
			CompletedAt: a.CompletedAt,
		}
	}
	return items, nil
}
