package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAttemptServiceForTest(quizRepo *MockQuizRepository, questionRepo *MockQuestionRepository, attemptRepo *MockAttemptRepository, invalidator *MockStatsInvalidator) AttemptService {
	return NewAttemptService(quizRepo, questionRepo, attemptRepo, &fakeTxManager{}, invalidator)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           "q1",
			QuizID:       "quiz1",
			QuestionText: "What is 2+2?",
			Answers: []domain.Answer{
				{ID: "a1", QuestionID: "q1", Text: "3", IsCorrect: false},
				{ID: "a2", QuestionID: "q1", Text: "4", IsCorrect: true},
			},
		},
		{
			ID:           "q2",
			QuizID:       "quiz1",
			QuestionText: "Capital of France?",
			Answers: []domain.Answer{
				{ID: "a3", QuestionID: "q2", Text: "Paris", IsCorrect: true},
				{ID: "a4", QuestionID: "q2", Text: "Lyon", IsCorrect: false},
			},
		},
	}
}

func TestStartAttempt_Success(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockStatsInvalidator))

	quiz := &domain.Quiz{ID: "quiz1", Title: "Math", Description: "Basics"}
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
	questionRepo.On("ListQuestionsWithAnswers", mock.Anything, "quiz1").Return(sampleQuestions(), nil)
	attemptRepo.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.Attempt) bool {
		return a.UserID == "user1" && a.QuizID == "quiz1" && a.ID != "" && !a.Completed()
	})).Return(nil)

	resp, err := svc.StartAttempt(context.Background(), "user1", dto.StartAttemptRequest{QuizID: "quiz1"})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.NotEmpty(t, resp.AttemptID)
	assert.Equal(t, "Math", resp.Quiz.Title)
	assert.Len(t, resp.Quiz.Questions, 2)
	assert.Len(t, resp.Quiz.Questions[0].Answers, 2)
	// The snapshot must not reveal which answer is correct.
	assert.Equal(t, "3", resp.Quiz.Questions[0].Answers[0].Text)
	assert.Equal(t, "4", resp.Quiz.Questions[0].Answers[1].Text)
	attemptRepo.AssertExpectations(t)
}

func TestStartAttempt_QuizNotFound(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	svc := newAttemptServiceForTest(quizRepo, new(MockQuestionRepository), new(MockAttemptRepository), new(MockStatsInvalidator))

	quizRepo.On("GetQuizByID", mock.Anything, "missing").Return(nil, nil)

	resp, err := svc.StartAttempt(context.Background(), "user1", dto.StartAttemptRequest{QuizID: "missing"})

	assert.Nil(t, resp)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)
}

func TestStartAttempt_EmptyQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, new(MockAttemptRepository), new(MockStatsInvalidator))

	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(&domain.Quiz{ID: "quiz1", Title: "Empty"}, nil)
	questionRepo.On("ListQuestionsWithAnswers", mock.Anything, "quiz1").Return([]domain.Question{}, nil)

	resp, err := svc.StartAttempt(context.Background(), "user1", dto.StartAttemptRequest{QuizID: "quiz1"})

	assert.Nil(t, resp)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestRecordAnswer_NewSelection(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockStatsInvalidator))

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1", StartedAt: time.Now()}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	questionRepo.On("GetQuestionForQuiz", mock.Anything, "q1", "quiz1").
		Return(&domain.Question{ID: "q1", QuizID: "quiz1"}, nil)
	questionRepo.On("GetAnswerForQuestion", mock.Anything, "a2", "q1").
		Return(&domain.Answer{ID: "a2", QuestionID: "q1"}, nil)
	selected := "a2"
	attemptRepo.On("UpsertAnswer", mock.Anything, "att1", "q1", &selected).Return(true, nil)

	created, err := svc.RecordAnswer(context.Background(), "user1", "att1", dto.RecordAnswerRequest{
		QuestionID:       "q1",
		SelectedAnswerID: &selected,
	})

	assert.NoError(t, err)
	assert.True(t, created)
	attemptRepo.AssertExpectations(t)
}

func TestRecordAnswer_OverwriteReportsNotCreated(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockStatsInvalidator))

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1"}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	questionRepo.On("GetQuestionForQuiz", mock.Anything, "q1", "quiz1").
		Return(&domain.Question{ID: "q1", QuizID: "quiz1"}, nil)
	attemptRepo.On("UpsertAnswer", mock.Anything, "att1", "q1", (*string)(nil)).Return(false, nil)

	created, err := svc.RecordAnswer(context.Background(), "user1", "att1", dto.RecordAnswerRequest{QuestionID: "q1"})

	assert.NoError(t, err)
	assert.False(t, created)
}

func TestRecordAnswer_OtherUsersAttemptLooksMissing(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(new(MockQuizRepository), new(MockQuestionRepository), attemptRepo, new(MockStatsInvalidator))

	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "intruder").Return(nil, nil)

	_, err := svc.RecordAnswer(context.Background(), "intruder", "att1", dto.RecordAnswerRequest{QuestionID: "q1"})

	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeNotFound, domainErr.Code)
}

func TestRecordAnswer_CompletedAttempt(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(new(MockQuizRepository), new(MockQuestionRepository), attemptRepo, new(MockStatsInvalidator))

	done := time.Now()
	score := 1
	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1", Score: &score, CompletedAt: &done}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)

	_, err := svc.RecordAnswer(context.Background(), "user1", "att1", dto.RecordAnswerRequest{QuestionID: "q1"})

	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInvalidState, domainErr.Code)
}

func TestRecordAnswer_QuestionFromDifferentQuiz(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(new(MockQuizRepository), questionRepo, attemptRepo, new(MockStatsInvalidator))

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1"}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	questionRepo.On("GetQuestionForQuiz", mock.Anything, "foreign-q", "quiz1").Return(nil, nil)

	_, err := svc.RecordAnswer(context.Background(), "user1", "att1", dto.RecordAnswerRequest{QuestionID: "foreign-q"})

	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestRecordAnswer_AnswerFromDifferentQuestion(t *testing.T) {
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(new(MockQuizRepository), questionRepo, attemptRepo, new(MockStatsInvalidator))

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1"}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	questionRepo.On("GetQuestionForQuiz", mock.Anything, "q1", "quiz1").
		Return(&domain.Question{ID: "q1", QuizID: "quiz1"}, nil)
	questionRepo.On("GetAnswerForQuestion", mock.Anything, "foreign-a", "q1").Return(nil, nil)

	foreign := "foreign-a"
	_, err := svc.RecordAnswer(context.Background(), "user1", "att1", dto.RecordAnswerRequest{
		QuestionID:       "q1",
		SelectedAnswerID: &foreign,
	})

	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInvalidInput, domainErr.Code)
}

func TestSubmitAttempt_Success(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	invalidator := new(MockStatsInvalidator)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, invalidator)

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1", StartedAt: time.Now()}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(&domain.Quiz{ID: "quiz1", Title: "Math"}, nil)
	quizRepo.On("CountQuestions", mock.Anything, "quiz1").Return(2, nil)
	attemptRepo.On("CountCorrectSelections", mock.Anything, "att1").Return(1, nil)
	attemptRepo.On("CompleteAttempt", mock.Anything, "att1", 1, mock.AnythingOfType("time.Time")).Return(nil)
	invalidator.On("InvalidateQuizStats", mock.Anything, "quiz1").Return()

	resp, err := svc.SubmitAttempt(context.Background(), "user1", "att1")

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.TotalQuestions)
	assert.Equal(t, "Math", resp.QuizTitle)
	invalidator.AssertCalled(t, "InvalidateQuizStats", mock.Anything, "quiz1")
	attemptRepo.AssertExpectations(t)
}

func TestSubmitAttempt_AlreadyCompleted(t *testing.T) {
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(new(MockQuizRepository), new(MockQuestionRepository), attemptRepo, new(MockStatsInvalidator))

	done := time.Now()
	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1", CompletedAt: &done}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)

	resp, err := svc.SubmitAttempt(context.Background(), "user1", "att1")

	assert.Nil(t, resp)
	var domainErr *domain.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.CodeInvalidState, domainErr.Code)
}

func TestGetAttemptDetail_Reconstruction(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockStatsInvalidator))

	done := time.Now()
	score := 1
	attempt := &domain.Attempt{
		ID: "att1", UserID: "user1", QuizID: "quiz1",
		Score: &score, StartedAt: done.Add(-time.Minute), CompletedAt: &done,
	}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(&domain.Quiz{ID: "quiz1", Title: "Math", Description: "Basics"}, nil)
	questionRepo.On("ListQuestionsWithAnswers", mock.Anything, "quiz1").Return(sampleQuestions(), nil)

	selected := "a2"
	attemptRepo.On("ListAttemptAnswers", mock.Anything, "att1").Return([]domain.AttemptAnswer{
		{ID: "aa1", AttemptID: "att1", QuestionID: "q1", SelectedAnswerID: &selected},
	}, nil)

	resp, err := svc.GetAttemptDetail(context.Background(), "user1", "att1")

	assert.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, &score, resp.Score)
	assert.Equal(t, 2, resp.TotalQuestions)
	assert.Len(t, resp.Questions, 2)
	assert.Equal(t, "4", resp.Questions[0].SelectedAnswerText)
	assert.Equal(t, []string{"4"}, resp.Questions[0].CorrectAnswerTexts)
	assert.Equal(t, "unanswered", resp.Questions[1].SelectedAnswerText)
	assert.Equal(t, []string{"Paris"}, resp.Questions[1].CorrectAnswerTexts)
}

func TestGetAttemptDetail_InProgress(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, questionRepo, attemptRepo, new(MockStatsInvalidator))

	attempt := &domain.Attempt{ID: "att1", UserID: "user1", QuizID: "quiz1", StartedAt: time.Now()}
	attemptRepo.On("GetAttemptForUser", mock.Anything, "att1", "user1").Return(attempt, nil)
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(&domain.Quiz{ID: "quiz1", Title: "Math"}, nil)
	questionRepo.On("ListQuestionsWithAnswers", mock.Anything, "quiz1").Return(sampleQuestions(), nil)
	attemptRepo.On("ListAttemptAnswers", mock.Anything, "att1").Return([]domain.AttemptAnswer{}, nil)

	resp, err := svc.GetAttemptDetail(context.Background(), "user1", "att1")

	assert.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)
	assert.Nil(t, resp.Score)
	assert.Nil(t, resp.CompletedAt)
}

func TestListMyAttempts_ResolvesTitles(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	svc := newAttemptServiceForTest(quizRepo, new(MockQuestionRepository), attemptRepo, new(MockStatsInvalidator))

	now := time.Now()
	attemptRepo.On("ListAttemptsByUser", mock.Anything, "user1").Return([]domain.Attempt{
		{ID: "att2", UserID: "user1", QuizID: "quiz1", StartedAt: now},
		{ID: "att1", UserID: "user1", QuizID: "quiz1", StartedAt: now.Add(-time.Hour)},
	}, nil)
	quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(&domain.Quiz{ID: "quiz1", Title: "Math"}, nil).Once()

	items, err := svc.ListMyAttempts(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "Math", items[0].QuizTitle)
	assert.Equal(t, "Math", items[1].QuizTitle)
	// The title lookup is memoized per quiz.
	quizRepo.AssertNumberOfCalls(t, "GetQuizByID", 1)
}
