package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"quizhive/internal/cache"
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/logger"
	"quizhive/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	statsCacheTTL = 5 * time.Minute

	// averageScoreConcurrency bounds the per-quiz aggregate fan-out of the
	// sort-by-average listing.
	averageScoreConcurrency = 8
)

// QuizService defines the interface for quiz management operations.
type QuizService interface {
	CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*dto.CreatedResponse, error)
	GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error)
	UpdateQuiz(ctx context.Context, id string, req dto.UpdateQuizRequest) error
	DeleteQuiz(ctx context.Context, id string) error
	ListQuizzes(ctx context.Context, filters domain.QuizFilters) ([]dto.QuizResponse, error)
	GetQuizStats(ctx context.Context, quizID string) (*dto.QuizStatsResponse, error)
	ListQuizzesByAverageScore(ctx context.Context) ([]dto.QuizWithAverageResponse, error)
	InvalidateQuizStats(ctx context.Context, quizID string)
}

type quizServiceImpl struct {
	quizRepo domain.QuizRepository
	cache    domain.Cache // nil disables caching
}

// NewQuizService creates a new instance of QuizService. A nil cache is
// allowed and turns stats caching off.
func NewQuizService(quizRepo domain.QuizRepository, statsCache domain.Cache) QuizService {
	return &quizServiceImpl{
		quizRepo: quizRepo,
		cache:    statsCache,
	}
}

func toQuizResponse(q *domain.Quiz) dto.QuizResponse {
	return dto.QuizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Category:    q.Category,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func (s *quizServiceImpl) CreateQuiz(ctx context.Context, req dto.CreateQuizRequest) (*dto.CreatedResponse, error) {
	quiz := &domain.Quiz{
		ID:          util.NewULID(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Difficulty:  strings.TrimSpace(req.Difficulty),
		Category:    strings.TrimSpace(req.Category),
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	if err := s.quizRepo.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("failed to create quiz", err)
	}

	logger.Get().Info("Quiz created", zap.String("quizID", quiz.ID), zap.String("title", quiz.Title))
	return &dto.CreatedResponse{Message: "Quiz created.", ID: quiz.ID}, nil
}

func (s *quizServiceImpl) GetQuiz(ctx context.Context, id string) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}
	resp := toQuizResponse(quiz)
	return &resp, nil
}

// UpdateQuiz applies a partial update. A blank title or description keeps
// the stored value; a blank difficulty or category clears it.
func (s *quizServiceImpl) UpdateQuiz(ctx context.Context, id string, req dto.UpdateQuizRequest) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return domain.NewNotFoundError("quiz not found")
	}

	if req.Title != nil {
		if t := strings.TrimSpace(*req.Title); t != "" {
			quiz.Title = t
		}
	}
	if req.Description != nil {
		if d := strings.TrimSpace(*req.Description); d != "" {
			quiz.Description = d
		}
	}
	if req.Difficulty != nil {
		quiz.Difficulty = strings.TrimSpace(*req.Difficulty)
	}
	if req.Category != nil {
		quiz.Category = strings.TrimSpace(*req.Category)
	}

	if err := quiz.Validate(); err != nil {
		return err
	}

	if err := s.quizRepo.UpdateQuiz(ctx, quiz); err != nil {
		return domain.NewInternalError("failed to update quiz", err)
	}
	return nil
}

func (s *quizServiceImpl) DeleteQuiz(ctx context.Context, id string) error {
	quiz, err := s.quizRepo.GetQuizByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return domain.NewNotFoundError("quiz not found")
	}

	if err := s.quizRepo.DeleteQuiz(ctx, id); err != nil {
		return domain.NewInternalError("failed to delete quiz", err)
	}

	s.InvalidateQuizStats(ctx, id)
	logger.Get().Info("Quiz deleted", zap.String("quizID", id))
	return nil
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context, filters domain.QuizFilters) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizRepo.ListQuizzes(ctx, filters)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}

	responses := make([]dto.QuizResponse, len(quizzes))
	for i := range quizzes {
		responses[i] = toQuizResponse(&quizzes[i])
	}
	return responses, nil
}

func statsCacheKey(quizID string) string {
	return cache.GenerateCacheKey("quiz", "stats", quizID)
}

// roundScore rounds to two decimals for display.
func roundScore(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// GetQuizStats aggregates completed attempt scores, serving from the cache
// when a fresh entry exists. Aggregates default to zero with no completed
// attempts.
func (s *quizServiceImpl) GetQuizStats(ctx context.Context, quizID string) (*dto.QuizStatsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey(quizID)); err == nil {
			var resp dto.QuizStatsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			logger.Get().Warn("Discarding unreadable cached quiz stats", zap.String("quizID", quizID))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Quiz stats cache lookup failed", zap.Error(err), zap.String("quizID", quizID))
		}
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError("quiz not found")
	}

	count, avg, max, min, err := s.quizRepo.GetQuizStats(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to aggregate quiz stats", err)
	}

	resp := &dto.QuizStatsResponse{
		QuizID:           quiz.ID,
		QuizTitle:        quiz.Title,
		NumberOfAttempts: count,
		AverageScore:     roundScore(avg),
		HighestScore:     max,
		LowestScore:      min,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey(quizID), string(payload), statsCacheTTL); err != nil {
				logger.Get().Warn("Failed to cache quiz stats", zap.Error(err), zap.String("quizID", quizID))
			}
		}
	}

	return resp, nil
}

// ListQuizzesByAverageScore annotates every quiz with its average completed
// score and sorts descending. Each aggregate is computed independently, fanned
// out with bounded concurrency; quizzes without completed attempts sort with
// average 0. The sort is stable so ties keep the underlying title order.
func (s *quizServiceImpl) ListQuizzesByAverageScore(ctx context.Context) ([]dto.QuizWithAverageResponse, error) {
	quizzes, err := s.quizRepo.ListQuizzes(ctx, domain.QuizFilters{})
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}

	responses := make([]dto.QuizWithAverageResponse, len(quizzes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(averageScoreConcurrency)

	for i := range quizzes {
		i := i
		g.Go(func() error {
			_, avg, _, _, err := s.quizRepo.GetQuizStats(gctx, quizzes[i].ID)
			if err != nil {
				return err
			}
			responses[i] = dto.QuizWithAverageResponse{
				QuizResponse: toQuizResponse(&quizzes[i]),
				AverageScore: roundScore(avg),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewInternalError("failed to aggregate average scores", err)
	}

	sort.SliceStable(responses, func(a, b int) bool {
		return responses[a].AverageScore > responses[b].AverageScore
	})
	return responses, nil
}

// InvalidateQuizStats drops the cached aggregate so the next read recomputes
// it. Called on attempt submission and quiz deletion; failures are logged,
// never surfaced.
func (s *quizServiceImpl) InvalidateQuizStats(ctx context.Context, quizID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey(quizID)); err != nil {
		logger.Get().Warn("Failed to invalidate quiz stats cache", zap.Error(err), zap.String("quizID", quizID))
	}
}
