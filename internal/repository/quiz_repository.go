package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"
	"quizhive/internal/util"

	"github.com/jmoiron/sqlx"
)

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Difficulty:  m.Difficulty.String,
		Category:    m.Category.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	return &models.Quiz{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Difficulty:  util.StringToNullString(q.Difficulty),
		Category:    util.StringToNullString(q.Category),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db *sqlx.DB
}

// NewSQLXQuizRepository creates a new instance of sqlxQuizRepository.
func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func (r *sqlxQuizRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	m := fromDomainQuiz(quiz)
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	query := `INSERT INTO quizzes (id, title, description, difficulty, category, created_at, updated_at)
	          VALUES (:id, :title, :description, :difficulty, :category, :created_at, :updated_at)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	quiz.CreatedAt = m.CreatedAt
	quiz.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *sqlxQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var m models.Quiz
	query := `SELECT id, title, description, difficulty, category, created_at, updated_at FROM quizzes WHERE id = :1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}
	return toDomainQuiz(&m), nil
}

func (r *sqlxQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	m := fromDomainQuiz(quiz)
	m.UpdatedAt = time.Now()

	query := `UPDATE quizzes SET
	            title = :title,
	            description = :description,
	            difficulty = :difficulty,
	            category = :category,
	            updated_at = :updated_at
	          WHERE id = :id`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.NamedExecContext(ctx, query, m)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *sqlxQuizRepository) DeleteQuiz(ctx context.Context, id string) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM quizzes WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// quizSortFields whitelists sortable columns for ListQuizzes.
var quizSortFields = map[string]string{
	"title":      "title",
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"difficulty": "difficulty",
	"category":   "category",
}

// buildQuizListQuery constructs the filtered, ordered SELECT for quiz
// listings using positional parameters.
func buildQuizListQuery(filters domain.QuizFilters) (string, []interface{}) {
	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if filters.Difficulty != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("difficulty = :%d", argIndex))
		args = append(args, filters.Difficulty)
		argIndex++
	}
	if filters.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(category) LIKE LOWER(:%d)", argIndex))
		args = append(args, "%"+filters.Category+"%")
		argIndex++
	}
	if filters.Title != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(title) LIKE LOWER(:%d)", argIndex))
		args = append(args, "%"+filters.Title+"%")
		argIndex++
	}

	query := `SELECT id, title, description, difficulty, category, created_at, updated_at FROM quizzes`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	orderBy := "title ASC"
	if col, ok := quizSortFields[filters.SortBy]; ok {
		orderBy = col + " ASC"
		if strings.EqualFold(filters.SortOrder, "DESC") {
			orderBy = col + " DESC"
		}
	}
	query += " ORDER BY " + orderBy

	return query, args
}

func (r *sqlxQuizRepository) ListQuizzes(ctx context.Context, filters domain.QuizFilters) ([]domain.Quiz, error) {
	query, args := buildQuizListQuery(filters)

	var rows []models.Quiz
	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, len(rows))
	for i := range rows {
		quizzes[i] = *toDomainQuiz(&rows[i])
	}
	return quizzes, nil
}

func (r *sqlxQuizRepository) CountQuestions(ctx context.Context, quizID string) (int, error) {
	var count int
	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &count, `SELECT COUNT(*) FROM questions WHERE quiz_id = :1`, quizID); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// GetQuizStats aggregates completed attempts with a non-null score. COALESCE
// keeps the numeric aggregates at zero when no completed attempt exists.
func (r *sqlxQuizRepository) GetQuizStats(ctx context.Context, quizID string) (int, float64, int, int, error) {
	var row struct {
		AttemptCount int     `db:"attempt_count"`
		AvgScore     float64 `db:"avg_score"`
		MaxScore     int     `db:"max_score"`
		MinScore     int     `db:"min_score"`
	}

	query := `SELECT COUNT(*) AS attempt_count,
	                 COALESCE(AVG(score), 0) AS avg_score,
	                 COALESCE(MAX(score), 0) AS max_score,
	                 COALESCE(MIN(score), 0) AS min_score
	          FROM attempts
	          WHERE quiz_id = :1 AND completed_at IS NOT NULL AND score IS NOT NULL`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &row, query, quizID); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get quiz stats: %w", err)
	}
	return row.AttemptCount, row.AvgScore, row.MaxScore, row.MinScore, nil
}
