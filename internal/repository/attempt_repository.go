package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"
	"quizhive/internal/util"

	"github.com/jmoiron/sqlx"
)

func toDomainAttempt(m *models.Attempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	var score *int
	if m.Score.Valid {
		s := int(m.Score.Int64)
		score = &s
	}
	var completedAt *time.Time
	if m.CompletedAt.Valid {
		t := m.CompletedAt.Time
		completedAt = &t
	}
	return &domain.Attempt{
		ID:          m.ID,
		UserID:      m.UserID,
		QuizID:      m.QuizID,
		Score:       score,
		StartedAt:   m.StartedAt,
		CompletedAt: completedAt,
	}
}

func toDomainAttemptAnswer(m *models.AttemptAnswer) *domain.AttemptAnswer {
	if m == nil {
		return nil
	}
	var selected *string
	if m.SelectedAnswerID.Valid {
		s := m.SelectedAnswerID.String
		selected = &s
	}
	return &domain.AttemptAnswer{
		ID:               m.ID,
		AttemptID:        m.AttemptID,
		QuestionID:       m.QuestionID,
		SelectedAnswerID: selected,
	}
}

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

// NewSQLXAttemptRepository creates a new instance of sqlxAttemptRepository.
func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	if attempt.StartedAt.IsZero() {
		attempt.StartedAt = time.Now()
	}

	query := `INSERT INTO attempts (id, user_id, quiz_id, score, started_at, completed_at)
	          VALUES (:1, :2, :3, :4, :5, :6)`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.QuizID,
		util.IntPtrToNullInt64(attempt.Score),
		attempt.StartedAt,
		sql.NullTime{},
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttemptForUser scopes the lookup to the owning user so that a missing
// attempt and somebody else's attempt are indistinguishable.
func (r *sqlxAttemptRepository) GetAttemptForUser(ctx context.Context, attemptID, userID string) (*domain.Attempt, error) {
	var m models.Attempt
	query := `SELECT id, user_id, quiz_id, score, started_at, completed_at
	          FROM attempts WHERE id = :1 AND user_id = :2`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, attemptID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// ListAttemptsByUser orders in-progress attempts first, then completed ones
// by completion time, newest started first within each group.
func (r *sqlxAttemptRepository) ListAttemptsByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	var rows []models.Attempt
	query := `SELECT id, user_id, quiz_id, score, started_at, completed_at
	          FROM attempts
	          WHERE user_id = :1
	          ORDER BY CASE WHEN completed_at IS NULL THEN 0 ELSE 1 END,
	                   completed_at DESC,
	                   started_at DESC`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]domain.Attempt, len(rows))
	for i := range rows {
		attempts[i] = *toDomainAttempt(&rows[i])
	}
	return attempts, nil
}

// UpsertAnswer overwrites the selection for (attemptID, questionID) when a
// row exists, inserts one otherwise. The unique constraint on the pair backs
// this against duplicate-row races: when two first-time writers race, the
// loser's insert hits the constraint and its update is retried once so the
// result is last-write-wins rather than an error.
func (r *sqlxAttemptRepository) UpsertAnswer(ctx context.Context, attemptID, questionID string, selectedAnswerID *string) (bool, error) {
	executor := GetExecutor(ctx, r.db)
	selected := util.StringPtrToNullString(selectedAnswerID)

	update := `UPDATE attempt_answers SET selected_answer_id = :1 WHERE attempt_id = :2 AND question_id = :3`
	result, err := executor.ExecContext(ctx, update, selected, attemptID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to update attempt answer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return false, nil
	}

	insert := `INSERT INTO attempt_answers (id, attempt_id, question_id, selected_answer_id)
	           VALUES (:1, :2, :3, :4)`
	if _, insertErr := executor.ExecContext(ctx, insert, util.NewULID(), attemptID, questionID, selected); insertErr != nil {
		// A concurrent writer may have inserted the row between our update
		// and insert; the update now finds it.
		result, err = executor.ExecContext(ctx, update, selected, attemptID, questionID)
		if err != nil {
			return false, fmt.Errorf("failed to insert attempt answer: %w", insertErr)
		}
		rowsAffected, err = result.RowsAffected()
		if err != nil || rowsAffected == 0 {
			return false, fmt.Errorf("failed to insert attempt answer: %w", insertErr)
		}
		return false, nil
	}
	return true, nil
}

func (r *sqlxAttemptRepository) ListAttemptAnswers(ctx context.Context, attemptID string) ([]domain.AttemptAnswer, error) {
	var rows []models.AttemptAnswer
	query := `SELECT id, attempt_id, question_id, selected_answer_id
	          FROM attempt_answers WHERE attempt_id = :1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, attemptID); err != nil {
		return nil, fmt.Errorf("failed to list attempt answers: %w", err)
	}

	answers := make([]domain.AttemptAnswer, len(rows))
	for i := range rows {
		answers[i] = *toDomainAttemptAnswer(&rows[i])
	}
	return answers, nil
}

// CountCorrectSelections joins recorded selections against the answer key.
// Unanswered questions and selections pointing at deleted answers contribute
// nothing.
func (r *sqlxAttemptRepository) CountCorrectSelections(ctx context.Context, attemptID string) (int, error) {
	var count int
	query := `SELECT COUNT(*)
	          FROM attempt_answers aa
	          JOIN answers a ON a.id = aa.selected_answer_id
	          WHERE aa.attempt_id = :1 AND a.is_correct = 1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &count, query, attemptID); err != nil {
		return 0, fmt.Errorf("failed to count correct selections: %w", err)
	}
	return count, nil
}

// CompleteAttempt freezes the score. The completed_at guard makes the
// transition exactly-once even under concurrent submits.
func (r *sqlxAttemptRepository) CompleteAttempt(ctx context.Context, attemptID string, score int, completedAt time.Time) error {
	query := `UPDATE attempts SET score = :1, completed_at = :2
	          WHERE id = :3 AND completed_at IS NULL`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, score, completedAt, attemptID)
	if err != nil {
		return fmt.Errorf("failed to complete attempt: %w", err)
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
