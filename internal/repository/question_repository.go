package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quizhive/internal/domain"
	"quizhive/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:           m.ID,
		QuizID:       m.QuizID,
		QuestionText: m.QuestionText,
	}
}

func toDomainAnswer(m *models.Answer) *domain.Answer {
	if m == nil {
		return nil
	}
	return &domain.Answer{
		ID:         m.ID,
		QuestionID: m.QuestionID,
		Text:       m.Text,
		IsCorrect:  m.IsCorrect,
	}
}

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func (r *sqlxQuestionRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	query := `INSERT INTO questions (id, quiz_id, question_text) VALUES (:1, :2, :3)`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, question.ID, question.QuizID, question.QuestionText); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (r *sqlxQuestionRepository) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	var m models.Question
	query := `SELECT id, quiz_id, question_text FROM questions WHERE id = :1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}
	return toDomainQuestion(&m), nil
}

// GetQuestionForQuiz returns the question only when it belongs to the given
// quiz; (nil, nil) otherwise.
func (r *sqlxQuestionRepository) GetQuestionForQuiz(ctx context.Context, questionID, quizID string) (*domain.Question, error) {
	var m models.Question
	query := `SELECT id, quiz_id, question_text FROM questions WHERE id = :1 AND quiz_id = :2`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, questionID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question for quiz: %w", err)
	}
	return toDomainQuestion(&m), nil
}

func (r *sqlxQuestionRepository) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	query := `UPDATE questions SET question_text = :1 WHERE id = :2`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, question.QuestionText, question.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
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

func (r *sqlxQuestionRepository) DeleteQuestion(ctx context.Context, id string) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM questions WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
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

// ListQuestionsWithAnswers returns the quiz's questions with their answers in
// a single joined pass, preserving insertion (id) order.
func (r *sqlxQuestionRepository) ListQuestionsWithAnswers(ctx context.Context, quizID string) ([]domain.Question, error) {
	query := `SELECT q.id AS question_id, q.quiz_id, q.question_text,
	                 a.id AS answer_id, a.text, a.is_correct
	          FROM questions q
	          LEFT JOIN answers a ON a.question_id = q.id
	          WHERE q.quiz_id = :1
	          ORDER BY q.id, a.id`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryxContext(ctx, query, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions with answers: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	index := make(map[string]int)

	for rows.Next() {
		var (
			questionID   string
			qQuizID      string
			questionText string
			answerID     sql.NullString
			answerText   sql.NullString
			isCorrect    sql.NullBool
		)
		if err := rows.Scan(&questionID, &qQuizID, &questionText, &answerID, &answerText, &isCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}

		i, ok := index[questionID]
		if !ok {
			questions = append(questions, domain.Question{
				ID:           questionID,
				QuizID:       qQuizID,
				QuestionText: questionText,
			})
			i = len(questions) - 1
			index[questionID] = i
		}

		if answerID.Valid {
			questions[i].Answers = append(questions[i].Answers, domain.Answer{
				ID:         answerID.String,
				QuestionID: questionID,
				Text:       answerText.String,
				IsCorrect:  isCorrect.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question rows: %w", err)
	}

	return questions, nil
}

// CreateAnswer inserts an answer. When the new answer is flagged correct, the
// sibling flags are cleared first in the same statement sequence; callers run
// this inside a transaction so the swap is atomic.
func (r *sqlxQuestionRepository) CreateAnswer(ctx context.Context, answer *domain.Answer) error {
	executor := GetExecutor(ctx, r.db)

	if answer.IsCorrect {
		clear := `UPDATE answers SET is_correct = 0 WHERE question_id = :1 AND is_correct = 1`
		if _, err := executor.ExecContext(ctx, clear, answer.QuestionID); err != nil {
			return fmt.Errorf("failed to clear sibling correctness: %w", err)
		}
	}

	isCorrect := 0
	if answer.IsCorrect {
		isCorrect = 1
	}
	insert := `INSERT INTO answers (id, question_id, text, is_correct) VALUES (:1, :2, :3, :4)`
	if _, err := executor.ExecContext(ctx, insert, answer.ID, answer.QuestionID, answer.Text, isCorrect); err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (r *sqlxQuestionRepository) GetAnswerByID(ctx context.Context, id string) (*domain.Answer, error) {
	var m models.Answer
	query := `SELECT id, question_id, text, is_correct FROM answers WHERE id = :1`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer by id: %w", err)
	}
	return toDomainAnswer(&m), nil
}

// GetAnswerForQuestion returns the answer only when it belongs to the given
// question; (nil, nil) otherwise.
func (r *sqlxQuestionRepository) GetAnswerForQuestion(ctx context.Context, answerID, questionID string) (*domain.Answer, error) {
	var m models.Answer
	query := `SELECT id, question_id, text, is_correct FROM answers WHERE id = :1 AND question_id = :2`

	executor := GetExecutor(ctx, r.db)
	if err := executor.GetContext(ctx, &m, query, answerID, questionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get answer for question: %w", err)
	}
	return toDomainAnswer(&m), nil
}

func (r *sqlxQuestionRepository) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	var rows []models.Answer
	query := `SELECT id, question_id, text, is_correct FROM answers WHERE question_id = :1 ORDER BY id`

	executor := GetExecutor(ctx, r.db)
	if err := executor.SelectContext(ctx, &rows, query, questionID); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	answers := make([]domain.Answer, len(rows))
	for i := range rows {
		answers[i] = *toDomainAnswer(&rows[i])
	}
	return answers, nil
}

func (r *sqlxQuestionRepository) UpdateAnswerText(ctx context.Context, id, text string) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `UPDATE answers SET text = :1 WHERE id = :2`, text, id)
	if err != nil {
		return fmt.Errorf("failed to update answer text: %w", err)
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

// SetAnswerCorrectness flips the correctness flag of one answer. Setting an
// answer correct clears every sibling first; the two updates are one
// storage-layer operation and must run inside a transaction so that no
// observer sees two correct answers for the same question.
func (r *sqlxQuestionRepository) SetAnswerCorrectness(ctx context.Context, answerID, questionID string, isCorrect bool) error {
	executor := GetExecutor(ctx, r.db)

	if isCorrect {
		clear := `UPDATE answers SET is_correct = 0 WHERE question_id = :1 AND id != :2`
		if _, err := executor.ExecContext(ctx, clear, questionID, answerID); err != nil {
			return fmt.Errorf("failed to clear sibling correctness: %w", err)
		}
	}

	flag := 0
	if isCorrect {
		flag = 1
	}
	set := `UPDATE answers SET is_correct = :1 WHERE id = :2`
	result, err := executor.ExecContext(ctx, set, flag, answerID)
	if err != nil {
		return fmt.Errorf("failed to set answer correctness: %w", err)
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

func (r *sqlxQuestionRepository) DeleteAnswer(ctx context.Context, id string) error {
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM answers WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete answer: %w", err)
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
