package repository

import (
	"context"
	"testing"
	"time"

	"quizhive/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func setupQuizTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestBuildQuizListQuery_NoFilters(t *testing.T) {
	query, args := buildQuizListQuery(domain.QuizFilters{})

	assert.Contains(t, query, "FROM quizzes")
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY title ASC")
	assert.Empty(t, args)
}

func TestBuildQuizListQuery_AllFilters(t *testing.T) {
	query, args := buildQuizListQuery(domain.QuizFilters{
		Difficulty: "easy",
		Category:   "go",
		Title:      "basics",
		SortBy:     "created_at",
		SortOrder:  "desc",
	})

	assert.Contains(t, query, "difficulty = :1")
	assert.Contains(t, query, "LOWER(category) LIKE LOWER(:2)")
	assert.Contains(t, query, "LOWER(title) LIKE LOWER(:3)")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Equal(t, []interface{}{"easy", "%go%", "%basics%"}, args)
}

func TestBuildQuizListQuery_UnknownSortFieldFallsBack(t *testing.T) {
	query, _ := buildQuizListQuery(domain.QuizFilters{SortBy: "password; DROP TABLE quizzes"})

	assert.Contains(t, query, "ORDER BY title ASC")
}

func TestGetQuizByID_NotFoundGetsNil(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSQLXQuizRepository(db)

	mock.ExpectQuery(`SELECT id, title, description, difficulty, category, created_at, updated_at FROM quizzes WHERE id = :1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "difficulty", "category", "created_at", "updated_at"}))

	quiz, err := repo.GetQuizByID(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, quiz)
}

func TestGetQuizByID_MapsNullableColumns(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSQLXQuizRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "difficulty", "category", "created_at", "updated_at"}).
		AddRow("quiz1", "Math", "Basics", nil, nil, now, now)
	mock.ExpectQuery(`SELECT id, title, description, difficulty, category, created_at, updated_at FROM quizzes WHERE id = :1`).
		WithArgs("quiz1").
		WillReturnRows(rows)

	quiz, err := repo.GetQuizByID(context.Background(), "quiz1")

	assert.NoError(t, err)
	assert.Equal(t, "Math", quiz.Title)
	assert.Equal(t, "", quiz.Difficulty)
	assert.Equal(t, "", quiz.Category)
}

func TestGetQuizStats_ZeroCompletedAttempts(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSQLXQuizRepository(db)

	rows := sqlmock.NewRows([]string{"attempt_count", "avg_score", "max_score", "min_score"}).
		AddRow(0, 0, 0, 0)
	mock.ExpectQuery(`FROM attempts\s+WHERE quiz_id = :1 AND completed_at IS NOT NULL AND score IS NOT NULL`).
		WithArgs("quiz1").
		WillReturnRows(rows)

	count, avg, max, min, err := repo.GetQuizStats(context.Background(), "quiz1")

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, max)
	assert.Equal(t, 0, min)
}

func TestGetQuizStats_Aggregates(t *testing.T) {
	db, mock := setupQuizTestDB(t)
	defer db.Close()
	repo := NewSQLXQuizRepository(db)

	rows := sqlmock.NewRows([]string{"attempt_count", "avg_score", "max_score", "min_score"}).
		AddRow(3, 2.5, 4, 1)
	mock.ExpectQuery(`FROM attempts\s+WHERE quiz_id = :1 AND completed_at IS NOT NULL AND score IS NOT NULL`).
		WithArgs("quiz1").
		WillReturnRows(rows)

	count, avg, max, min, err := repo.GetQuizStats(context.Background(), "quiz1")

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2.5, avg)
	assert.Equal(t, 4, max)
	assert.Equal(t, 1, min)
}
