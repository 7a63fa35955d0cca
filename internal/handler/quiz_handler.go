package handler

import (
	"strings"

	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler serves quiz CRUD, filtering and statistics.
type QuizHandler struct {
	quizService service.QuizService
}

func NewQuizHandler(quizService service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuiz handles POST /quizzes.
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.quizService.CreateQuiz(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuizzes handles GET /quizzes with optional filter and sort query
// parameters.
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	filters := domain.QuizFilters{
		Difficulty: c.Query("difficulty"),
		Category:   c.Query("category"),
		Title:      c.Query("title"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("order"),
	}

	quizzes, err := h.quizService.ListQuizzes(c.Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz handles GET /quizzes/:id.
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.quizService.GetQuiz(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// UpdateQuiz handles PUT /quizzes/:id.
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.quizService.UpdateQuiz(c.Context(), c.Params("id"), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Quiz updated."})
}

// DeleteQuiz handles DELETE /quizzes/:id.
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.quizService.DeleteQuiz(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Quiz deleted."})
}

// SearchByTitle handles GET /quizzes/title/:title.
func (h *QuizHandler) SearchByTitle(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.Params("title"))
	if title == "" {
		return domain.NewInvalidInputError("title is required")
	}

	quizzes, err := h.quizService.ListQuizzes(c.Context(), domain.QuizFilters{Title: title})
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// FilterByDifficulty handles GET /quizzes/difficulty/:difficulty.
func (h *QuizHandler) FilterByDifficulty(c *fiber.Ctx) error {
	difficulty := strings.TrimSpace(c.Params("difficulty"))
	if difficulty == "" {
		return domain.NewInvalidInputError("difficulty is required")
	}

	quizzes, err := h.quizService.ListQuizzes(c.Context(), domain.QuizFilters{Difficulty: difficulty})
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// FilterByCategory handles GET /quizzes/category/:category.
func (h *QuizHandler) FilterByCategory(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Params("category"))
	if category == "" {
		return domain.NewInvalidInputError("category is required")
	}

	quizzes, err := h.quizService.ListQuizzes(c.Context(), domain.QuizFilters{Category: category})
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuizStats handles GET /quizzes/:quizId/stats.
func (h *QuizHandler) GetQuizStats(c *fiber.Ctx) error {
	stats, err := h.quizService.GetQuizStats(c.Context(), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// ListByAverageScore handles GET /quizzes/sort/average_score.
func (h *QuizHandler) ListByAverageScore(c *fiber.Ctx) error {
	quizzes, err := h.quizService.ListQuizzesByAverageScore(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}
