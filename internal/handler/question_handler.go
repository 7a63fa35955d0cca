package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuestionHandler serves question and answer authoring routes.
type QuestionHandler struct {
	questionService service.QuestionService
}

func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestion handles POST /quizzes/:quizId/questions.
func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.questionService.CreateQuestion(c.Context(), c.Params("quizId"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListQuestions handles GET /quizzes/:quizId/questions. This is the
// authoring view: answers come back with their correctness flags.
func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	questions, err := h.questionService.ListQuestions(c.Context(), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// UpdateQuestion handles PUT /questions/:questionId.
func (h *QuestionHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req dto.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.questionService.UpdateQuestion(c.Context(), c.Params("questionId"), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Question updated."})
}

// DeleteQuestion handles DELETE /questions/:questionId.
func (h *QuestionHandler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.questionService.DeleteQuestion(c.Context(), c.Params("questionId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Question deleted."})
}

// CreateAnswer handles POST /questions/:questionId/answers.
func (h *QuestionHandler) CreateAnswer(c *fiber.Ctx) error {
	var req dto.CreateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, err := h.questionService.CreateAnswer(c.Context(), c.Params("questionId"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListAnswers handles GET /questions/:questionId/answers.
func (h *QuestionHandler) ListAnswers(c *fiber.Ctx) error {
	answers, err := h.questionService.ListAnswers(c.Context(), c.Params("questionId"))
	if err != nil {
		return err
	}
	return c.JSON(answers)
}

// UpdateAnswer handles PUT /answers/:answerId (text only).
func (h *QuestionHandler) UpdateAnswer(c *fiber.Ctx) error {
	var req dto.UpdateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.questionService.UpdateAnswerText(c.Context(), c.Params("answerId"), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Answer updated."})
}

// SetAnswerCorrect handles PUT /answers/:answerId/correct.
func (h *QuestionHandler) SetAnswerCorrect(c *fiber.Ctx) error {
	var req dto.SetAnswerCorrectRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	if err := h.questionService.SetAnswerCorrect(c.Context(), c.Params("answerId"), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Answer correctness updated."})
}

// DeleteAnswer handles DELETE /answers/:answerId.
func (h *QuestionHandler) DeleteAnswer(c *fiber.Ctx) error {
	if err := h.questionService.DeleteAnswer(c.Context(), c.Params("answerId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Answer deleted."})
}
