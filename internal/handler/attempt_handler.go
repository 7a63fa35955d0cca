package handler

import (
	"quizhive/internal/domain"
	"quizhive/internal/dto"
	"quizhive/internal/service"
	"quizhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AttemptHandler serves the attempt lifecycle routes. All of them require
// authentication; the user id comes from the request locals set by the auth
// middleware. A malformed attempt id in the path is rejected with 400 before
// the service is consulted.
type AttemptHandler struct {
	attemptService service.AttemptService
	validator      *validation.Validator
}

func NewAttemptHandler(attemptService service.AttemptService, validator *validation.Validator) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, validator: validator}
}

// StartAttempt handles POST /attempts.
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	var req dto.StartAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	resp, svcErr := h.attemptService.StartAttempt(c.Context(), userID, req)
	if svcErr != nil {
		return svcErr
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// RecordAnswer handles POST /attempts/:id/answer. A first-time answer for a
// question returns 201; overwriting an earlier selection returns 200.
func (h *AttemptHandler) RecordAnswer(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	if errs := h.validator.ValidateID("id", c.Params("id")); len(errs) > 0 {
		return errs
	}

	var req dto.RecordAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	created, svcErr := h.attemptService.RecordAnswer(c.Context(), userID, c.Params("id"), req)
	if svcErr != nil {
		return svcErr
	}

	status := fiber.StatusOK
	message := "Answer updated."
	if created {
		status = fiber.StatusCreated
		message = "Answer recorded."
	}
	return c.Status(status).JSON(dto.MessageResponse{Message: message})
}

// SubmitAttempt handles POST /attempts/:id/submit.
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	if errs := h.validator.ValidateID("id", c.Params("id")); len(errs) > 0 {
		return errs
	}

	resp, svcErr := h.attemptService.SubmitAttempt(c.Context(), userID, c.Params("id"))
	if svcErr != nil {
		return svcErr
	}
	return c.JSON(resp)
}

// GetAttemptDetail handles GET /attempts/:id.
func (h *AttemptHandler) GetAttemptDetail(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	if errs := h.validator.ValidateID("id", c.Params("id")); len(errs) > 0 {
		return errs
	}

	resp, svcErr := h.attemptService.GetAttemptDetail(c.Context(), userID, c.Params("id"))
	if svcErr != nil {
		return svcErr
	}
	return c.JSON(resp)
}
