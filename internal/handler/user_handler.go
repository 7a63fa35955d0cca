package handler

import (
	"quizhive/internal/logger"
	"quizhive/internal/middleware"
	"quizhive/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService    service.UserService
	attemptService service.AttemptService
}

func NewUserHandler(userService service.UserService, attemptService service.AttemptService) *UserHandler {
	return &UserHandler{userService: userService, attemptService: attemptService}
}

// currentUserID pulls the authenticated user's id out of the request locals.
func currentUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		logger.Get().Warn("User ID not found in context", zap.String("path", c.Path()))
		return "", c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
			Code:    "INVALID_USER_CONTEXT",
			Message: "User ID not found in context",
			Status:  fiber.StatusUnauthorized,
		})
	}
	return userID, nil
}

// GetMyProfile handles GET /users/me.
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	profile, svcErr := h.userService.GetUserProfile(c.Context(), userID)
	if svcErr != nil {
		return svcErr
	}
	return c.JSON(profile)
}

// ListMyAttempts handles GET /users/me/attempts.
func (h *UserHandler) ListMyAttempts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if userID == "" {
		return err
	}

	items, svcErr := h.attemptService.ListMyAttempts(c.Context(), userID)
	if svcErr != nil {
		return svcErr
	}
	return c.JSON(items)
}
