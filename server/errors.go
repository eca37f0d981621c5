package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type errorResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	TextCode string   `json:"text_code,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// errorHandler translates rich errors into transport responses. JSON for the
// API, a rendered page for the admin panel.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status, body := describeError(err)

	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"status", status,
			"path", c.Path(),
			"error", err,
		)
	}

	if strings.HasPrefix(c.Path(), "/admin") && !wantsJSON(c) {
		return c.Status(status).Render("error", fiber.Map{
			"title":   "Something went wrong",
			"status":  status,
			"message": body.Message,
			"errors":  body.Errors,
		})
	}

	return c.Status(status).JSON(body)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

func describeError(err error) (int, errorResponse) {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code, errorResponse{Message: fe.Message}
	}

	if repository.IsRecordNotFound(err) {
		return fiber.StatusNotFound, errorResponse{Message: "record not found", TextCode: "NOT_FOUND"}
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError, errorResponse{Message: "internal server error"}
	}

	body := errorResponse{
		Message:  richErr.Message,
		TextCode: richErr.TextCode,
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized, body
	case errors.CategoryAuthz:
		return fiber.StatusForbidden, body
	case errors.CategoryNotFound:
		return fiber.StatusNotFound, body
	case errors.CategoryValidation:
		body.Errors = accounts.ValidationMessages(richErr)
		return fiber.StatusUnprocessableEntity, body
	case errors.CategoryConflict:
		return fiber.StatusConflict, body
	case errors.CategoryBadInput:
		return fiber.StatusBadRequest, body
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests, body
	default:
		body.Message = "internal server error"
		body.TextCode = ""
		return fiber.StatusInternalServerError, body
	}
}
