package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// apiLogin exchanges credentials for a signed bearer token.
func (s *Server) apiLogin(c *fiber.Ctx) error {
	payload := &loginRequest{}
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid login payload")
	}

	if payload.Email == "" || payload.Password == "" {
		return errors.New("email and password are required", errors.CategoryBadInput)
	}

	user, err := s.provider.VerifyCredentials(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// apiValidate confirms a bearer token still maps to an active account.
func (s *Server) apiValidate(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"valid": true,
		"user":  currentUser(c),
	})
}
