package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const (
	localsUserKey  = "current_user"
	sessionUserKey = "admin_user_id"
)

// currentUser returns the account a guard resolved for this request.
func currentUser(c *fiber.Ctx) *accounts.User {
	user, _ := c.Locals(localsUserKey).(*accounts.User)
	return user
}

// requireUser resolves the bearer token to an active account. A valid token
// whose subject no longer exists, or was soft deleted after issuance, is
// rejected the same way a bad token is.
func (s *Server) requireUser(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return accounts.ErrTokenMalformed
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}

	uid, err := uuid.Parse(claims.UserID())
	if err != nil {
		return accounts.ErrTokenMalformed
	}

	user, err := s.repo.Users().GetActive(c.Context(), uid)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return accounts.ErrUnknownIdentity
		}
		return err
	}

	c.Locals(localsUserKey, user)

	return c.Next()
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return accounts.ErrUnknownIdentity
	}

	if !user.IsAdmin() {
		return accounts.ErrAdminRequired
	}

	return c.Next()
}

// requireSelfOrAdmin allows admins through unconditionally and everyone else
// only when the id parameter names their own account.
func (s *Server) requireSelfOrAdmin(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil {
		return accounts.ErrUnknownIdentity
	}

	if user.IsAdmin() {
		return c.Next()
	}

	if id, err := uuid.Parse(c.Params("id")); err == nil && id == user.ID {
		return c.Next()
	}

	return accounts.ErrNotOwner
}

// bearerToken extracts the credential from an Authorization header, accepting
// both the "Bearer <token>" form and a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if i := strings.LastIndexByte(header, ' '); i >= 0 {
		header = header[i+1:]
	}
	return header
}

// requireServiceKey gates the machine-to-machine directory endpoints. Every
// configured key is compared in constant time so the match does not leak
// which key, or how much of it, was right.
func (s *Server) requireServiceKey(c *fiber.Ctx) error {
	presented := []byte(c.Get("X-Service-Api-Key"))
	if len(presented) == 0 {
		return accounts.ErrInvalidServiceKey
	}

	matched := 0
	for _, key := range s.cfg.ServiceKeys() {
		matched |= subtle.ConstantTimeCompare(presented, []byte(key))
	}

	if matched != 1 {
		return accounts.ErrInvalidServiceKey
	}

	return c.Next()
}

// requireAdminSession guards the HTML panel. Anything short of a live
// session that maps to an active admin account lands on the login form.
func (s *Server) requireAdminSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}

	id, ok := sess.Get(sessionUserKey).(string)
	if !ok || id == "" {
		return c.Redirect("/admin/login")
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return c.Redirect("/admin/login")
	}

	user, err := s.repo.Users().GetActive(c.Context(), uid)
	if err != nil || !user.IsAdmin() {
		// Sessions for demoted or deleted admins stop working immediately.
		if derr := sess.Destroy(); derr != nil {
			s.logger.Error("failed to destroy stale admin session", "error", derr)
		}
		return c.Redirect("/admin/login")
	}

	c.Locals(localsUserKey, user)

	return c.Next()
}
