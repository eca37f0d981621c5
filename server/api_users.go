package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

func parseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.New("record not found", errors.CategoryNotFound).
			WithTextCode("NOT_FOUND").
			WithMetadata(map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

// apiUsersIndex lists every account, soft deleted ones included, so admins
// can see what is restorable.
func (s *Server) apiUsersIndex(c *fiber.Ctx) error {
	records, err := s.repo.Users().ListAll(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (s *Server) apiUsersCreate(c *fiber.Ctx) error {
	payload := &userPayload{}
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user payload")
	}

	user, err := payload.newUser()
	if err != nil {
		return err
	}

	created, err := s.repo.Users().Register(c.Context(), user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": created})
}

// apiUsersShow resolves deleted accounts too; the payload carries deleted_at
// so callers can tell.
func (s *Server) apiUsersShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().GetAny(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user})
}

// apiUsersUpdate applies a partial update. The guard already ensured the
// caller is the owner or an admin; apply narrows what each may write.
func (s *Server) apiUsersUpdate(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().GetAny(c.Context(), id)
	if err != nil {
		return err
	}

	payload := &userPayload{}
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user payload")
	}

	actor := currentUser(c)
	if err := payload.apply(user, actor != nil && actor.IsAdmin()); err != nil {
		return err
	}

	updated, err := s.repo.Users().Save(c.Context(), user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": updated})
}

func (s *Server) apiUsersDestroy(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if _, err := s.repo.Users().SoftDelete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func (s *Server) apiUsersRestore(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().Restore(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user})
}
