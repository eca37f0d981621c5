package server

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
)

func (s *Server) adminLoginForm(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"title": "Admin Login",
	})
}

func (s *Server) adminLogin(c *fiber.Ctx) error {
	payload := &loginRequest{}
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid login payload")
	}

	user, err := s.provider.VerifyAdminCredentials(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
			"title": "Admin Login",
			"error": "Invalid email or password",
			"email": payload.Email,
		})
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return err
	}

	sess.Set(sessionUserKey, user.ID.String())
	if err := sess.Save(); err != nil {
		return err
	}

	return c.Redirect("/admin/users")
}

func (s *Server) adminLogout(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err == nil {
		if derr := sess.Destroy(); derr != nil {
			s.logger.Error("failed to destroy admin session", "error", derr)
		}
	}

	return c.Redirect("/admin/login")
}

func (s *Server) adminUsersIndex(c *fiber.Ctx) error {
	records, err := s.repo.Users().ListAll(c.Context())
	if err != nil {
		return err
	}

	return c.Render("users_index", fiber.Map{
		"title": "Users",
		"users": records,
	})
}

func (s *Server) adminUsersNew(c *fiber.Ctx) error {
	return c.Render("users_form", fiber.Map{
		"title":  "New User",
		"action": "/admin/users",
		"record": &accounts.User{Role: accounts.RoleStudent},
		"roles":  accounts.GetAllRoles(),
	})
}

func (s *Server) adminUsersCreate(c *fiber.Ctx) error {
	payload := &userPayload{}
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user form")
	}

	user, err := payload.newUser()
	if err == nil {
		user, err = s.repo.Users().Register(c.Context(), user)
	}

	if err != nil {
		if accounts.IsValidationError(err) {
			record := &accounts.User{}
			_ = payload.apply(record, true)
			return c.Status(fiber.StatusUnprocessableEntity).Render("users_form", fiber.Map{
				"title":  "New User",
				"action": "/admin/users",
				"record": record,
				"roles":  accounts.GetAllRoles(),
				"errors": accounts.ValidationMessages(err),
			})
		}
		return err
	}

	return c.Redirect("/admin/users/" + user.ID.String())
}

func (s *Server) adminUsersShow(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().GetAny(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Render("users_show", fiber.Map{
		"title":  user.DisplayName(),
		"record": user,
	})
}

func (s *Server) adminUsersEdit(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().GetAny(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Render("users_form", fiber.Map{
		"title":  "Edit " + user.DisplayName(),
		"action": "/admin/users/" + user.ID.String(),
		"record": user,
		"roles":  accounts.GetAllRoles(),
	})
}

func (s *Server) adminUsersUpdate(c *fiber.Ctx) error {
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
		return errors.Wrap(err, errors.CategoryBadInput, "invalid user form")
	}

	err = payload.apply(user, true)
	if err == nil {
		user, err = s.repo.Users().Save(c.Context(), user)
	}

	if err != nil {
		if accounts.IsValidationError(err) {
			return c.Status(fiber.StatusUnprocessableEntity).Render("users_form", fiber.Map{
				"title":  "Edit " + user.DisplayName(),
				"action": "/admin/users/" + user.ID.String(),
				"record": user,
				"roles":  accounts.GetAllRoles(),
				"errors": accounts.ValidationMessages(err),
			})
		}
		return err
	}

	return c.Redirect("/admin/users/" + user.ID.String())
}

func (s *Server) adminUsersDelete(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if _, err := s.repo.Users().SoftDelete(c.Context(), id); err != nil {
		return err
	}

	return c.Redirect("/admin/users")
}

func (s *Server) adminUsersRestore(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	user, err := s.repo.Users().Restore(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Redirect("/admin/users/" + user.ID.String())
}

func (s *Server) adminImportForm(c *fiber.Ctx) error {
	return c.Render("users_import", fiber.Map{
		"title": "Batch Import",
	})
}

// adminImportSubmit accepts the roster either as an uploaded file or pasted
// into the textarea; the file wins when both are present.
func (s *Server) adminImportSubmit(c *fiber.Ctx) error {
	csv := c.FormValue("csv")

	if file, err := c.FormFile("file"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to open uploaded file")
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to read uploaded file")
		}
		csv = string(content)
	}

	if strings.TrimSpace(csv) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).Render("users_import", fiber.Map{
			"title": "Batch Import",
			"error": "Provide a CSV file or paste rows into the text area",
		})
	}

	result, err := s.importer.Execute(c.Context(), accounts.ImportUsersMessage{
		CSV:         csv,
		StopOnError: c.FormValue("stop_on_error") != "",
	})
	if err != nil {
		return err
	}

	return c.Render("users_import_result", fiber.Map{
		"title":  "Import Results",
		"result": result,
	})
}
