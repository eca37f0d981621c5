package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-errors"
)

// apiServiceUserShow returns the directory profile for one external id.
// Trusted peers address accounts by external id only; primary keys never
// cross the service boundary.
func (s *Server) apiServiceUserShow(c *fiber.Ctx) error {
	externalID := c.Params("external_id")

	user, err := s.repo.Users().GetByExternalID(c.Context(), externalID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"user": user.Profile()})
}

type batchProfilesRequest struct {
	ExternalIDs []string `json:"external_ids"`
}

// apiServiceUsersBatch resolves many external ids at once. Unknown ids are
// silently absent from the result so one stale reference does not fail a
// whole roster lookup.
func (s *Server) apiServiceUsersBatch(c *fiber.Ctx) error {
	payload := &batchProfilesRequest{}

	if c.Method() == fiber.MethodGet {
		payload.ExternalIDs = queryExternalIDs(c)
	} else if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid batch lookup payload")
	}

	if len(payload.ExternalIDs) == 0 {
		return errors.New("external_ids must not be empty", errors.CategoryBadInput)
	}

	records, err := s.repo.Users().ListByExternalIDs(c.Context(), payload.ExternalIDs)
	if err != nil {
		return err
	}

	profiles := make([]accounts.Profile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, record.Profile())
	}

	return c.JSON(fiber.Map{"users": profiles})
}

// queryExternalIDs collects repeated external_ids query values, with or
// without the bracket suffix some HTTP clients append.
func queryExternalIDs(c *fiber.Ctx) []string {
	ids := []string{}
	for _, key := range []string{"external_ids[]", "external_ids"} {
		for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
			if id := strings.TrimSpace(string(raw)); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
