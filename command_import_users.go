package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// ImportUsersMessage carries a raw CSV payload with one user per line:
// email,password,role,lasid,first_name,last_name,nickname,date_of_birth.
// A header row is skipped when the first line mentions "email".
type ImportUsersMessage struct {
	CSV string `json:"csv"`
	// StopOnError rolls back the whole batch on the first bad row instead
	// of skipping it.
	StopOnError bool `json:"stop_on_error"`
	// DeterministicIDs derives ids from the email so repeated imports of
	// the same payload stay idempotent.
	DeterministicIDs bool `json:"deterministic_ids"`
}

func (e ImportUsersMessage) Type() string { return "user.import_batch" }

// ImportUsersResult reports the outcome per row.
type ImportUsersResult struct {
	Created    []string `json:"created"`
	Errors     []string `json:"errors"`
	RolledBack bool     `json:"rolled_back"`
}

func (r *ImportUsersResult) SuccessCount() int { return len(r.Created) }
func (r *ImportUsersResult) ErrorCount() int   { return len(r.Errors) }

// ImportUsersHandler runs the batch inside one transaction.
type ImportUsersHandler struct {
	repo RepositoryManager
}

func NewImportUsersHandler(repo RepositoryManager) *ImportUsersHandler {
	return &ImportUsersHandler{repo: repo}
}

var errStopImport = goerrors.New("import aborted on first error", goerrors.CategoryOperation)

func (h *ImportUsersHandler) Execute(ctx context.Context, event ImportUsersMessage) (*ImportUsersResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user import",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ImportUsersHandler) execute(ctx context.Context, event ImportUsersMessage) (*ImportUsersResult, error) {
	result := &ImportUsersResult{}

	if strings.TrimSpace(event.CSV) == "" {
		return nil, goerrors.New("csv payload must not be empty", goerrors.CategoryBadInput)
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for index, line := range strings.Split(event.CSV, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			// Header row detection mirrors the admin form contract.
			if index == 0 && strings.Contains(strings.ToLower(line), "email") {
				continue
			}

			rowNum := index + 1
			user, password, rowErr := parseImportRow(line, event.DeterministicIDs)
			if rowErr == nil {
				rowErr = ValidatePassword(password)
			}

			if rowErr == nil {
				var hash string
				if hash, rowErr = HashPassword(password); rowErr == nil {
					user.PasswordHash = hash
					_, rowErr = h.repo.Users().RegisterTx(ctx, tx, user)
				}
			}

			if rowErr != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Row %d: %s", rowNum, strings.Join(ValidationMessages(rowErr), ", ")))

				if event.StopOnError {
					result.RolledBack = true
					return errStopImport
				}
				continue
			}

			result.Created = append(result.Created,
				fmt.Sprintf("Row %d: created user %s", rowNum, user.Email))
		}

		return nil
	})

	if err != nil {
		if goerrors.Is(err, errStopImport) {
			result.Created = nil
			return result, nil
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user import transaction failed")
	}

	return result, nil
}

// parseImportRow maps one CSV line onto a candidate record. Field-level
// validation happens later in RegisterTx; this only rejects values that
// cannot be represented at all.
func parseImportRow(line string, deterministic bool) (*User, string, error) {
	fields := strings.Split(line, ",")
	col := func(i int) string {
		if i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	role, ok := ParseRole(col(2))
	if !ok {
		return nil, "", FieldError("role", "must be one of student, teacher or admin")
	}

	user := &User{
		Email:     NormalizeEmail(col(0)),
		Role:      role,
		FirstName: col(4),
		LastName:  col(5),
		Nickname:  col(6),
	}

	if lasid := col(3); lasid != "" {
		user.LASID = &lasid
	}

	if dob := col(7); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			return nil, "", FieldError("date_of_birth", "must use the YYYY-MM-DD format")
		}
		user.DateOfBirth = &parsed
	}

	if deterministic && user.Email != "" {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}
		if id, err := hashid.NewUUID("external:" + user.Email); err == nil {
			user.ExternalID = id
		}
	}

	return user, col(1), nil
}
