package accounts

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients alongside the HTTP status.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeUnknownIdentity   = "UNKNOWN_IDENTITY"
	TextCodeAdminRequired     = "ADMIN_REQUIRED"
	TextCodeForbidden         = "FORBIDDEN"
	TextCodeInvalidServiceKey = "INVALID_SERVICE_KEY"
	TextCodeValidation        = "VALIDATION_FAILED"
)

// ErrInvalidCredentials is the single failure every login path returns, so a
// caller can never tell a wrong password from a missing or deleted account.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is returned when a hash comparison fails
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt
var ErrNoEmptyString = errors.New("value must not be an empty string", errors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE")

// ErrTokenExpired is returned for tokens past their expiration window
var ErrTokenExpired = errors.New("authentication token has expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers bad signatures and undecodable payloads
var ErrTokenMalformed = errors.New("authentication token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnknownIdentity is returned when a valid token references a user that
// no longer exists or has been soft deleted.
var ErrUnknownIdentity = errors.New("identity could not be resolved", errors.CategoryAuth).
	WithTextCode(TextCodeUnknownIdentity)

// ErrAdminRequired gates admin-only operations
var ErrAdminRequired = errors.New("admin access required", errors.CategoryAuthz).
	WithTextCode(TextCodeAdminRequired)

// ErrNotOwner gates self-or-admin operations
var ErrNotOwner = errors.New("insufficient permissions for this resource", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden)

// ErrInvalidServiceKey rejects machine-to-machine calls without a known key
var ErrInvalidServiceKey = errors.New("invalid service credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidServiceKey)

// WrapValidation converts an ozzo validation result into a rich error that
// carries per-field messages in its metadata. A nil input stays nil.
func WrapValidation(err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		return errors.Wrap(err, errors.CategoryValidation, "validation failed").
			WithTextCode(TextCodeValidation)
	}

	fields := map[string]any{}
	for name, ferr := range verrs {
		fields[name] = ferr.Error()
	}

	return errors.New("validation failed", errors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithMetadata(map[string]any{"fields": fields})
}

// FieldError builds a single-field validation error in the same shape
// WrapValidation produces.
func FieldError(field, message string) error {
	return errors.New("validation failed", errors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithMetadata(map[string]any{"fields": map[string]any{field: message}})
}

// ValidationMessages flattens the field metadata of a validation error into
// "field message" strings for HTML views and import reports.
func ValidationMessages(err error) []string {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return []string{err.Error()}
	}

	fields, ok := richErr.Metadata["fields"].(map[string]any)
	if !ok || len(fields) == 0 {
		return []string{richErr.Message}
	}

	out := make([]string, 0, len(fields))
	for name, msg := range fields {
		out = append(out, name+" "+toString(msg))
	}
	sort.Strings(out)
	return out
}

// IsValidationError reports whether err carries the validation category.
func IsValidationError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryValidation
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return ""
}
