package accounts

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var lasidFormat = regexp.MustCompile(`^\d{4}$`)

// MinPasswordLength applies wherever a plaintext password enters the system.
const MinPasswordLength = 6

// Validate runs the whole-record rules before any persistence attempt.
// The lasid rule is cross-field: it depends on the candidate's role, so the
// error map is assembled by hand instead of through ValidateStruct, which
// skips rules on nil pointer fields.
func Validate(u *User) error {
	verrs := validation.Errors{}

	if err := validation.Validate(u.Email, validation.Required, is.Email); err != nil {
		verrs["email"] = err
	}

	if err := validateRole(u.Role); err != nil {
		verrs["role"] = err
	}

	if err := validateLASIDForRole(u.Role)(u.LASID); err != nil {
		verrs["lasid"] = err
	}

	if len(verrs) == 0 {
		return nil
	}

	return WrapValidation(verrs)
}

// ValidatePassword checks a plaintext password before it is hashed.
func ValidatePassword(password string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.Length(MinPasswordLength, 100),
	)
	if err != nil {
		return FieldError("password", err.Error())
	}
	return nil
}

func validateRole(value any) error {
	role, ok := value.(UserRole)
	if !ok {
		if s, sok := value.(string); sok {
			role = UserRole(s)
		}
	}

	if !role.IsValid() {
		return errors.New("must be one of student, teacher or admin")
	}
	return nil
}

func validateLASIDForRole(role UserRole) validation.RuleFunc {
	return func(value any) error {
		lasid := lasidValue(value)

		if role.RequiresLASID() {
			if lasid == nil || !lasidFormat.MatchString(*lasid) {
				return errors.New("must be exactly 4 digits")
			}
			return nil
		}

		if lasid != nil && *lasid != "" {
			return errors.New("must be nil for teachers and admins")
		}
		return nil
	}
}

func lasidValue(value any) *string {
	switch v := value.(type) {
	case *string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return &v
	default:
		return nil
	}
}
