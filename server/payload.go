package server

import (
	"strings"
	"time"

	"github.com/goliatone/go-accounts"
)

// userPayload captures the writable fields of an account. Pointer fields
// distinguish "absent" from "set to empty" so partial updates work.
type userPayload struct {
	Email       *string `json:"email" form:"email"`
	Password    *string `json:"password" form:"password"`
	Role        *string `json:"role" form:"role"`
	LASID       *string `json:"lasid" form:"lasid"`
	FirstName   *string `json:"first_name" form:"first_name"`
	LastName    *string `json:"last_name" form:"last_name"`
	Nickname    *string `json:"nickname" form:"nickname"`
	DateOfBirth *string `json:"date_of_birth" form:"date_of_birth"`
}

// apply copies the permitted payload fields onto the record. Non-admin
// writers can only change their password and profile fields; identity and
// role fields they submit are dropped, mirroring how the HTML form ignores
// inputs it never rendered.
func (p *userPayload) apply(user *accounts.User, asAdmin bool) error {
	if asAdmin {
		if p.Email != nil {
			user.Email = accounts.NormalizeEmail(*p.Email)
		}
		if p.Role != nil {
			role, ok := accounts.ParseRole(*p.Role)
			if !ok {
				return accounts.FieldError("role", "must be one of student, teacher or admin")
			}
			user.Role = role
		}
		if p.LASID != nil {
			if lasid := strings.TrimSpace(*p.LASID); lasid == "" {
				user.LASID = nil
			} else {
				user.LASID = &lasid
			}
		}
	}

	if p.Password != nil && *p.Password != "" {
		if err := accounts.ValidatePassword(*p.Password); err != nil {
			return err
		}
		hash, err := accounts.HashPassword(*p.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	if p.FirstName != nil {
		user.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		user.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Nickname != nil {
		user.Nickname = strings.TrimSpace(*p.Nickname)
	}
	if p.DateOfBirth != nil {
		if dob := strings.TrimSpace(*p.DateOfBirth); dob == "" {
			user.DateOfBirth = nil
		} else {
			parsed, err := time.Parse("2006-01-02", dob)
			if err != nil {
				return accounts.FieldError("date_of_birth", "must use the YYYY-MM-DD format")
			}
			user.DateOfBirth = &parsed
		}
	}

	return nil
}

// newUser builds a fresh record from a create payload. Creation requires a
// password; everything else falls back to defaults.
func (p *userPayload) newUser() (*accounts.User, error) {
	user := &accounts.User{}
	if err := p.apply(user, true); err != nil {
		return nil, err
	}

	if p.Password == nil || *p.Password == "" {
		return nil, accounts.FieldError("password", "can't be blank")
	}

	return user, nil
}
