package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record shared by every surface: the JSON API, the
// admin panel and the service directory endpoints.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID           uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ExternalID   uuid.UUID  `bun:"external_id,notnull,type:uuid" json:"external_id,omitempty"`
	Email        string     `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	Role         UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	LASID        *string    `bun:"lasid" json:"lasid,omitempty"`
	FirstName    string     `bun:"first_name" json:"first_name,omitempty"`
	LastName     string     `bun:"last_name" json:"last_name,omitempty"`
	Nickname     string     `bun:"nickname" json:"nickname,omitempty"`
	DateOfBirth  *time.Time `bun:"date_of_birth" json:"date_of_birth,omitempty"`
	LastLoginAt  *time.Time `bun:"last_login_at" json:"last_login_at,omitempty"`
	LoginCount   int        `bun:"login_count" json:"login_count"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt    *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Deleted reports whether the user has been soft deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent reports whether the user holds the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// DisplayName returns the friendliest name we have on record.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// Profile is the read-only projection exposed to trusted backend callers.
// It is keyed by external id so peers never see storage primary keys.
type Profile struct {
	ExternalID  string     `json:"external_id"`
	Email       string     `json:"email"`
	Role        UserRole   `json:"role"`
	LASID       *string    `json:"lasid"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Nickname    string     `json:"nickname,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Profile builds the directory projection for the user.
func (u *User) Profile() Profile {
	return Profile{
		ExternalID:  u.ExternalID.String(),
		Email:       u.Email,
		Role:        u.Role,
		LASID:       u.LASID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Nickname:    u.Nickname,
		DateOfBirth: u.DateOfBirth,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email the same way on every path
// that touches credentials, so uniqueness stays case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// prepareUserDefaults assigns ids and normalizes fields before the record
// first hits storage. Both ids are immutable once set.
func prepareUserDefaults(record *User) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.ExternalID == uuid.Nil {
		record.ExternalID = uuid.New()
	}

	if record.Role == "" {
		record.Role = RoleStudent
	}

	record.Email = NormalizeEmail(record.Email)
	normalizeLASID(record)
}

// normalizeLASID drops empty identifiers so they store as NULL instead of
// colliding on the unique index.
func normalizeLASID(record *User) {
	if record.LASID == nil {
		return
	}

	trimmed := strings.TrimSpace(*record.LASID)
	if trimmed == "" {
		record.LASID = nil
		return
	}

	record.LASID = &trimmed
}
