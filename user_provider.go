package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// noUserHash is a structurally valid bcrypt hash that matches no password.
// Comparing against it keeps the unknown-account path on the same cost
// curve as a real comparison.
const noUserHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserProvider resolves credentials to account records. It is the single
// place where email+password pairs are checked.
type UserProvider struct {
	store  Users
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store Users) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyCredentials finds the active user for the normalized email and
// compares the password against the stored hash. Every failure collapses
// into ErrInvalidCredentials: callers must not be able to distinguish a
// wrong password from a missing or soft deleted account.
func (u *UserProvider) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			ComparePasswordAndHash(password, noUserHash)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	// Login bookkeeping must never block a valid login.
	if err := u.store.TrackSuccessfulLogin(ctx, user); err != nil {
		u.logger.Error("failed to track successful login", "error", err, "user_id", user.ID.String())
	}

	return user, nil
}

// VerifyAdminCredentials is the admin panel variant: the credentials must
// resolve to an admin account.
func (u *UserProvider) VerifyAdminCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := u.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
