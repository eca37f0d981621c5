package accounts_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-accounts"
)

func TestDisplayName(t *testing.T) {
	u := &accounts.User{Email: "kid@example.com"}
	assert.Equal(t, "kid@example.com", u.DisplayName())

	u.FirstName = "Kim"
	assert.Equal(t, "Kim", u.DisplayName())

	u.Nickname = "Kiddo"
	assert.Equal(t, "Kiddo", u.DisplayName())
}

func TestDeleted(t *testing.T) {
	u := &accounts.User{}
	assert.False(t, u.Deleted())

	now := time.Now()
	u.DeletedAt = &now
	assert.True(t, u.Deleted())
}

func TestProfileProjection(t *testing.T) {
	lasid := "1234"
	u := &accounts.User{
		ID:         uuid.New(),
		ExternalID: uuid.New(),
		Email:      "kid@example.com",
		Role:       accounts.RoleStudent,
		LASID:      &lasid,
		FirstName:  "Kim",
	}

	p := u.Profile()
	assert.Equal(t, u.ExternalID.String(), p.ExternalID)
	assert.Equal(t, u.Email, p.Email)
	assert.Equal(t, u.Role, p.Role)
	assert.Equal(t, &lasid, p.LASID)
}
