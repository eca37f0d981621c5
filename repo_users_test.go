package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts"
)

func TestRegister(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	t.Run("assigns defaults", func(t *testing.T) {
		created := registerUser(t, repo, "First@Example.com ", "secret123", "", "1234")

		assert.NotEmpty(t, created.ID)
		assert.NotEmpty(t, created.ExternalID)
		assert.NotEqual(t, created.ID, created.ExternalID)
		assert.Equal(t, "first@example.com", created.Email)
		assert.Equal(t, accounts.RoleStudent, created.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		registerUser(t, repo, "dup@example.com", "secret123", accounts.RoleTeacher, "")

		_, err := repo.Users().Register(ctx, &accounts.User{
			Email:        "DUP@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         accounts.RoleTeacher,
		})
		require.Error(t, err)
		assert.True(t, accounts.IsValidationError(err))
		assert.Contains(t, accounts.ValidationMessages(err)[0], "email")
	})

	t.Run("rejects duplicate lasid", func(t *testing.T) {
		registerUser(t, repo, "s1@example.com", "secret123", accounts.RoleStudent, "7777")

		lasid := "7777"
		_, err := repo.Users().Register(ctx, &accounts.User{
			Email:        "s2@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         accounts.RoleStudent,
			LASID:        &lasid,
		})
		require.Error(t, err)
		assert.True(t, accounts.IsValidationError(err))
	})

	t.Run("blank lasid stores as null", func(t *testing.T) {
		blank := "  "
		created, err := repo.Users().Register(ctx, &accounts.User{
			Email:        "t1@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         accounts.RoleTeacher,
			LASID:        &blank,
		})
		require.NoError(t, err)
		assert.Nil(t, created.LASID)

		// A second blank identifier must not trip the unique index.
		empty := ""
		_, err = repo.Users().Register(ctx, &accounts.User{
			Email:        "t2@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         accounts.RoleTeacher,
			LASID:        &empty,
		})
		require.NoError(t, err)
	})

	t.Run("rejects invalid record", func(t *testing.T) {
		_, err := repo.Users().Register(ctx, &accounts.User{
			Email:        "kid@example.com",
			PasswordHash: mustHash(t, "secret123"),
			Role:         accounts.RoleStudent,
		})
		require.Error(t, err)
		assert.True(t, accounts.IsValidationError(err))
	})
}

func TestGetByEmail(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created := registerUser(t, repo, "find@example.com", "secret123", accounts.RoleTeacher, "")

	t.Run("normalizes lookup", func(t *testing.T) {
		found, err := repo.Users().GetByEmail(ctx, "  FIND@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := repo.Users().GetByEmail(ctx, "missing@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("deleted account is invisible", func(t *testing.T) {
		_, err := repo.Users().SoftDelete(ctx, created.ID)
		require.NoError(t, err)

		_, err = repo.Users().GetByEmail(ctx, "find@example.com")
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestSoftDeleteAndRestore(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created := registerUser(t, repo, "cycle@example.com", "secret123", accounts.RoleTeacher, "")

	deleted, err := repo.Users().SoftDelete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())

	t.Run("active scope hides the record", func(t *testing.T) {
		_, err := repo.Users().GetActive(ctx, created.ID)
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})

	t.Run("any scope still resolves it", func(t *testing.T) {
		found, err := repo.Users().GetAny(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, found.Deleted())
	})

	t.Run("restore brings it back", func(t *testing.T) {
		restored, err := repo.Users().Restore(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, restored.Deleted())

		found, err := repo.Users().GetActive(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("restore is idempotent for existing rows", func(t *testing.T) {
		other := registerUser(t, repo, "gone@example.com", "secret123", accounts.RoleTeacher, "")
		_, err := repo.Users().SoftDelete(ctx, other.ID)
		require.NoError(t, err)

		_, err = repo.Users().Restore(ctx, other.ID)
		require.NoError(t, err)
		_, err = repo.Users().Restore(ctx, other.ID)
		require.NoError(t, err)
	})
}

func TestExternalIDLookups(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := registerUser(t, repo, "a@example.com", "secret123", accounts.RoleTeacher, "")
	b := registerUser(t, repo, "b@example.com", "secret123", accounts.RoleStudent, "1111")

	t.Run("single lookup", func(t *testing.T) {
		found, err := repo.Users().GetByExternalID(ctx, a.ExternalID.String())
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)
	})

	t.Run("batch lookup skips unknown ids", func(t *testing.T) {
		records, err := repo.Users().ListByExternalIDs(ctx, []string{
			a.ExternalID.String(),
			b.ExternalID.String(),
			"00000000-0000-0000-0000-000000000000",
		})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("empty input returns empty result", func(t *testing.T) {
		records, err := repo.Users().ListByExternalIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("deleted accounts drop out of the directory", func(t *testing.T) {
		_, err := repo.Users().SoftDelete(ctx, b.ID)
		require.NoError(t, err)

		_, err = repo.Users().GetByExternalID(ctx, b.ExternalID.String())
		require.Error(t, err)
		assert.True(t, repository.IsRecordNotFound(err))
	})
}

func TestListAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	u1 := registerUser(t, repo, "one@example.com", "secret123", accounts.RoleTeacher, "")
	registerUser(t, repo, "two@example.com", "secret123", accounts.RoleTeacher, "")

	_, err := repo.Users().SoftDelete(ctx, u1.ID)
	require.NoError(t, err)

	records, err := repo.Users().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestTrackSuccessfulLogin(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created := registerUser(t, repo, "login@example.com", "secret123", accounts.RoleTeacher, "")
	require.Equal(t, 0, created.LoginCount)

	require.NoError(t, repo.Users().TrackSuccessfulLogin(ctx, created))
	assert.Equal(t, 1, created.LoginCount)
	assert.NotNil(t, created.LastLoginAt)

	found, err := repo.Users().GetActive(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.LoginCount)
	assert.NotNil(t, found.LastLoginAt)
}

func TestSave(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created := registerUser(t, repo, "edit@example.com", "secret123", accounts.RoleTeacher, "")

	created.FirstName = "Edith"
	created.Nickname = "Edie"

	updated, err := repo.Users().Save(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Edith", updated.FirstName)
	assert.Equal(t, "Edie", updated.Nickname)

	t.Run("save re-validates", func(t *testing.T) {
		created.Role = accounts.UserRole("principal")
		_, err := repo.Users().Save(ctx, created)
		require.Error(t, err)
		assert.True(t, accounts.IsValidationError(err))
	})
}
