package accounts

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var SoftDeleteUserSQL = `UPDATE "users" AS "usr"
SET
	"deleted_at" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var RestoreUserSQL = `UPDATE "users" AS "usr"
SET
	"deleted_at" = NULL,
	"updated_at" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the storage contract for account records. Reads default to the
// active scope; deleted rows stay reachable through the Any variants so
// they can be inspected and restored.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, record *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	Save(ctx context.Context, record *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetActive(ctx context.Context, id uuid.UUID) (*User, error)
	GetAny(ctx context.Context, id uuid.UUID) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	ListByExternalIDs(ctx context.Context, externalIDs []string) ([]*User, error)
	ListAll(ctx context.Context) ([]*User, error)

	SoftDelete(ctx context.Context, id uuid.UUID) (*User, error)
	SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	Restore(ctx context.Context, id uuid.UUID) (*User, error)
	RestoreTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)

	TrackSuccessfulLogin(ctx context.Context, user *User) error
	TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository wires the generic repository plumbing for User records.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, record *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, record)
}

// RegisterTx validates the whole candidate record before the insert; the
// unique indexes are the last line of defense against concurrent creates.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	prepareUserDefaults(record)

	if err := Validate(record); err != nil {
		return nil, err
	}

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, mapConstraintError(err)
	}

	return created, nil
}

func (a *users) Save(ctx context.Context, record *User) (*User, error) {
	return a.SaveTx(ctx, a.db, record)
}

// SaveTx persists changes to an existing record after re-running the
// whole-record validation.
func (a *users) SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	record.Email = NormalizeEmail(record.Email)
	normalizeLASID(record)

	if err := Validate(record); err != nil {
		return nil, err
	}

	now := time.Now()
	record.UpdatedAt = &now

	updated, err := a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, mapConstraintError(err)
	}

	return updated, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx resolves an active user by normalized email. Soft deleted
// rows are filtered out by the model's soft delete scope.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, asRecordNotFound(err, map[string]any{"email": NormalizeEmail(email)})
	}

	return record, nil
}

func (a *users) GetActive(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, asRecordNotFound(err, map[string]any{"id": id.String()})
	}

	return record, nil
}

// GetAny resolves a user regardless of deletion state, so deleted accounts
// remain addressable for inspection and restore.
func (a *users) GetAny(ctx context.Context, id uuid.UUID) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		WhereAllWithDeleted().
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, asRecordNotFound(err, map[string]any{"id": id.String()})
	}

	return record, nil
}

func (a *users) GetByExternalID(ctx context.Context, externalID string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.external_id = ?", externalID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		return nil, asRecordNotFound(err, map[string]any{"external_id": externalID})
	}

	return record, nil
}

func (a *users) ListByExternalIDs(ctx context.Context, externalIDs []string) ([]*User, error) {
	records := []*User{}
	if len(externalIDs) == 0 {
		return records, nil
	}

	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.external_id IN (?)", bun.In(externalIDs)).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// ListAll returns every record, deleted ones included, newest first. The
// admin index uses it to surface restorable accounts.
func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	records := []*User{}
	err := a.db.NewSelect().
		Model(&records).
		WhereAllWithDeleted().
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *users) SoftDelete(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.SoftDeleteTx(ctx, a.db, id)
}

func (a *users) SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	now := time.Now()
	res, err := a.Repository.RawTx(ctx, tx, SoftDeleteUserSQL, now, now, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		// Already deleted or unknown; let the caller see the current state.
		return a.GetAny(ctx, id)
	}

	return res[0], nil
}

func (a *users) Restore(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.RestoreTx(ctx, a.db, id)
}

func (a *users) RestoreTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, RestoreUserSQL, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	return a.TrackSuccessfulLoginTx(ctx, a.db, user)
}

// TrackSuccessfulLoginTx bumps the login audit fields in place; the raw
// update keeps the increment atomic under concurrent logins.
func (a *users) TrackSuccessfulLoginTx(ctx context.Context, tx bun.IDB, user *User) error {
	lastLoginAt := time.Now()
	_, err := tx.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"last_login_at" = ?,
			"login_count" = "login_count" + 1
		WHERE
			("usr".id = ?)
			AND "usr"."deleted_at" IS NULL;
	`, lastLoginAt, user.ID).Exec(ctx)

	if err == nil {
		user.LastLoginAt = &lastLoginAt
		user.LoginCount++
	}

	return err
}

func asRecordNotFound(err error, metadata map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.NewRecordNotFound().WithMetadata(metadata)
	}
	return err
}

// mapConstraintError turns storage-level unique violations into the same
// field errors application validation produces, so racing creates fail the
// same way sequential ones do. The repository wraps driver errors, so the
// whole cause chain must be inspected for the driver message.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}

	msg := constraintMessage(err)
	if !strings.Contains(msg, "UNIQUE constraint failed") &&
		!strings.Contains(msg, "duplicate key value") {
		return err
	}

	for _, field := range []string{"email", "external_id", "lasid"} {
		if strings.Contains(msg, field) {
			return FieldError(field, "has already been taken")
		}
	}

	return errors.Wrap(err, errors.CategoryConflict, "record conflicts with an existing user")
}

// constraintMessage flattens the cause chain into a single matchable string.
func constraintMessage(err error) string {
	parts := []string{}
	e := err
	for i := 0; e != nil && i < 8; i++ {
		parts = append(parts, e.Error())

		var rich *errors.Error
		if errors.As(e, &rich) && rich.Source != nil && rich.Source != e {
			e = rich.Source
			continue
		}
		e = stderrors.Unwrap(e)
	}
	return strings.Join(parts, " ")
}
