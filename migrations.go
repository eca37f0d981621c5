package accounts

import (
	"context"
	"database/sql"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const migrationTable = "schema_migrations"

// Migrate applies every embedded migration exactly once, recording applied
// files in a bookkeeping table. Each migration runs in its own transaction.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	migrationsDir, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open embedded migrations")
	}
	return MigrateFS(ctx, sqlDB, migrationsDir)
}

// MigrateFS applies .sql migrations from the given filesystem in lexical
// order. Files use "-- +migrate Up" / "-- +migrate Down" sections; only the
// Up section is executed.
func MigrateFS(ctx context.Context, sqlDB *sql.DB, migrationFS fs.FS) error {
	if sqlDB == nil {
		return errors.New("sql db is required", errors.CategoryInternal)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read migrations dir")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);`); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to ensure migration table")
	}

	for _, file := range files {
		applied, err := migrationApplied(ctx, sqlDB, file)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check migration state").
				WithMetadata(map[string]any{"migration": file})
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Clean(file))
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to read migration").
				WithMetadata(map[string]any{"migration": file})
		}

		upSQL := extractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to begin migration transaction")
		}

		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, errors.CategoryInternal, "failed to execute migration").
				WithMetadata(map[string]any{"migration": file})
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
			file, time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, errors.CategoryInternal, "failed to record migration").
				WithMetadata(map[string]any{"migration": file})
		}

		if err := tx.Commit(); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to commit migration").
				WithMetadata(map[string]any{"migration": file})
		}
	}

	return nil
}

func extractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

func migrationApplied(ctx context.Context, sqlDB *sql.DB, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRowContext(ctx, "SELECT 1 FROM "+migrationTable+" WHERE name = ?", name)
	if err := row.Scan(&found); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
