// Package migrations applies the easyship claim schema to a persistence
// client. Postgres files sit at the root of the tree and sqlite variants
// with the same names live in the sqlite subdirectory.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// RootPath is where the tree sits inside the embedded filesystem.
	RootPath = "data/sql/migrations"
)

// Target is satisfied by *persistence.Client.
type Target interface {
	RegisterSQLMigrations(migrations ...fs.FS) *persistence.Migrations
	Migrate(ctx context.Context) error
}

// Dialect maps a database/sql driver name onto a migration dialect.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Filesystem returns the migrations for dialect from root. Every up file
// must have a matching down file.
func Filesystem(root fs.FS, dialect string) (fs.FS, error) {
	if root == nil {
		return nil, fmt.Errorf("migrations: filesystem is required")
	}
	path := RootPath
	switch dialect {
	case DialectPostgres:
	case DialectSQLite:
		path += "/sqlite"
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(root, path)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", path, err)
	}
	ups, err := fs.Glob(sub, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: glob %s: %w", path, err)
	}
	if len(ups) == 0 {
		return nil, fmt.Errorf("migrations: %s has no *.up.sql files", path)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(sub, down); err != nil {
			return nil, fmt.Errorf("migrations: %s/%s has no down migration", path, up)
		}
	}
	return sub, nil
}

// Apply registers the dialect's migrations on target and runs them.
func Apply(ctx context.Context, target Target, root fs.FS, dialect string) error {
	if target == nil {
		return fmt.Errorf("migrations: target is required")
	}
	sub, err := Filesystem(root, dialect)
	if err != nil {
		return err
	}
	target.RegisterSQLMigrations(sub)
	if err := target.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: apply %s: %w", dialect, err)
	}
	return nil
}

var _ Target = (*persistence.Client)(nil)
