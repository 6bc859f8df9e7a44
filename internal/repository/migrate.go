package repository

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/migrations"
)

// Migrate applies every *.up.sql file in name order. Scripts must be idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := fs.Glob(migrations.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("fs.Glob: %w", err)
	}

	for _, name := range names {
		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("fs.ReadFile[%s]: %w", name, err)
		}

		// no arguments, so pgx sends the simple protocol and multi-statement scripts work
		if _, err := pool.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}

	return nil
}
