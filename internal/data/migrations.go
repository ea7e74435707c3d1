package data

import (
	"context"
	"database/sql"

	"github.com/target/content-portal/internal/migrate"
)

// RunMigrations executes database migrations to set up the required schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}

// AppliedMigrations lists the schema versions already recorded in the database.
func AppliedMigrations(ctx context.Context, db *sql.DB) ([]string, error) {
	return migrate.Applied(ctx, db)
}
