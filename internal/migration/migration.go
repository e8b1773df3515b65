package migration

import (
	"context"
	"fmt"

	"neuromorph/internal"
	"neuromorph/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations for sqlite3 and postgres
type MigrationRunner struct {
	version string
	log     *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		log:     internal.DefaultLogger.WithComponent("Migration"),
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	dialect := db.DriverName()
	if dialect != "postgres" && dialect != "sqlite3" {
		return errors.ConfigInvalid(fmt.Sprintf("no migrations for driver %q", dialect))
	}

	if err := r.createAssaysTable(ctx, db, dialect); err != nil {
		return errors.DatabaseError("failed to create assays table", err)
	}

	if err := r.createMeasurementsTable(ctx, db, dialect); err != nil {
		return errors.DatabaseError("failed to create measurements table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	r.log.Debug("schema %s ready on %s", r.version, dialect)
	return nil
}

func (r *MigrationRunner) createAssaysTable(ctx context.Context, db *sqlx.DB, dialect string) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == "postgres" {
		id = "BIGSERIAL PRIMARY KEY"
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assays (
			id `+id+`,
			name TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createMeasurementsTable(ctx context.Context, db *sqlx.DB, dialect string) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	value := "REAL"
	if dialect == "postgres" {
		id = "BIGSERIAL PRIMARY KEY"
		value = "DOUBLE PRECISION"
	}
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS measurements (
			id `+id+`,
			assay_id BIGINT NOT NULL REFERENCES assays(id) ON DELETE CASCADE,
			source_file TEXT NOT NULL,
			condition TEXT NOT NULL,
			row_index INTEGER NOT NULL,
			parameter TEXT NOT NULL,
			value `+value+` NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_measurements_assay ON measurements(assay_id)",
		"CREATE INDEX IF NOT EXISTS idx_measurements_condition ON measurements(assay_id, condition)",
		"CREATE INDEX IF NOT EXISTS idx_measurements_source ON measurements(assay_id, source_file, condition)",
		"CREATE INDEX IF NOT EXISTS idx_measurements_parameter ON measurements(assay_id, parameter)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			r.log.Warn("failed to create index: %v", err)
		}
	}

	return nil
}
