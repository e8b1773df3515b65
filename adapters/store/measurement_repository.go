package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"neuromorph/domain/core"
	"neuromorph/domain/measurement"
	"neuromorph/internal"
	apperrors "neuromorph/internal/errors"
	"neuromorph/ports"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// measurementRepository implements the MeasurementRepository interface
type measurementRepository struct {
	db  *sqlx.DB
	log *internal.Logger
}

// NewMeasurementRepository creates a new measurement repository
func NewMeasurementRepository(db *sqlx.DB) ports.MeasurementRepository {
	return &measurementRepository{
		db:  db,
		log: internal.DefaultLogger.WithComponent("Store"),
	}
}

type assayRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
}

func (r assayRow) toAssay() (*measurement.Assay, error) {
	created, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("failed to parse created_at for assay %d", r.ID), err)
	}
	return &measurement.Assay{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   created,
	}, nil
}

// CreateAssay inserts a new assay; names are unique
func (r *measurementRepository) CreateAssay(ctx context.Context, name, description string) (*measurement.Assay, error) {
	if name == "" {
		return nil, core.NewValidationError("assay name", "cannot be empty")
	}
	row := assayRow{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(timeLayout),
	}
	query := r.db.Rebind(`INSERT INTO assays (name, description, created_at) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, row.Name, row.Description, row.CreatedAt).Scan(&row.ID); err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("failed to create assay %q", name), err)
	}
	r.log.Info("created assay %d %q", row.ID, name)
	return row.toAssay()
}

// GetAssay retrieves an assay by its ID
func (r *measurementRepository) GetAssay(ctx context.Context, id int64) (*measurement.Assay, error) {
	var row assayRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT id, name, description, created_at FROM assays WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", core.ErrAssayNotFound, id)
		}
		return nil, apperrors.DatabaseError("failed to get assay", err)
	}
	return row.toAssay()
}

// GetAssayByName retrieves an assay by its unique name
func (r *measurementRepository) GetAssayByName(ctx context.Context, name string) (*measurement.Assay, error) {
	var row assayRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT id, name, description, created_at FROM assays WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: name %q", core.ErrAssayNotFound, name)
		}
		return nil, apperrors.DatabaseError("failed to get assay", err)
	}
	return row.toAssay()
}

// ListAssays returns assays newest first
func (r *measurementRepository) ListAssays(ctx context.Context) ([]measurement.Assay, error) {
	var rows []assayRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, description, created_at FROM assays ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, apperrors.DatabaseError("failed to list assays", err)
	}
	assays := make([]measurement.Assay, 0, len(rows))
	for _, row := range rows {
		a, err := row.toAssay()
		if err != nil {
			return nil, err
		}
		assays = append(assays, *a)
	}
	return assays, nil
}

// DeleteAssay removes an assay and its measurements
func (r *measurementRepository) DeleteAssay(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM measurements WHERE assay_id = ?`), id); err != nil {
		return apperrors.DatabaseError("failed to delete measurements", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM assays WHERE id = ?`), id)
	if err != nil {
		return apperrors.DatabaseError("failed to delete assay", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", core.ErrAssayNotFound, id)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("failed to commit delete", err)
	}
	r.log.Info("deleted assay %d", id)
	return nil
}

// InsertTable stores the table's cells in one transaction
func (r *measurementRepository) InsertTable(ctx context.Context, assayID int64, condition string, table *measurement.Table) (int, error) {
	if condition == "" {
		return 0, core.NewValidationError("condition", "cannot be empty")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperrors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.GetContext(ctx, &existing, tx.Rebind(`
		SELECT COUNT(*) FROM measurements
		WHERE assay_id = ? AND source_file = ? AND condition = ?`),
		assayID, table.Source, condition)
	if err != nil {
		return 0, apperrors.DatabaseError("failed to check duplicates", err)
	}
	if existing > 0 {
		r.log.Warn("skipping %s (%s): already imported into assay %d", table.Source, condition, assayID)
		return 0, nil
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO measurements (assay_id, source_file, condition, row_index, parameter, value)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, apperrors.DatabaseError("failed to prepare insert", err)
	}
	defer stmt.Close()

	for i, values := range table.Rows {
		for j, parameter := range table.Parameters {
			if j >= len(values) || math.IsNaN(values[j]) || math.IsInf(values[j], 0) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, assayID, table.Source, condition, i, parameter, values[j]); err != nil {
				return 0, apperrors.DatabaseError("failed to insert measurement", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.DatabaseError("failed to commit measurements", err)
	}
	r.log.Debug("inserted %d rows from %s into assay %d", table.Len(), table.Source, assayID)
	return table.Len(), nil
}

// Measurements returns matching rows in insertion order
func (r *measurementRepository) Measurements(ctx context.Context, assayID int64, filter measurement.Filter) ([]measurement.Measurement, error) {
	query := `SELECT source_file, condition, row_index, parameter, value FROM measurements WHERE assay_id = ?`
	args := []interface{}{assayID}
	if len(filter.Parameters) > 0 {
		query += ` AND parameter IN (?)`
		args = append(args, filter.Parameters)
	}
	if len(filter.Conditions) > 0 {
		query += ` AND condition IN (?)`
		args = append(args, filter.Conditions)
	}
	query += ` ORDER BY id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to build measurement query", err)
	}

	var rows []measurement.Measurement
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, apperrors.DatabaseError("failed to query measurements", err)
	}
	return rows, nil
}

// Conditions lists distinct conditions alphabetically
func (r *measurementRepository) Conditions(ctx context.Context, assayID int64) ([]string, error) {
	var conditions []string
	err := r.db.SelectContext(ctx, &conditions, r.db.Rebind(`
		SELECT DISTINCT condition FROM measurements
		WHERE assay_id = ?
		ORDER BY condition`), assayID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list conditions", err)
	}
	return conditions, nil
}

// Parameters lists parameters in first-stored order
func (r *measurementRepository) Parameters(ctx context.Context, assayID int64) ([]string, error) {
	var parameters []string
	err := r.db.SelectContext(ctx, &parameters, r.db.Rebind(`
		SELECT parameter FROM measurements
		WHERE assay_id = ?
		GROUP BY parameter
		ORDER BY MIN(id)`), assayID)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list parameters", err)
	}
	return parameters, nil
}

// MeasurementCount counts stored measurement rows (one per file row)
func (r *measurementRepository) MeasurementCount(ctx context.Context, assayID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT source_file, condition, row_index FROM measurements WHERE assay_id = ?
		) AS file_rows`), assayID)
	if err != nil {
		return 0, apperrors.DatabaseError(fmt.Sprintf("failed to count measurements for assay %d", assayID), err)
	}
	return count, nil
}
