package ports

import (
	"context"

	"neuromorph/domain/measurement"
)

// MeasurementRepository persists assays and their narrow measurement rows
type MeasurementRepository interface {
	CreateAssay(ctx context.Context, name, description string) (*measurement.Assay, error)
	GetAssay(ctx context.Context, id int64) (*measurement.Assay, error)
	GetAssayByName(ctx context.Context, name string) (*measurement.Assay, error)
	ListAssays(ctx context.Context) ([]measurement.Assay, error)
	DeleteAssay(ctx context.Context, id int64) error

	// InsertTable stores every non-missing cell of table under condition.
	// A (source, condition) pair already present for the assay is skipped
	// and reported as zero rows.
	InsertTable(ctx context.Context, assayID int64, condition string, table *measurement.Table) (int, error)

	// Measurements returns rows in insertion order
	Measurements(ctx context.Context, assayID int64, filter measurement.Filter) ([]measurement.Measurement, error)
	Conditions(ctx context.Context, assayID int64) ([]string, error)
	Parameters(ctx context.Context, assayID int64) ([]string, error)
	MeasurementCount(ctx context.Context, assayID int64) (int, error)
}
