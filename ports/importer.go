package ports

import (
	"context"

	"neuromorph/domain/measurement"
)

// TableReader reads one measurement file. A non-empty parameters list
// restricts the columns returned and fails if any is absent.
type TableReader interface {
	ReadTable(ctx context.Context, path string, parameters []string) (*measurement.Table, error)
}
