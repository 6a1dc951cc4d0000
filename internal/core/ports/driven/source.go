package driven

import (
	"context"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// RecordSource lists rows from the tabular data source.
type RecordSource interface {
	// ListRecords returns every record of a table, following pagination.
	ListRecords(ctx context.Context, table string) ([]domain.Record, error)

	// BaseID returns the identifier used to build record links.
	BaseID() string
}
