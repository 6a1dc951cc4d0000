package driving

import (
	"io"
	"time"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// ExportService serialises display rows for download.
type ExportService interface {
	// Export writes rows to w. CSV has a header row; JSON is an indented array.
	Export(w io.Writer, format domain.ExportFormat, rows []domain.DisplayRow) error

	// FileName returns the default file name for an export made at a time.
	FileName(kind domain.Kind, format domain.ExportFormat, at time.Time) string
}
