package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// exportTimeLayout is the timestamp embedded in export file names.
const exportTimeLayout = "20060102_150405"

// ExportService writes display rows as CSV or JSON.
type ExportService struct{}

// NewExportService creates an export service.
func NewExportService() *ExportService {
	return &ExportService{}
}

// Export writes rows to w in the given format.
func (s *ExportService) Export(w io.Writer, format domain.ExportFormat, rows []domain.DisplayRow) error {
	switch format {
	case domain.ExportCSV:
		return writeCSV(w, rows)
	case domain.ExportJSON:
		return writeJSON(w, rows)
	default:
		return fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
}

// FileName returns "<domain>_<YYYYmmdd_HHMMSS>.<ext>".
func (s *ExportService) FileName(kind domain.Kind, format domain.ExportFormat, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", kind, at.Format(exportTimeLayout), format)
}

func writeCSV(w io.Writer, rows []domain.DisplayRow) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(rows[0].Headers()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Tag, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, rows []domain.DisplayRow) error {
	if rows == nil {
		rows = []domain.DisplayRow{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ParseExportFormat converts user input into an ExportFormat.
func ParseExportFormat(s string) (domain.ExportFormat, error) {
	f := domain.ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case domain.ExportCSV, domain.ExportJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: export format %q (want csv or json)", domain.ErrUnsupportedType, s)
	}
}
