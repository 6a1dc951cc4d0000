package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/services"
)

var (
	askFlags        queryFlags
	askStrict       bool
	askExportFormat string
	askExportPath   string

	// now is replaced in tests for stable export names.
	now = time.Now
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your records",
	Long: `Retrieves the closest prospects or candidates and asks the model to
answer using only those records. The answer cites its sources as [SRCn].

When nothing matches, no model call is made.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askFlags.register(askCmd)
	askCmd.Flags().BoolVar(&askStrict, "strict-citations", false, "fail when the answer cites a source that was not retrieved")
	askCmd.Flags().StringVar(&askExportFormat, "export", "", "export the sources table: csv or json")
	askCmd.Flags().StringVar(&askExportPath, "out", "", "export file path (default <domain>_<timestamp>.<ext>)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	req, err := askFlags.request(args[0])
	if err != nil {
		return err
	}

	var format domain.ExportFormat
	if askExportFormat != "" {
		if format, err = services.ParseExportFormat(askExportFormat); err != nil {
			return err
		}
	}

	if err := ensureAskService(cmd.Context(), req.Kind); err != nil {
		return err
	}

	res, err := askService.Ask(cmd.Context(), domain.AskRequest{
		SearchRequest:   req,
		StrictCitations: askStrict,
	})
	if err != nil {
		return err
	}

	outputAnswer(cmd, res)

	if format != "" && !res.NoMatches {
		return exportRows(cmd, res, format)
	}
	return nil
}

func outputAnswer(cmd *cobra.Command, res *domain.AskResult) {
	if res.NoMatches {
		cmd.Println(styles.Warning.Render("No matching records found."))
		return
	}

	cmd.Println(styles.Title.Render("Answer"))
	cmd.Println(res.Answer)
	cmd.Println()

	if len(res.InvalidCitations) > 0 {
		cmd.Println(styles.Warning.Render(
			"Warning: the answer cites unknown sources: " + strings.Join(res.InvalidCitations, ", ")))
		cmd.Println()
	}

	outputRows(cmd, &res.SearchResult)
}

// exportRows writes the display rows to --out or a timestamped file.
func exportRows(cmd *cobra.Command, res *domain.AskResult, format domain.ExportFormat) error {
	path := askExportPath
	if path == "" {
		path = exportService.FileName(res.Kind, format, now())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := exportService.Export(f, format, res.Rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cmd.Println(styles.Success.Render(fmt.Sprintf("Exported %d rows to %s", len(res.Rows), path)))
	return nil
}
