package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/core/services"
)

// IngestLockFile is created in the data directory while an ingest runs.
const IngestLockFile = "ingest.lock"

var (
	ingestDomain     string
	ingestBatchSize  int
	ingestNoProgress bool
)

// stderrIsTerminal decides whether the progress bar is drawn.
var stderrIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index an Airtable table",
	Long: `Reads every record of the domain's Airtable table, splits it into
chunks, embeds them and upserts them into the domain's vector index.

Chunk IDs derive from the record ID, so running ingest again overwrites
the previous vectors instead of duplicating them. Only one ingest can run
at a time per data directory.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDomain, "domain", "prospects", "domain to ingest: prospects or candidates")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", services.DefaultBatchSize, "chunks embedded and upserted per batch")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "do not draw a progress bar")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	kind, err := parseKindFlag(ingestDomain)
	if err != nil {
		return err
	}
	if ingestBatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidInput)
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}
	unlock, err := lockIngest(s.DataDir)
	if err != nil {
		return err
	}
	defer unlock()

	if err := ensureIngestService(cmd.Context(), kind); err != nil {
		return err
	}

	opts := driving.IngestOptions{BatchSize: ingestBatchSize}
	if !ingestNoProgress && stderrIsTerminal() {
		opts.Progress = newBarProgress(cmd.ErrOrStderr(), "ingesting "+string(kind))
	}

	report, err := ingestService.Ingest(cmd.Context(), kind, opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Println(styles.Success.Render(fmt.Sprintf("Ingested %s from %q into %s", kind, report.Table, report.Index)))
	cmd.Printf("  Records read:    %d\n", report.RecordsRead)
	cmd.Printf("  Records skipped: %d\n", report.RecordsSkipped)
	cmd.Printf("  Chunks written:  %d\n", report.ChunksWritten)
	cmd.Printf("  Duration:        %s\n", report.Duration.Round(time.Millisecond))
	return nil
}

// lockIngest takes the per data directory ingest lock.
func lockIngest(dataDir string) (func(), error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dataDir, IngestLockFile)
	l := flock.New(path)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock: %s)", domain.ErrIngestInProgress, path)
	}
	return func() { _ = l.Unlock() }, nil
}

// barProgress draws ingest progress, one step per record.
type barProgress struct {
	w    io.Writer
	desc string
	bar  *progressbar.ProgressBar
}

func newBarProgress(w io.Writer, desc string) *barProgress {
	return &barProgress{w: w, desc: desc}
}

func (p *barProgress) Start(total int) {
	if total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(p.desc),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *barProgress) Increment() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

func (p *barProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
