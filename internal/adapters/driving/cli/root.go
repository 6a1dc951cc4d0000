// Package cli provides the ragbot command line interface.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/config/env"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/source/airtable"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/vector"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/core/ports/driven"
	"github.com/custodia-labs/ragbot/internal/core/ports/driving"
	"github.com/custodia-labs/ragbot/internal/core/services"
	"github.com/custodia-labs/ragbot/internal/logger"
	"github.com/custodia-labs/ragbot/internal/postprocessors/chunker"
)

var (
	version = "dev"

	verbose bool
	envFile string

	// settings is loaded once per process. Tests set it directly.
	settings *domain.Settings

	searchService driving.SearchService
	askService    driving.AskService
	ingestService driving.IngestService
	indexService  driving.IndexService
	exportService driving.ExportService = services.NewExportService()
	promptStore   *file.PromptStore

	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:   "ragbot",
	Short: "Ask questions about your Airtable prospects and candidates",
	Long: `ragbot indexes Airtable prospect and candidate tables into a vector
store and answers questions grounded in the closest records.

Every answer cites its sources as [SRCn] tags that link back to Airtable.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return env.LoadDotEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default .env)")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	version = v
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// loadSettings reads the config file and the environment once.
func loadSettings() (domain.Settings, error) {
	if settings != nil {
		return *settings, nil
	}

	store, err := file.NewConfigStore(os.Getenv(domain.EnvDataDir))
	if err != nil {
		return domain.Settings{}, err
	}
	s, err := env.NewLoader(store).Settings()
	if err != nil {
		return domain.Settings{}, err
	}
	settings = &s
	return s, nil
}

// loadValidSettings loads settings and checks them for purpose.
func loadValidSettings(purpose domain.Purpose) (domain.Settings, error) {
	s, err := loadSettings()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := s.Validate(purpose); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func onClose(fn func() error) {
	closers = append(closers, fn)
}

// closeServices releases everything the wiring opened, last first.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Debug("close: %v", err)
		}
	}
	closers = nil
}

// openIndexes creates the vector store and opens the index of each kind.
func openIndexes(ctx context.Context, s domain.Settings, kinds ...domain.Kind) (map[domain.Kind]driven.VectorIndex, error) {
	store, err := vector.NewStore(s)
	if err != nil {
		return nil, err
	}
	onClose(store.Close)

	indexes, err := vector.OpenIndexes(ctx, store, s, kinds...)
	if err != nil {
		return nil, err
	}
	for _, idx := range indexes {
		onClose(idx.Close)
	}
	return indexes, nil
}

func newEmbedder(ctx context.Context, s domain.Settings) (driven.EmbeddingService, error) {
	embedder, err := ai.CreateEmbeddingService(ctx, &s.Embedding)
	if err != nil {
		return nil, err
	}
	onClose(embedder.Close)
	return embedder, nil
}

// ensureSearchService wires retrieval for kind unless a service is set.
func ensureSearchService(ctx context.Context, kind domain.Kind) error {
	if searchService != nil {
		return nil
	}
	s, err := loadValidSettings(domain.PurposeSearch)
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, s)
	if err != nil {
		return err
	}
	indexes, err := openIndexes(ctx, s, kind)
	if err != nil {
		return err
	}

	searchService = newSearchService(embedder, indexes, s)
	return nil
}

func newSearchService(embedder driven.EmbeddingService, indexes map[domain.Kind]driven.VectorIndex, s domain.Settings) driving.SearchService {
	return services.NewSearchService(embedder, indexes,
		services.WithBaseID(s.Source.BaseID),
		services.WithDimensions(s.Embedding.Dimensions),
	)
}

// ensurePromptStore opens the persona directory under the data dir.
func ensurePromptStore(s domain.Settings) (*file.PromptStore, error) {
	if promptStore != nil {
		return promptStore, nil
	}
	store, err := file.NewPromptStore(filepath.Join(s.DataDir, "prompts"))
	if err != nil {
		return nil, err
	}
	promptStore = store
	return store, nil
}

// ensureAskService wires retrieval and generation for kind.
func ensureAskService(ctx context.Context, kind domain.Kind) error {
	if askService != nil {
		return nil
	}
	s, err := loadValidSettings(domain.PurposeAsk)
	if err != nil {
		return err
	}
	if err := ensureSearchService(ctx, kind); err != nil {
		return err
	}

	llm, err := ai.CreateLLMService(&s.LLM)
	if err != nil {
		return err
	}
	onClose(llm.Close)

	prompts, err := ensurePromptStore(s)
	if err != nil {
		return err
	}

	askService = services.NewAskService(searchService, llm, prompts, driven.CompleteOptions{
		MaxTokens: s.LLM.MaxTokens,
	})
	return nil
}

// ensureIngestService wires the source, chunker and index for kind.
func ensureIngestService(ctx context.Context, kind domain.Kind) error {
	if ingestService != nil {
		return nil
	}
	s, err := loadValidSettings(domain.PurposeIngest)
	if err != nil {
		return err
	}

	source, err := airtable.NewClient(airtable.Config{
		APIKey: s.Source.APIKey,
		BaseID: s.Source.BaseID,
	})
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(ctx, s)
	if err != nil {
		return err
	}
	indexes, err := openIndexes(ctx, s, kind)
	if err != nil {
		return err
	}

	tables := map[domain.Kind]string{
		domain.KindProspects:  s.TableFor(domain.KindProspects),
		domain.KindCandidates: s.TableFor(domain.KindCandidates),
	}
	ingestService = services.NewIngestService(source, embedder, chunker.New(), indexes, tables)
	return nil
}

// ensureIndexService wires index administration.
func ensureIndexService() error {
	if indexService != nil {
		return nil
	}
	s, err := loadValidSettings(domain.PurposeAdmin)
	if err != nil {
		return err
	}

	store, err := vector.NewStore(s)
	if err != nil {
		return err
	}
	onClose(store.Close)

	indexService = services.NewIndexService(store)
	return nil
}

// parseKindFlag reads the --domain flag.
func parseKindFlag(value string) (domain.Kind, error) {
	if value == "" {
		return domain.KindProspects, nil
	}
	return domain.ParseKind(value)
}
