package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragbot/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
	Long: `Settings come from built-in defaults, then ~/.ragbot/config.toml, then
environment variables (including a .env file in the working directory).`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers answer",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Write a value to the config file",
	Long: `Writes one key to config.toml. Keys use dots for tables, for example:

  ragbot config set airtable.base_id appXXXXXXXXXXXXXX
  ragbot config set embedding.dimensions 1024`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	rows := [][]string{
		{"airtable.api_key", maskAPIKey(s.Source.APIKey)},
		{"airtable.base_id", s.Source.BaseID},
		{"airtable.table", s.Source.ProspectTable},
		{"airtable.candidate_table", s.Source.CandidateTable},
		{"embedding.provider", s.Embedding.Provider.Description()},
		{"embedding.model", s.Embedding.Model},
		{"embedding.dimensions", strconv.Itoa(s.Embedding.Dimensions)},
	}
	switch {
	case s.Embedding.Provider == domain.AIProviderBedrock:
		rows = append(rows, []string{"embedding.region", s.Embedding.Region})
	case s.Embedding.Provider.IsLocal():
		rows = append(rows, []string{"embedding.base_url", s.Embedding.BaseURL})
	case s.Embedding.Provider.RequiresAPIKey():
		rows = append(rows, []string{"embedding.api_key", maskAPIKey(s.Embedding.APIKey)})
	}

	rows = append(rows,
		[]string{"llm.provider", s.LLM.Provider.Description()},
		[]string{"llm.model", s.LLM.Model},
		[]string{"llm.max_tokens", strconv.Itoa(s.LLM.MaxTokens)},
	)
	if s.LLM.Provider.IsLocal() {
		rows = append(rows, []string{"llm.base_url", s.LLM.BaseURL})
	} else {
		rows = append(rows, []string{"llm.api_key", maskAPIKey(s.LLM.APIKey)})
	}

	rows = append(rows, []string{"vector.provider", s.Vector.Provider.Description()})
	if s.Vector.Provider == domain.VectorProviderPinecone {
		rows = append(rows,
			[]string{"pinecone.api_key", maskAPIKey(s.Vector.APIKey)},
			[]string{"pinecone.region", s.Vector.Region},
		)
	}
	rows = append(rows,
		[]string{"pinecone.index", s.Vector.ProspectIndex},
		[]string{"pinecone.candidate_index", s.Vector.CandidateIndex},
		[]string{"data_dir", s.DataDir},
	)

	cmd.Println(styles.Title.Render("Settings"))
	cmd.Println(renderTable([]string{"Key", "Value"}, rows))
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	validator := ai.NewConfigValidator()
	failed := 0

	report := func(name string, err error) {
		if err != nil {
			failed++
			cmd.Printf("  %s %s: %v\n", styles.Error.Render("✗"), name, err)
			return
		}
		cmd.Printf("  %s %s\n", styles.Success.Render("✓"), name)
	}

	report("embedding ("+s.Embedding.Provider.Description()+")", validator.ValidateEmbedding(ctx, &s.Embedding))
	report("llm ("+s.LLM.Provider.Description()+")", validator.ValidateLLM(ctx, &s.LLM))

	indexErr := ensureIndexService()
	if indexErr == nil {
		_, indexErr = indexService.List(ctx)
	}
	report("vector store ("+s.Vector.Provider.Description()+")", indexErr)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := file.NewConfigStore(os.Getenv(domain.EnvDataDir))
	if err != nil {
		return err
	}

	key, raw := args[0], args[1]
	var value any = raw
	if n, err := strconv.Atoi(raw); err == nil {
		value = n
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := store.Set(key, value); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	cmd.Printf("Set %s in %s\n", key, store.Path())
	return nil
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
