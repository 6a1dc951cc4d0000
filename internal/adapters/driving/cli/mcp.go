package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbot/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragbot/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ragbot/internal/core/domain"
	"github.com/custodia-labs/ragbot/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes two tools, search and ask, over the domain given in
each call (prospects by default).

By default, the server communicates over stdio using JSON-RPC. Use --port
to start an HTTP server instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  ragbot mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ragbot mcp serve --port 8080

  # Reload persona prompts when their files change
  ragbot mcp serve --watch-prompts`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("watch-prompts", false, "reload persona prompts when their files change")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch-prompts")
	if err != nil {
		return fmt.Errorf("getting watch-prompts flag: %w", err)
	}

	ctx := cmd.Context()

	// Both domains are served, so both indexes are opened up front.
	if err := ensureServingServices(ctx); err != nil {
		return err
	}
	optionalIndexService()

	if watch {
		if err := startPromptWatcher(cmd); err != nil {
			return err
		}
	}

	ports := &mcp.Ports{
		Search:  searchService,
		Ask:     askService,
		Indexes: indexService,
	}

	server, err := mcp.NewServer(ports, version)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// ensureServingServices wires search and ask over every domain.
func ensureServingServices(ctx context.Context) error {
	if searchService == nil {
		s, err := loadValidSettings(domain.PurposeSearch)
		if err != nil {
			return err
		}
		embedder, err := newEmbedder(ctx, s)
		if err != nil {
			return err
		}
		indexes, err := openIndexes(ctx, s, domain.KindProspects, domain.KindCandidates)
		if err != nil {
			return err
		}
		searchService = newSearchService(embedder, indexes, s)
	}
	// The search service is already set, so only generation is wired here.
	return ensureAskService(ctx, domain.KindProspects)
}

// startPromptWatcher reloads personas in the background until the command ends.
// optionalIndexService wires index listing when the vector store is reachable.
// Without it the indexes resource lists nothing.
func optionalIndexService() {
	if err := ensureIndexService(); err != nil {
		logger.Debug("Indexes resource disabled: %v", err)
	}
}

func startPromptWatcher(cmd *cobra.Command) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := ensurePromptStore(s)
	if err != nil {
		return err
	}
	watcher, err := file.NewPromptWatcher(store)
	if err != nil {
		return err
	}
	onClose(watcher.Close)

	go func() {
		if err := watcher.Run(cmd.Context()); err != nil {
			logger.Warn("Prompt watcher stopped: %v", err)
		}
	}()
	logger.Info("Watching %s for persona changes", store.Dir())
	return nil
}
