package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var clearForce bool

// stdinIsTerminal reports whether confirmation prompts can be answered.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Manage vector indexes",
}

var indexesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vector indexes",
	Args:  cobra.NoArgs,
	RunE:  runIndexesList,
}

var indexesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every vector index",
	Long: `Deletes every index visible to the configured vector store credential.
Prospect and candidate indexes are recreated empty on the next ingest.

Asks for confirmation unless --force is given. Without a terminal to
confirm on, --force is required.`,
	Args: cobra.NoArgs,
	RunE: runIndexesClear,
}

func init() {
	indexesClearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "delete without confirmation")
	indexesCmd.AddCommand(indexesListCmd)
	indexesCmd.AddCommand(indexesClearCmd)
	rootCmd.AddCommand(indexesCmd)
}

func runIndexesList(cmd *cobra.Command, _ []string) error {
	if err := ensureIndexService(); err != nil {
		return err
	}

	indexes, err := indexService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	if len(indexes) == 0 {
		cmd.Println("No indexes found.")
		return nil
	}

	rows := make([][]string, 0, len(indexes))
	for _, idx := range indexes {
		ready := "no"
		if idx.Ready {
			ready = "yes"
		}
		rows = append(rows, []string{idx.Name, strconv.Itoa(idx.Dimension), idx.Metric, ready})
	}
	cmd.Println(renderTable([]string{"Name", "Dimension", "Metric", "Ready"}, rows))
	return nil
}

func runIndexesClear(cmd *cobra.Command, _ []string) error {
	if err := ensureIndexService(); err != nil {
		return err
	}

	indexes, err := indexService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	if len(indexes) == 0 {
		cmd.Println("No indexes to delete.")
		return nil
	}

	names := make([]string, len(indexes))
	for i, idx := range indexes {
		names[i] = idx.Name
	}

	cmd.Printf("Indexes to delete: %s\n", strings.Join(names, ", "))

	if !clearForce {
		if !stdinIsTerminal() {
			return errors.New("refusing to delete indexes without a terminal; use --force")
		}
		cmd.Print("Delete these indexes? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		if !confirmed(readLine(reader)) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	deleted, err := indexService.Clear(cmd.Context(), names)
	for _, name := range deleted {
		cmd.Printf("  %s deleted %s\n", styles.Success.Render("✓"), name)
	}
	if err != nil {
		return fmt.Errorf("clear indexes: %w", err)
	}
	return nil
}

func confirmed(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
