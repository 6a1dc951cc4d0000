package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// queryFlags are shared by search and ask.
type queryFlags struct {
	domain  string
	limit   int
	filters []string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.domain, "domain", "prospects", "domain to query: prospects or candidates")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", domain.DefaultTopK, "maximum number of sources")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "metadata filter key=value (repeatable, Tous/All means no filter)")
}

// request builds the search request for query.
func (f *queryFlags) request(query string) (domain.SearchRequest, error) {
	kind, err := parseKindFlag(f.domain)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	filters, err := parseFilters(f.filters)
	if err != nil {
		return domain.SearchRequest{}, err
	}
	return domain.SearchRequest{
		Query:   query,
		Kind:    kind,
		TopK:    f.limit,
		Filters: filters,
	}, nil
}

// parseFilters turns key=value pairs into a filter.
func parseFilters(pairs []string) (domain.Filter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	f := make(domain.Filter, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: filter %q (want key=value)", domain.ErrInvalidInput, pair)
		}
		f[key] = strings.TrimSpace(value)
	}
	return f, nil
}

var (
	searchFlags queryFlags
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the records closest to a query",
	Long: `Embeds the query and retrieves the closest prospects or candidates.
No model is called: the command prints the tagged sources that ask would
give the model.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchFlags.register(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	req, err := searchFlags.request(args[0])
	if err != nil {
		return err
	}
	if err := ensureSearchService(cmd.Context(), req.Kind); err != nil {
		return err
	}

	res, err := searchService.Search(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, res)
	}
	outputRows(cmd, res)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, res *domain.SearchResult) error {
	out := struct {
		RequestID string              `json:"request_id"`
		Domain    domain.Kind         `json:"domain"`
		Rows      []domain.DisplayRow `json:"rows"`
		Sources   []domain.SourceLink `json:"sources"`
	}{
		RequestID: res.RequestID,
		Domain:    res.Kind,
		Rows:      res.Rows,
		Sources:   res.Sources,
	}
	if out.Rows == nil {
		out.Rows = []domain.DisplayRow{}
	}
	if out.Sources == nil {
		out.Sources = []domain.SourceLink{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// outputRows prints the sources and the display table.
func outputRows(cmd *cobra.Command, res *domain.SearchResult) {
	if res.Empty() {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(styles.Title.Render("Sources"))
	for _, src := range res.Sources {
		cmd.Printf("  %s %s\n", styles.Tag.Render("["+src.Tag+"]"), src.Title)
		if src.URL != "" {
			cmd.Printf("        %s\n", styles.Muted.Render(src.URL))
		}
	}
	cmd.Println()

	if len(res.Rows) == 0 {
		return
	}
	rows := make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		rows = append(rows, r.Values())
	}
	cmd.Println(renderTable(res.Rows[0].Headers(), rows))
}
