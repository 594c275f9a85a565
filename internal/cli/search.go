package cli

import (
	"fmt"
	"strings"
	"time"

	"tebeosfera-scraper/internal/models"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var group bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search series, sagas and issues",
		Long: `Search runs a free-text query and prints the typed candidates of every
result section. With --group the candidates are folded into one entry per series.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScraper()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			start := time.Now()

			if group {
				groups, err := s.SearchSeries(cmd.Context(), query)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
				return printJSON(cmd.OutOrStdout(), models.SeriesResponse{
					Results:  groups,
					Metadata: metadata(s.SearchURL(query), start),
				})
			}

			stubs, err := s.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), models.SearchResponse{
				Results:  stubs,
				Metadata: metadata(s.SearchURL(query), start),
			})
		},
	}

	cmd.Flags().BoolVar(&group, "group", false, "group candidates by series")

	return cmd
}
