package cli

import (
	"fmt"
	"time"

	"tebeosfera-scraper/internal/models"

	"github.com/spf13/cobra"
)

func newIssuesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issues [series-key]",
		Short: "List the issues of a series",
		Long: `Issues prints the issue candidates of a collection. When the collection
page carries no issue rows, the alternative listing endpoints are tried in turn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScraper()
			if err != nil {
				return err
			}

			start := time.Now()
			issues, err := s.SeriesIssues(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("listing failed: %w", err)
			}

			return printJSON(cmd.OutOrStdout(), models.SearchResponse{
				Results:  issues,
				Metadata: metadata(args[0], start),
			})
		},
	}
}
