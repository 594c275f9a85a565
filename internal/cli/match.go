package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tebeosfera-scraper/internal/models"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	var series bool

	cmd := &cobra.Command{
		Use:   "match [cover-file] [query | series-key]",
		Short: "Pick the candidate whose cover matches a local image",
		Long: `Match downloads the cover of every candidate found for the query and ranks
them against the local cover. With --series the second argument is a series key
and its issues are the candidates.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read cover: %w", err)
			}

			s, err := newScraper()
			if err != nil {
				return err
			}

			reference, err := s.DecodeImage(data)
			if err != nil {
				return fmt.Errorf("local cover: %w", err)
			}

			start := time.Now()
			query := strings.Join(args[1:], " ")

			var candidates []models.CandidateStub
			if series {
				candidates, err = s.SeriesIssues(cmd.Context(), query)
			} else {
				candidates, err = s.Search(cmd.Context(), query)
			}
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), models.MatchResponse{
				Match:      s.MatchCover(cmd.Context(), reference, candidates),
				Candidates: candidates,
				Metadata:   metadata(query, start),
			})
		},
	}

	cmd.Flags().BoolVar(&series, "series", false, "treat the query as a series key")

	return cmd
}
