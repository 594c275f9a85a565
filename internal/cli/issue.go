package cli

import (
	"time"

	"tebeosfera-scraper/internal/models"

	"github.com/spf13/cobra"
)

func newIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue [issue-key | url]",
		Short: "Extract the full record of one issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newScraper()
			if err != nil {
				return err
			}

			start := time.Now()
			record, err := s.Issue(cmd.Context(), models.ParseRef(args[0], models.KindIssue))
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), models.IssueResponse{
				Issue:    record,
				Metadata: metadata(record.WebURL, start),
			})
		},
	}
}
