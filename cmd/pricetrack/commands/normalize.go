package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/tracking"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize URL...",
		Short: "Prints the canonical form of marketplace product URLs.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Input", "Marketplace", "ID", "Canonical URL"})

			failed := 0
			for _, raw := range args {
				ref, err := marketplace.Normalize(raw)
				if err != nil {
					failed++
					t.AppendRow(table.Row{raw, "-", "-", tracking.UserMessage(err)})
					continue
				}
				t.AppendRow(table.Row{raw, ref.Marketplace.String(), ref.ExternalID, ref.CanonicalURL})
			}
			t.Render()

			if failed == len(args) {
				return errNoneNormalized
			}
			return nil
		},
	}
}
