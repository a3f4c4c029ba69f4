package cmd

import (
	"github.com/naka-gawa/octotrends/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browses the dashboard in the terminal",
	Long: `Loads the snapshot and shows the repository table in the terminal.

Keys: ←/→ page, home/end first/last page, s next sort column, r reverse,
g repos/languages, l cycle language, enter show language, 1-4 size buckets,
+/- page size, q quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDashboard()
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return tui.Run(ctx, d)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
