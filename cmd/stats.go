package cmd

import (
	"github.com/spf13/cobra"

	"github.com/protondex/protondex/internal/ui"
)

// statsCmd prints database-wide statistics.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		stats, err := st.GameStats(cmd.Context())
		if err != nil {
			return err
		}
		ui.RenderStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
