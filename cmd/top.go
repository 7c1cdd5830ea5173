package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/protondex/protondex/internal/store"
	"github.com/protondex/protondex/internal/ui"
)

var (
	topBy    string
	topLimit int
)

// topCmd ranks games by one of the aggregate columns.
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Rank games by reports, first-seen or last-seen",
	Long: `Top lists games ranked by the chosen column, newest or largest first.

Examples:
  protondex top                      # most reported
  protondex top --by first-seen      # most recently added
  protondex top --by last-seen -n 25 # most recently updated`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		var fetch func(context.Context, int) ([]store.Game, error)
		switch topBy {
		case "reports":
			fetch = st.TopByReports
		case "first-seen":
			fetch = st.TopByFirstSeen
		case "last-seen":
			fetch = st.TopByLastSeen
		default:
			return fmt.Errorf("unknown ranking %q (want reports, first-seen or last-seen)", topBy)
		}

		games, err := fetch(cmd.Context(), topLimit)
		if err != nil {
			return err
		}
		ui.RenderGames(cmd.OutOrStdout(), games)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().StringVar(&topBy, "by", "reports", "ranking column: reports, first-seen or last-seen")
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 10, "number of games to show")
}
