package cmd

import (
	"github.com/spf13/cobra"

	"github.com/protondex/protondex/internal/ui"
)

// searchCmd performs a free-text title search.
var searchCmd = &cobra.Command{
	Use:   "search PATTERN",
	Short: "Search games by title",
	Long: `Search matches the pattern anywhere in the title, case-insensitive.

Example:
  protondex search "half-life"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		games, err := st.SearchByTitle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ui.RenderGames(cmd.OutOrStdout(), games)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
