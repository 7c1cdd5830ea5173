package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// countCmd prints the number of games in the database.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the total number of games in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		n, err := st.CountGames(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Total games in database: %d\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
