package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/protondex/protondex/internal/store"
	"github.com/protondex/protondex/internal/ui"
)

// appCmd looks up one game by its Steam app id.
var appCmd = &cobra.Command{
	Use:   "app APP_ID",
	Short: "Show one game by Steam app id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid app id %q", args[0])
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		g, err := st.GetByAppID(cmd.Context(), appID)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No game with app id %d.\n", appID)
			return nil
		}
		if err != nil {
			return err
		}
		ui.RenderGameDetail(cmd.OutOrStdout(), g)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(appCmd)
}
