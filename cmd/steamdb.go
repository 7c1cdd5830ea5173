package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/protondex/protondex/internal/steam"
	"github.com/protondex/protondex/internal/store"
)

var steamReset bool

// steamdbCmd populates the Steam app catalog reference table.
var steamdbCmd = &cobra.Command{
	Use:   "steamdb",
	Short: "Fetch the Steam app catalog into the reference table",
	Long: `Steamdb downloads the full Steam app list and bulk-loads it into the
apps table, replacing rows by app id. The fetched list is analyzed for
duplicates first, since insert-or-replace collapses them silently.

With --reset the table is dropped and recreated before loading.`,
	Args: cobra.NoArgs,
	RunE: runSteamDB,
}

func init() {
	rootCmd.AddCommand(steamdbCmd)
	steamdbCmd.Flags().BoolVar(&steamReset, "reset", false, "drop and recreate the apps table before loading")
}

func runSteamDB(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	existing, err := st.CountApps(ctx)
	if err != nil {
		return err
	}
	if steamReset && existing > 0 {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Apps table holds %d rows, drop and recreate", existing),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Fprintln(out, "Reset cancelled.")
				return nil
			}
			return err
		}
		if err := st.ResetApps(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Apps table reset.")
	}

	fmt.Fprintln(out, "Fetching Steam app list…")
	apps, err := steam.NewClient(cfg.Steam.AppListURL).FetchApps(ctx)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		return fmt.Errorf("steam API returned no apps")
	}

	rep := steam.AnalyzeDuplicates(apps)
	fmt.Fprintf(out, "Fetched %d apps (%d unique ids, %d empty names)\n",
		rep.TotalApps, rep.UniqueIDs, rep.EmptyNames)
	if rep.DuplicatedIDs > 0 {
		fmt.Fprintf(out, "Duplicated ids: %d (%d exact duplicates, %d with conflicting names)\n",
			rep.DuplicatedIDs, rep.ExactDuplicates, len(rep.ConflictingIDs))
	}

	rows := make([]store.App, len(apps))
	for i, a := range apps {
		rows[i] = store.App{AppID: a.AppID, Name: a.Name}
	}
	n, err := st.ReplaceApps(ctx, rows)
	if err != nil {
		return err
	}

	total, err := st.CountApps(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d rows; apps table now holds %d.\n", n, total)
	return nil
}
