package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/protondex/protondex/internal/ingest"
	"github.com/protondex/protondex/internal/ui"
)

var ingestWatch bool

// ingestCmd drives the ingestion pipeline over the reports directory.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest report archives and loose JSON files into the database",
	Long: `Ingest scans the reports directory for *.tar.gz archives and loose
*.json files, merges every report into the per-game aggregates and commits
one transaction per file. Re-running over the same input accumulates report
counts; it is not an idempotent replay.

Examples:
  protondex ingest
  protondex ingest --reports-dir ./dumps --delete-json
  protondex ingest --watch`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("reports-dir", "", "directory containing report archives (default reports)")
	ingestCmd.Flags().Bool("delete-json", false, "remove loose JSON files after a successful commit")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and re-ingest when new files arrive")

	_ = viper.BindPFlag("ingest.reportsDir", ingestCmd.Flags().Lookup("reports-dir"))
	_ = viper.BindPFlag("ingest.deleteJson", ingestCmd.Flags().Lookup("delete-json"))
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runner := ingest.NewRunner(nil, st, log,
		ui.NewRunView(cmd.OutOrStdout(), ui.IsInteractive()),
		ingest.Options{
			ReportsDir: cfg.Ingest.ReportsDir,
			DeleteJSON: cfg.Ingest.DeleteJSON,
		})

	if _, err := runner.Run(cmd.Context()); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if !ingestWatch {
		return nil
	}
	return watchAndIngest(cmd, runner, cfg.Ingest.ReportsDir, log)
}

// watchAndIngest re-runs the pipeline whenever report files land in the
// directory. Each pass is still strictly sequential; the watcher only decides
// when the next pass starts.
func watchAndIngest(cmd *cobra.Command, runner *ingest.Runner, dir string, log zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("watching for new report files")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Debounce bursts of events: an archive being copied in produces many
	// writes before it is complete.
	var pending *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !strings.HasSuffix(ev.Name, ".tar.gz") && !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(2*time.Second, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-trigger:
			if _, err := runner.Run(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("ingestion pass failed")
			}
		case <-sigs:
			log.Info().Msg("stopping watch mode")
			return nil
		case <-cmd.Context().Done():
			return nil
		}
	}
}
