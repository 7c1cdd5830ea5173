package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/protondex/protondex/internal/archive"
	"github.com/protondex/protondex/internal/merge"
	"github.com/protondex/protondex/internal/report"
	"github.com/protondex/protondex/internal/store"
)

// Options configures one Runner.
type Options struct {
	// ReportsDir is scanned for *.tar.gz archives and loose *.json files.
	ReportsDir string
	// DeleteJSON removes a loose JSON file once, and only once, its batch
	// has been durably committed. Archives are never deleted.
	DeleteJSON bool
}

// Store is the slice of the store adapter the pipeline needs. *store.Store
// satisfies it.
type Store interface {
	merge.Seeder
	UpsertGames(ctx context.Context, games []store.Game) (store.UpsertCounts, error)
	CountGames(ctx context.Context) (int64, error)
	SizeMB() float64
}

// Runner drives the ingestion pipeline: discover input files, stream and
// parse their entries, fold records into per-game aggregates, and commit one
// transaction per file. Processing is strictly sequential; interrupting the
// process is safe up to the last committed file.
type Runner struct {
	fs    afero.Fs
	store Store
	log   zerolog.Logger
	obs   Observer
	opts  Options
	now   func() time.Time
}

// NewRunner builds a Runner. fs may be nil for the OS filesystem, obs may be
// nil to discard events.
func NewRunner(fs afero.Fs, st Store, log zerolog.Logger, obs Observer, opts Options) *Runner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if obs == nil {
		obs = NopObserver{}
	}
	return &Runner{
		fs:    fs,
		store: st,
		log:   log,
		obs:   obs,
		opts:  opts,
		now:   time.Now,
	}
}

// Run processes every input file in the reports directory. Per-file and
// per-entry failures are counted, logged and skipped; Run itself fails only
// on environment errors (unreadable reports directory, unusable store).
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := r.now()
	runID := uuid.NewString()[:8]
	log := r.log.With().Str("run_id", runID).Logger()

	archives, loose, err := discoverInputs(r.fs, r.opts.ReportsDir)
	if err != nil {
		return nil, err
	}

	sum := Summary{RunID: runID, Archives: len(archives), LooseFiles: len(loose)}
	r.obs.RunStarted(runID, len(archives), len(loose))
	log.Info().Int("archives", len(archives)).Int("json_files", len(loose)).
		Str("dir", r.opts.ReportsDir).Msg("ingestion run started")

	for _, path := range archives {
		r.obs.FileStarted(path, KindArchive)
		stats, err := r.processArchive(ctx, log, path)
		r.accumulate(&sum, path, stats, err)
	}
	for _, path := range loose {
		r.obs.FileStarted(path, KindJSON)
		stats, err := r.processLooseFile(ctx, log, path)
		r.accumulate(&sum, path, stats, err)
	}

	if n, err := r.store.CountGames(ctx); err == nil {
		sum.GamesInDB = n
	}
	sum.DBSizeMB = r.store.SizeMB()
	sum.Elapsed = r.now().Sub(start)

	r.obs.RunFinished(sum)
	log.Info().
		Int("entries", sum.Entries).Int("failed", sum.Failed).
		Int("inserted", sum.Inserted).Int("updated", sum.Updated).
		Int("files_skipped", sum.FilesSkipped).
		Int64("games_in_db", sum.GamesInDB).
		Dur("elapsed", sum.Elapsed).
		Msg("ingestion run finished")
	return &sum, nil
}

func (r *Runner) accumulate(sum *Summary, path string, stats FileStats, err error) {
	if err != nil {
		sum.FilesSkipped++
		r.obs.FileSkipped(path, err)
		return
	}
	sum.Entries += stats.Entries
	sum.Failed += stats.Failed
	sum.Inserted += stats.Inserted
	sum.Updated += stats.Updated
	r.obs.FileCommitted(path, stats)
}

// processArchive streams one archive's entries through parse and merge, then
// commits the touched aggregates in a single transaction. Per-entry failures
// are counted but never abort the file; a mid-stream container corruption
// stops reading but what was already folded is still committed.
func (r *Runner) processArchive(ctx context.Context, log zerolog.Logger, path string) (FileStats, error) {
	start := r.now()

	rd, err := archive.Open(r.fs, path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("archive unreadable, skipping")
		return FileStats{}, err
	}
	defer func() { _ = rd.Close() }()

	fallback := fallbackTimestamp(r.fs, path, r.now())
	agg := merge.New(r.store)
	var stats FileStats

	for {
		entry, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Container broke mid-stream. Everything folded so far is
			// still durable once committed below.
			log.Warn().Err(err).Str("file", path).Msg("archive corrupt mid-stream, committing partial file")
			stats.Failed++
			break
		}
		if entry.Err != nil {
			log.Warn().Err(entry.Err).Str("file", path).Msg("entry unreadable, skipping")
			stats.Failed++
			continue
		}
		if err := r.foldEntry(ctx, log, agg, entry.Name, entry.Data, fallback, &stats); err != nil {
			return FileStats{}, err
		}
		r.obs.FileProgress(path, stats.Entries+stats.Failed, -1)
	}

	return r.commit(ctx, log, path, agg, stats, start)
}

// processLooseFile parses one standalone JSON file and commits its batch.
// When delete-after-processing is enabled the file is removed only after the
// commit succeeded; a failed commit leaves it in place for the next run.
func (r *Runner) processLooseFile(ctx context.Context, log zerolog.Logger, path string) (FileStats, error) {
	start := r.now()

	raw, err := afero.ReadFile(r.fs, path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("file unreadable, skipping")
		return FileStats{}, fmt.Errorf("read file: %w", err)
	}

	fallback := fallbackTimestamp(r.fs, path, r.now())
	agg := merge.New(r.store)
	var stats FileStats
	if err := r.foldEntry(ctx, log, agg, path, raw, fallback, &stats); err != nil {
		return FileStats{}, err
	}
	r.obs.FileProgress(path, stats.Entries+stats.Failed, stats.Entries+stats.Failed)

	stats, err = r.commit(ctx, log, path, agg, stats, start)
	if err != nil {
		return FileStats{}, err
	}

	if r.opts.DeleteJSON {
		// Ordering is load-bearing: the commit above is durable, so losing
		// the file now cannot lose data.
		if err := r.fs.Remove(path); err != nil {
			log.Error().Err(err).Str("file", path).Msg("could not remove processed file")
		} else {
			stats.Deleted = true
			log.Info().Str("file", path).Msg("removed processed file")
		}
	}
	return stats, nil
}

// foldEntry parses one entry's bytes and folds the resulting records.
func (r *Runner) foldEntry(ctx context.Context, log zerolog.Logger, agg *merge.Aggregator, name string, raw []byte, fallback time.Time, stats *FileStats) error {
	records, failures := report.Parse(raw, fallback)
	for _, f := range failures {
		log.Debug().Str("entry", name).Str("kind", string(f.Kind)).Str("detail", f.Detail).Msg("entry rejected")
	}
	stats.Failed += len(failures)
	for _, rec := range records {
		if err := agg.Observe(ctx, rec); err != nil {
			// Seeding reads hit the store; failure here means the file
			// cannot merge correctly against history.
			return err
		}
		stats.Entries++
	}
	return nil
}

// commit persists the pass's aggregates in one transaction. A persistence
// failure skips the file; since it was neither deleted nor marked, the next
// run retries it.
func (r *Runner) commit(ctx context.Context, log zerolog.Logger, path string, agg *merge.Aggregator, stats FileStats, start time.Time) (FileStats, error) {
	counts, err := r.store.UpsertGames(ctx, agg.Games())
	if err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			log.Error().Err(err).Str("file", path).Msg("commit failed, file will be retried next run")
		}
		return FileStats{}, err
	}
	stats.Inserted = counts.Inserted
	stats.Updated = counts.Updated
	stats.Elapsed = r.now().Sub(start)

	log.Info().Str("file", path).
		Int("entries", stats.Entries).Int("failed", stats.Failed).
		Int("inserted", stats.Inserted).Int("updated", stats.Updated).
		Dur("elapsed", stats.Elapsed).
		Msg("file committed")
	return stats, nil
}
