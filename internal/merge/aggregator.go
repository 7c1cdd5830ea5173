// Package merge folds report records into per-game aggregates for one
// processing pass, reconciling with persisted history.
package merge

import (
	"context"
	"fmt"
	"sort"

	"github.com/protondex/protondex/internal/report"
	"github.com/protondex/protondex/internal/store"
)

// Seeder loads previously persisted aggregates so a pass merges with history
// instead of overwriting it. *store.Store satisfies it.
type Seeder interface {
	ReadExisting(ctx context.Context, appIDs []int64) (map[int64]store.Game, error)
}

// Aggregator accumulates the games touched by one file's records. It is
// scoped to a single pass: discard it after the batch is committed and build
// a fresh one for the next file, so memory stays bounded to one file's worth
// of distinct games.
type Aggregator struct {
	seed  Seeder
	games map[int64]*store.Game
}

// New returns an empty aggregator seeded from seed on first sight of each
// app id.
func New(seed Seeder) *Aggregator {
	return &Aggregator{
		seed:  seed,
		games: make(map[int64]*store.Game),
	}
}

// Observe folds one record into its game's aggregate:
//
//   - first_seen becomes the minimum observation timestamp ever recorded
//   - last_seen becomes the maximum
//   - a non-empty title overwrites the stored one
//   - report_count increments by one
//
// Records apply in call order, which for archives is the container's physical
// entry order: when two records share a timestamp, the later call's title
// wins. The record's app id is trusted; the parser already rejected entries
// without one.
func (a *Aggregator) Observe(ctx context.Context, rec report.Record) error {
	g, ok := a.games[rec.AppID]
	if !ok {
		existing, err := a.seed.ReadExisting(ctx, []int64{rec.AppID})
		if err != nil {
			return fmt.Errorf("seed aggregate for app %d: %w", rec.AppID, err)
		}
		if prior, found := existing[rec.AppID]; found {
			g = &prior
		} else {
			g = &store.Game{AppID: rec.AppID}
		}
		a.games[rec.AppID] = g
	}

	if g.ReportCount == 0 {
		// First observation ever: it sets both bounds.
		g.FirstSeen = rec.ObservedAt
		g.LastSeen = rec.ObservedAt
	} else {
		if rec.ObservedAt.Before(g.FirstSeen) {
			g.FirstSeen = rec.ObservedAt
		}
		if rec.ObservedAt.After(g.LastSeen) {
			g.LastSeen = rec.ObservedAt
		}
	}
	if rec.Title != "" {
		g.Title = rec.Title
	}
	g.ReportCount++
	return nil
}

// Games returns the pass's touched aggregates, sorted by app id so commits
// are deterministic.
func (a *Aggregator) Games() []store.Game {
	out := make([]store.Game, 0, len(a.games))
	for _, g := range a.games {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppID < out[j].AppID })
	return out
}

// Len reports how many distinct games this pass has touched.
func (a *Aggregator) Len() int { return len(a.games) }
