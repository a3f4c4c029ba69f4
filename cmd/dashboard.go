package cmd

import (
	"fmt"

	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/massager"
	"github.com/naka-gawa/octotrends/internal/snapshot"
)

// loadDashboard reads the configured snapshot and builds the table over it.
func loadDashboard() (*dashboard.Dashboard, error) {
	store := snapshot.NewStore(cfg.Snapshot.Dir)
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot from %s: %w (run `octotrends snapshot` first)", store.Dir(), err)
	}

	windows := make([]domain.Window, 0, len(cfg.Dashboard.Windows))
	for _, w := range cfg.Dashboard.Windows {
		windows = append(windows, domain.Window(w))
	}
	opts := dashboard.Options{
		Windows:     windows,
		GrowthSort:  dashboard.GrowthSort(cfg.Dashboard.GrowthSort),
		StarsFilter: dashboard.StarsFilter(cfg.Dashboard.StarsFilter),
		PageSize:    cfg.Dashboard.PageSize,
		Colors:      snap.Colors,
		Emojizer:    format.NewEmojizer(nil),
	}
	if cfg.Snapshot.ExcludeCJK {
		opts.Exclude = massager.LatinAudience()
	}

	d, err := dashboard.New(snap.Records, snap.LastUpdated, opts)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int("records", len(snap.Records)).
		Int("repos", len(d.Repos())).
		Str("last_updated", snap.LastUpdated).
		Msg("snapshot loaded")
	return d, nil
}
