// Package dashboard assembles the repository table: it massages the snapshot,
// declares the columns and derives views from table state.
package dashboard

import (
	"fmt"
	"slices"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/massager"
	"github.com/naka-gawa/octotrends/internal/table"
)

// Options configures a Dashboard.
type Options struct {
	Windows     []domain.Window
	GrowthSort  GrowthSort
	StarsFilter StarsFilter
	PageSize    int
	// Colors maps a language to its hex swatch colour.
	Colors   map[string]string
	Emojizer *format.Emojizer
	// Exclude drops raw records before they reach the table; nil keeps all.
	Exclude massager.Exclude
}

// View is a derived view of the repository table.
type View = table.View[domain.Repo]

// Dashboard holds the loaded records and column model. It is read-only after
// New and safe for concurrent use.
type Dashboard struct {
	opts        Options
	repos       []domain.Repo
	columns     []*table.Column[domain.Repo]
	cells       cells
	lastUpdated string
	summary     Summary
}

// New builds a dashboard over raw snapshot records.
func New(records []domain.RawRepoRecord, lastUpdated string, opts Options) (*Dashboard, error) {
	if len(opts.Windows) == 0 {
		opts.Windows = domain.DefaultWindows
	}
	if opts.GrowthSort == "" {
		opts.GrowthSort = GrowthSortAdded
	}
	if opts.StarsFilter == "" {
		opts.StarsFilter = StarsBuckets
	}
	if opts.PageSize <= 0 {
		opts.PageSize = table.DefaultPageSize
	}
	if opts.Emojizer == nil {
		opts.Emojizer = format.NewEmojizer(nil)
	}

	var mopts []massager.Option
	if opts.Exclude != nil {
		mopts = append(mopts, massager.WithExclude(opts.Exclude))
	}
	repos := massager.New(opts.Windows, mopts...).Massage(records)

	c := cells{emoji: opts.Emojizer, colors: opts.Colors}
	d := &Dashboard{
		opts:        opts,
		repos:       repos,
		columns:     buildColumns(opts, c),
		cells:       c,
		lastUpdated: lastUpdated,
	}
	summary, err := Summarize(repos, d.leadWindow())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize repos: %w", err)
	}
	d.summary = summary
	return d, nil
}

// leadWindow is the window sorted by default: 30 days when shown, the first
// window otherwise.
func (d *Dashboard) leadWindow() domain.Window {
	if slices.Contains(d.opts.Windows, 30) {
		return 30
	}
	return d.opts.Windows[0]
}

func (d *Dashboard) Columns() []*table.Column[domain.Repo] { return d.columns }
func (d *Dashboard) Repos() []domain.Repo                  { return d.repos }
func (d *Dashboard) Windows() []domain.Window              { return d.opts.Windows }
func (d *Dashboard) LastUpdated() string                   { return d.lastUpdated }
func (d *Dashboard) Summary() Summary                      { return d.summary }
func (d *Dashboard) StarsFilter() StarsFilter              { return d.opts.StarsFilter }

// Color returns the swatch colour of a language.
func (d *Dashboard) Color(lang string) string { return d.cells.Color(lang) }

// DefaultState is the state of a fresh page: the lead growth window sorted
// descending, every size bucket active.
func (d *Dashboard) DefaultState() table.State {
	st := table.State{
		Filters:  table.Filters{},
		SortBy:   []table.SortRule{{ID: d.leadWindow().ColumnID(), Desc: true}},
		PageSize: d.opts.PageSize,
	}
	if d.opts.StarsFilter == StarsBuckets {
		st.Filters[ColStars] = table.AllBuckets()
	}
	return st
}

// View derives the visible table for st.
func (d *Dashboard) View(st table.State) (*View, error) {
	return table.Compute(d.columns, d.repos, st)
}

// resetFilters puts the Stars and Language filters back to their defaults.
func (d *Dashboard) resetFilters(st table.State) table.State {
	st = st.SetFilter(ColLanguage, "")
	if d.opts.StarsFilter == StarsBuckets {
		return st.SetFilter(ColStars, table.AllBuckets())
	}
	return st.SetFilter(ColStars, nil)
}

// ToggleGroup switches between the repository list and the per-language
// groups. Filters are hidden while grouped, so both directions reset them.
func (d *Dashboard) ToggleGroup(st table.State) table.State {
	return d.resetFilters(st).ToggleGroupBy(ColLanguage)
}

// ShowLanguage lists the repositories of one language, leaving the grouped view.
func (d *Dashboard) ShowLanguage(st table.State, lang string) table.State {
	if st.IsGrouped(ColLanguage) {
		st = st.ToggleGroupBy(ColLanguage)
	}
	return st.SetFilter(ColLanguage, lang)
}
