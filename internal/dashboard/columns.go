package dashboard

import (
	"fmt"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/table"
)

// Column ids of the fixed columns. Growth columns use domain.Window.ColumnID.
const (
	ColName     = "Name"
	ColLanguage = "Language"
	ColStars    = "Stars"
)

// GrowthSort selects how growth columns order rows.
type GrowthSort string

const (
	// GrowthSortAdded orders by stars added within the window.
	GrowthSortAdded GrowthSort = "added"
	// GrowthSortRatio orders by (baseline+added)/baseline.
	GrowthSortRatio GrowthSort = "ratio"
)

// StarsFilter selects the filter of the Stars column.
type StarsFilter string

const (
	StarsBuckets StarsFilter = "buckets"
	StarsRange   StarsFilter = "range"
)

func buildColumns(opts Options, c cells) []*table.Column[domain.Repo] {
	cols := []*table.Column[domain.Repo]{
		{
			ID:       ColName,
			Header:   "Name",
			Accessor: func(r domain.Repo) any { return r.Name },
			Cell:     c.name(),
		},
		{
			ID:         ColLanguage,
			Header:     "Language",
			Accessor:   func(r domain.Repo) any { return r.Language },
			Cell:       c.language(),
			CanGroupBy: true,
			Filter:     table.EqualsAny,
			Control:    table.ControlSelect,
		},
		starsColumn(opts.StarsFilter, c),
	}
	for _, w := range opts.Windows {
		cols = append(cols, growthColumn(w, opts.GrowthSort, c))
	}
	return cols
}

func starsColumn(mode StarsFilter, c cells) *table.Column[domain.Repo] {
	col := &table.Column[domain.Repo]{
		ID:            ColStars,
		Header:        "Stars",
		Accessor:      func(r domain.Repo) any { return r.Stars },
		Cell:          c.stars(),
		Aggregated:    c.starsTotal(),
		SortDescFirst: true,
		Filter:        table.FilterBuckets,
		Control:       table.ControlBuckets,
		Aggregate:     table.Sum,
	}
	if mode == StarsRange {
		col.Filter = table.FilterRange
		col.Control = table.ControlRange
	}
	return col
}

func growthColumn(w domain.Window, mode GrowthSort, c cells) *table.Column[domain.Repo] {
	return &table.Column[domain.Repo]{
		ID:     w.ColumnID(),
		Header: w.String(),
		Title:  fmt.Sprintf("Stars added over the last %d days", int(w)),
		Accessor: func(r domain.Repo) any {
			g := r.Data[w]
			if g == nil {
				return nil
			}
			return g
		},
		Cell:          c.growth(),
		Sort:          growthSort(mode),
		SortDescFirst: true,
		Aggregate:     sumGrowth,
	}
}

// growthSort orders by Added, or by ratio. A null growth sorts below every value.
func growthSort(mode GrowthSort) table.SortFunc[domain.Repo] {
	return func(a, b *table.Row[domain.Repo], id string) int {
		ga, _ := a.Values[id].(*domain.GrowthValue)
		gb, _ := b.Values[id].(*domain.GrowthValue)
		switch {
		case ga == nil && gb == nil:
			return 0
		case ga == nil:
			return -1
		case gb == nil:
			return 1
		}
		if mode == GrowthSortRatio {
			return format.CompareBasic(format.GrowthRatio(*ga), format.GrowthRatio(*gb))
		}
		return format.CompareBasic(ga.Added, gb.Added)
	}
}

// sumGrowth sums the growth of a group element-wise. Null growths are
// skipped; a group without any growth aggregates to null.
func sumGrowth(leafValues []any) (any, error) {
	objs := make([]map[string]int64, 0, len(leafValues))
	for _, v := range leafValues {
		if g, ok := v.(*domain.GrowthValue); ok && g != nil {
			objs = append(objs, g.Fields())
		}
	}
	if len(objs) == 0 {
		return nil, nil
	}
	sum, err := table.SumNumberObjects(objs)
	if err != nil {
		return nil, err
	}
	g := domain.GrowthFromFields(sum)
	return &g, nil
}
