package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/naka-gawa/octotrends/internal/format"
)

// ErrUnknownColumn is returned when the state names a column that does not
// exist or cannot be used the way the state asks.
var ErrUnknownColumn = errors.New("table: unknown column")

// View is the derived, visible state of the table.
type View[T any] struct {
	Columns []*Column[T]
	State   State

	// Page holds the visible rows.
	Page []*Row[T]
	// Rows is the number of rows after filtering and grouping.
	Rows int
	// Total is the number of input records.
	Total int

	PageCount   int
	CanPrevious bool
	CanNext     bool

	preFiltered map[string][]*Row[T]
}

// Grouped reports whether the view shows group rows.
func (v *View[T]) Grouped() bool { return len(v.State.GroupBy) > 0 }

// Column looks a column up by id.
func (v *View[T]) Column(id string) *Column[T] {
	for _, c := range v.Columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Options lists the distinct non-empty values of a column among the rows
// that reach its filter, in order of first appearance.
func (v *View[T]) Options(id string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range v.preFiltered[id] {
		val := r.Values[id]
		if IsUnset(val) {
			continue
		}
		s := defaultText(val)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NextPage returns the state of the following page.
func (v *View[T]) NextPage() State {
	return v.State.GotoPage(min(v.State.PageIndex+1, v.PageCount-1))
}

// PreviousPage returns the state of the preceding page.
func (v *View[T]) PreviousPage() State {
	return v.State.GotoPage(v.State.PageIndex - 1)
}

// FirstPage returns the state of the first page.
func (v *View[T]) FirstPage() State { return v.State.GotoPage(0) }

// LastPage returns the state of the last page.
func (v *View[T]) LastPage() State { return v.State.GotoPage(v.PageCount - 1) }

// Compute derives the view of records under columns and state.
// Rows are filtered in column order, then grouped, then sorted with a stable
// sort, then paginated. The page index is clamped into range.
func Compute[T any](columns []*Column[T], records []T, state State) (*View[T], error) {
	state = state.Clone()
	if err := validate(columns, state); err != nil {
		return nil, err
	}

	rows := make([]*Row[T], len(records))
	for i, rec := range records {
		values := make(map[string]any, len(columns))
		for _, c := range columns {
			if c.Accessor != nil {
				values[c.ID] = c.Accessor(rec)
			}
		}
		rows[i] = &Row[T]{Index: i, Original: rec, Values: values}
	}

	view := &View[T]{
		Columns:     columns,
		Total:       len(records),
		preFiltered: make(map[string][]*Row[T], len(columns)),
	}

	for _, c := range columns {
		view.preFiltered[c.ID] = rows
		fv := state.Filters[c.ID]
		if c.Filter == nil || IsUnset(fv) {
			continue
		}
		ids := c.filterIDs()
		kept := make([]*Row[T], 0, len(rows))
		for _, r := range rows {
			if c.Filter(r.Values, ids, fv) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	if len(state.GroupBy) > 0 {
		var err error
		rows, err = group(columns, rows, state.GroupBy[0])
		if err != nil {
			return nil, err
		}
	}

	if len(state.SortBy) > 0 {
		sortRows(columns, rows, state.SortBy)
		for _, r := range rows {
			if r.IsGroup() {
				sortRows(columns, r.Group.Leaves, state.SortBy)
			}
		}
	}

	size := state.EffectivePageSize()
	state.PageSize = size
	view.Rows = len(rows)
	view.PageCount = max(1, (len(rows)+size-1)/size)
	state.PageIndex = min(max(state.PageIndex, 0), view.PageCount-1)
	start := state.PageIndex * size
	end := min(start+size, len(rows))
	view.Page = rows[start:end]
	view.CanPrevious = state.PageIndex > 0
	view.CanNext = state.PageIndex < view.PageCount-1
	view.State = state
	return view, nil
}

func validate[T any](columns []*Column[T], state State) error {
	byID := make(map[string]*Column[T], len(columns))
	for _, c := range columns {
		byID[c.ID] = c
	}
	for _, r := range state.SortBy {
		if _, ok := byID[r.ID]; !ok {
			return fmt.Errorf("sort by %q: %w", r.ID, ErrUnknownColumn)
		}
	}
	if len(state.GroupBy) > 1 {
		return fmt.Errorf("group by %v: only one level of grouping is supported", state.GroupBy)
	}
	for _, id := range state.GroupBy {
		c, ok := byID[id]
		if !ok || !c.CanGroupBy {
			return fmt.Errorf("group by %q: %w", id, ErrUnknownColumn)
		}
	}
	for id := range state.Filters {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("filter %q: %w", id, ErrUnknownColumn)
		}
	}
	return nil
}

// group collapses rows sharing the value of column id, groups ordered by
// first appearance. Every other column with an Aggregate gets its aggregated
// value on the group row.
func group[T any](columns []*Column[T], rows []*Row[T], id string) ([]*Row[T], error) {
	var order []any
	buckets := map[any][]*Row[T]{}
	for _, r := range rows {
		key := r.Values[id]
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], r)
	}

	out := make([]*Row[T], 0, len(order))
	for _, key := range order {
		leaves := buckets[key]
		values := map[string]any{id: key}
		for _, c := range columns {
			if c.ID == id || c.Aggregate == nil {
				continue
			}
			leafValues := make([]any, len(leaves))
			for i, l := range leaves {
				leafValues[i] = l.Values[c.ID]
			}
			agg, err := c.Aggregate(leafValues)
			if err != nil {
				return nil, fmt.Errorf("aggregate %q for %v: %w", c.ID, key, err)
			}
			values[c.ID] = agg
		}
		out = append(out, &Row[T]{
			Index:  -1,
			Values: values,
			Group:  &Group[T]{ColumnID: id, Value: key, Leaves: leaves},
		})
	}
	return out, nil
}

func sortRows[T any](columns []*Column[T], rows []*Row[T], rules []SortRule) {
	cmps := make([]SortFunc[T], len(rules))
	for i, r := range rules {
		cmps[i] = CompareValues[T]
		for _, c := range columns {
			if c.ID == r.ID && c.Sort != nil {
				cmps[i] = c.Sort
			}
		}
	}
	slices.SortStableFunc(rows, func(a, b *Row[T]) int {
		for i, r := range rules {
			n := cmps[i](a, b, r.ID)
			if n == 0 {
				continue
			}
			if r.Desc {
				return -n
			}
			return n
		}
		return 0
	})
}

// CompareValues is the default comparator: numbers numerically, strings
// lexically, nil before everything else.
func CompareValues[T any](a, b *Row[T], id string) int {
	return CompareAny(a.Values[id], b.Values[id])
}

// CompareAny orders two accessor values of the same kind; nil sorts first.
func CompareAny(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			return format.CompareBasic(x, y)
		}
	}
	if x, ok := AsInt64(a); ok {
		if y, ok := AsInt64(b); ok {
			return format.CompareBasic(x, y)
		}
	}
	return format.CompareBasic(defaultText(a), defaultText(b))
}
