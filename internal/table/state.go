package table

import (
	"maps"
	"slices"
)

// PageSizes are the page sizes the views offer.
var PageSizes = []int{5, 10, 15, 20}

// DefaultPageSize is used when a State carries no page size.
const DefaultPageSize = 10

// SortRule sorts by one column.
type SortRule struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// Filters maps a column id to its filter value.
type Filters map[string]any

// State is the transient view state: everything a user can change.
// Methods return modified copies and never touch the receiver.
type State struct {
	Filters   Filters    `json:"filters"`
	SortBy    []SortRule `json:"sort_by"`
	GroupBy   []string   `json:"group_by"`
	PageIndex int        `json:"page_index"`
	PageSize  int        `json:"page_size"`
}

// Clone returns a deep enough copy to modify independently.
func (s State) Clone() State {
	out := s
	out.Filters = maps.Clone(s.Filters)
	if out.Filters == nil {
		out.Filters = Filters{}
	}
	out.SortBy = slices.Clone(s.SortBy)
	out.GroupBy = slices.Clone(s.GroupBy)
	return out
}

// SortedBy reports whether id is sorted and in which direction.
func (s State) SortedBy(id string) (desc, ok bool) {
	for _, r := range s.SortBy {
		if r.ID == id {
			return r.Desc, true
		}
	}
	return false, false
}

// ToggleSort cycles the sort of one column: unsorted, first direction,
// opposite direction, unsorted. descFirst picks the first direction.
// Sorting is single-column, and changing it returns to the first page.
func (s State) ToggleSort(id string, descFirst bool) State {
	out := s.Clone()
	out.PageIndex = 0
	desc, ok := s.SortedBy(id)
	switch {
	case !ok:
		out.SortBy = []SortRule{{ID: id, Desc: descFirst}}
	case desc == descFirst:
		out.SortBy = []SortRule{{ID: id, Desc: !descFirst}}
	default:
		out.SortBy = nil
	}
	return out
}

// IsGrouped reports whether the rows are grouped by id.
func (s State) IsGrouped(id string) bool {
	return slices.Contains(s.GroupBy, id)
}

// ToggleGroupBy groups by id, or ungroups when already grouped by it.
func (s State) ToggleGroupBy(id string) State {
	out := s.Clone()
	out.PageIndex = 0
	if i := slices.Index(out.GroupBy, id); i >= 0 {
		out.GroupBy = slices.Delete(out.GroupBy, i, i+1)
	} else {
		out.GroupBy = append(out.GroupBy, id)
	}
	return out
}

// SetFilter sets the filter value of a column; an unset value removes the filter.
func (s State) SetFilter(id string, value any) State {
	out := s.Clone()
	out.PageIndex = 0
	if IsUnset(value) {
		delete(out.Filters, id)
	} else {
		out.Filters[id] = value
	}
	return out
}

// Filter returns the filter value of a column, nil when unset.
func (s State) Filter(id string) any {
	return s.Filters[id]
}

// EffectivePageSize is PageSize, or DefaultPageSize when unset.
func (s State) EffectivePageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// SetPageSize changes the page size keeping the first row of the current
// page visible.
func (s State) SetPageSize(size int) State {
	out := s.Clone()
	if size <= 0 {
		size = DefaultPageSize
	}
	top := s.PageIndex * s.EffectivePageSize()
	out.PageSize = size
	out.PageIndex = top / size
	return out
}

// GotoPage moves to a zero-based page; Compute clamps it into range.
func (s State) GotoPage(i int) State {
	out := s.Clone()
	out.PageIndex = max(i, 0)
	return out
}
