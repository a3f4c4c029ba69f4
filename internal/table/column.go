// Package table derives paginated, sorted, filtered and grouped views of an
// in-memory record set from declarative column descriptors.
//
// A Column is a record of strategies (accessor, renderers, sort comparator,
// filter predicate, aggregate) that can each be swapped per column. Compute
// applies them in a fixed order: filter, group, sort, paginate. It never
// mutates the input records, so the same records, columns and State always
// produce the same View.
package table

import (
	"fmt"
	"html/template"
)

// Control names the filter widget a column asks the view to draw.
type Control string

const (
	ControlNone    Control = ""
	ControlSelect  Control = "select"
	ControlBuckets Control = "buckets"
	ControlRange   Control = "range"
)

// Cell is what a renderer receives.
type Cell[T any] struct {
	Column *Column[T]
	Row    *Row[T]
	Value  any
}

// Renderer turns a cell into markup for the web view and into plain text for
// the terminal view.
type Renderer[T any] interface {
	HTML(c Cell[T]) template.HTML
	Text(c Cell[T]) string
}

// RenderFuncs adapts a pair of functions to Renderer.
type RenderFuncs[T any] struct {
	HTMLFunc func(c Cell[T]) template.HTML
	TextFunc func(c Cell[T]) string
}

// HTML implements Renderer. Without HTMLFunc the escaped text is used.
func (f RenderFuncs[T]) HTML(c Cell[T]) template.HTML {
	if f.HTMLFunc == nil {
		return template.HTML(template.HTMLEscapeString(f.Text(c)))
	}
	return f.HTMLFunc(c)
}

// Text implements Renderer.
func (f RenderFuncs[T]) Text(c Cell[T]) string {
	if f.TextFunc == nil {
		return defaultText(c.Value)
	}
	return f.TextFunc(c)
}

// SortFunc orders two rows by the column id; negative when a sorts first.
type SortFunc[T any] func(a, b *Row[T], id string) int

// FilterFunc reports whether a row with the given accessor values passes the
// filter value. ids are the column ids the filter inspects.
type FilterFunc func(values map[string]any, ids []string, filterValue any) bool

// AggregateFunc collapses the values of a group's leaf rows into one value.
type AggregateFunc func(leafValues []any) (any, error)

// Column describes one displayed field.
type Column[T any] struct {
	ID     string
	Header string
	// Title is shown as the header tooltip.
	Title    string
	Accessor func(T) any

	Cell       Renderer[T]
	Aggregated Renderer[T]

	Sort          SortFunc[T]
	SortDescFirst bool

	CanGroupBy bool

	Filter    FilterFunc
	FilterIDs []string
	Control   Control

	Aggregate AggregateFunc
}

// filterIDs returns the ids the filter looks at, the column itself by default.
func (c *Column[T]) filterIDs() []string {
	if len(c.FilterIDs) > 0 {
		return c.FilterIDs
	}
	return []string{c.ID}
}

func (c *Column[T]) cellOf(row *Row[T]) Cell[T] {
	return Cell[T]{Column: c, Row: row, Value: row.Values[c.ID]}
}

// HTML renders the column's cell of row.
func (c *Column[T]) HTML(row *Row[T]) template.HTML {
	cell := c.cellOf(row)
	if r := c.renderer(row); r != nil {
		return r.HTML(cell)
	}
	return template.HTML(template.HTMLEscapeString(defaultText(cell.Value)))
}

// Text renders the column's cell of row as plain text.
func (c *Column[T]) Text(row *Row[T]) string {
	cell := c.cellOf(row)
	if r := c.renderer(row); r != nil {
		return r.Text(cell)
	}
	return defaultText(cell.Value)
}

// renderer picks Aggregated on group rows, Cell otherwise.
func (c *Column[T]) renderer(row *Row[T]) Renderer[T] {
	if row.IsGroup() && c.Aggregated != nil {
		return c.Aggregated
	}
	return c.Cell
}

func defaultText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Row is a leaf row wrapping one record, or a group row collapsing several.
type Row[T any] struct {
	// Index is the position of the record in the input; -1 for group rows.
	Index    int
	Original T
	Values   map[string]any
	Group    *Group[T]
}

// Group holds what a group row collapses.
type Group[T any] struct {
	ColumnID string
	Value    any
	Leaves   []*Row[T]
}

// IsGroup reports whether r is a group row.
func (r *Row[T]) IsGroup() bool { return r.Group != nil }
