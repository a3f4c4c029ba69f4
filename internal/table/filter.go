package table

import (
	"math"
	"reflect"
	"strings"
)

// Bucket is a named size range. Lower bounds are exclusive and upper bounds
// inclusive; the first bucket also takes its lower bound itself (0), the last
// one is unbounded above.
type Bucket struct {
	Name  string
	Label string
	Min   int64
	Max   int64
}

// SizeBuckets are the star-count buckets of the size filter.
var SizeBuckets = []Bucket{
	{Name: "XS", Label: "<1k", Min: 0, Max: 1000},
	{Name: "S", Label: "1k-5k", Min: 1000, Max: 5000},
	{Name: "M", Label: "5k-20k", Min: 5000, Max: 20000},
	{Name: "L", Label: ">20k", Min: 20000, Max: math.MaxInt64},
}

// Contains reports whether v falls in b. first marks the lowest bucket.
func (b Bucket) Contains(v int64, first bool) bool {
	if first && v == b.Min {
		return true
	}
	return v > b.Min && v <= b.Max
}

// Buckets is the toggle state of the size filter, keyed by bucket name.
// A nil or empty map means "no filtering".
type Buckets map[string]bool

// AllBuckets returns the default state with every bucket active.
func AllBuckets() Buckets {
	b := make(Buckets, len(SizeBuckets))
	for _, sb := range SizeBuckets {
		b[sb.Name] = true
	}
	return b
}

// Toggle returns a copy with bucket name flipped.
func (b Buckets) Toggle(name string) Buckets {
	out := make(Buckets, len(SizeBuckets))
	for _, sb := range SizeBuckets {
		out[sb.Name] = b[sb.Name]
	}
	out[name] = !out[name]
	return out
}

// Active lists the active bucket names in bucket order.
func (b Buckets) Active() []string {
	var out []string
	for _, sb := range SizeBuckets {
		if b[sb.Name] {
			out = append(out, sb.Name)
		}
	}
	return out
}

// FilterBuckets passes a row whose value lies in any active bucket.
func FilterBuckets(values map[string]any, ids []string, filterValue any) bool {
	b, ok := filterValue.(Buckets)
	if !ok || len(b) == 0 {
		return true
	}
	for _, id := range ids {
		v, ok := AsInt64(values[id])
		if !ok {
			continue
		}
		for i, sb := range SizeBuckets {
			if b[sb.Name] && sb.Contains(v, i == 0) {
				return true
			}
		}
	}
	return false
}

// Range is an inclusive [Min, Max] bound; a nil bound is open.
type Range struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether v lies within the range.
func (r Range) Contains(v int64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// FilterRange passes a row whose value lies within the inclusive range.
func FilterRange(values map[string]any, ids []string, filterValue any) bool {
	r, ok := filterValue.(Range)
	if !ok || r.IsZero() {
		return true
	}
	for _, id := range ids {
		if v, ok := AsInt64(values[id]); ok && r.Contains(v) {
			return true
		}
	}
	return false
}

// EqualsAny passes a row when any of ids holds a non-empty value equal to the
// filter value. Equality is exact: the string "10" never matches the number 10.
// An empty filter value means no filtering.
func EqualsAny(values map[string]any, ids []string, filterValue any) bool {
	if IsUnset(filterValue) {
		return true
	}
	for _, id := range ids {
		v := values[id]
		if IsUnset(v) {
			continue
		}
		if equalExact(v, filterValue) {
			return true
		}
	}
	return false
}

func equalExact(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// IsUnset reports whether a filter value means "no filtering".
func IsUnset(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case Buckets:
		return len(x) == 0
	case Range:
		return x.IsZero()
	default:
		return false
	}
}

// AsInt64 converts the numeric accessor values used by the built-in filters.
func AsInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}
