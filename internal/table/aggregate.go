package table

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrShapeMismatch is returned when objects summed element-wise do not share
// the same key set.
var ErrShapeMismatch = errors.New("table: aggregated objects have different keys")

// Sum adds numeric leaf values. Non-numeric values are skipped.
func Sum(leafValues []any) (any, error) {
	var total int64
	for _, v := range leafValues {
		if n, ok := AsInt64(v); ok {
			total += n
		}
	}
	return total, nil
}

// Count counts the leaves.
func Count(leafValues []any) (any, error) {
	return int64(len(leafValues)), nil
}

// Number is a value SumNumberObjects can add.
type Number interface {
	~int | ~int64 | ~float64
}

// SumNumberObjects sums objects key by key. Every object must carry exactly
// the key set of the first one; otherwise ErrShapeMismatch is returned.
// An empty input sums to nil.
func SumNumberObjects[N Number](objs []map[string]N) (map[string]N, error) {
	if len(objs) == 0 {
		return nil, nil
	}
	keys := slices.Sorted(maps.Keys(objs[0]))
	out := make(map[string]N, len(keys))
	for i, o := range objs {
		if len(o) != len(keys) {
			return nil, fmt.Errorf("object %d: %w", i, ErrShapeMismatch)
		}
		for _, k := range keys {
			v, ok := o[k]
			if !ok {
				return nil, fmt.Errorf("object %d lacks %q: %w", i, k, ErrShapeMismatch)
			}
			out[k] += v
		}
	}
	return out, nil
}
