// Package massager reshapes raw snapshot records into the normalized records
// the dashboard table works on.
package massager

import (
	"strings"
	"unicode"

	"github.com/naka-gawa/octotrends/internal/domain"
)

// Exclude reports whether a raw record should be dropped.
type Exclude func(domain.RawRepoRecord) bool

// Massager copies the growth pairs of a fixed window set into each record.
type Massager struct {
	windows []domain.Window
	exclude Exclude
}

// Option configures a Massager.
type Option func(*Massager)

// WithExclude installs a record-level exclusion rule.
func WithExclude(ex Exclude) Option {
	return func(m *Massager) { m.exclude = ex }
}

// New creates a Massager for the windows the column model shows.
func New(windows []domain.Window, opts ...Option) *Massager {
	m := &Massager{windows: append([]domain.Window(nil), windows...)}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Massage normalizes records, keeping input order. It never fails: a window
// missing from a record becomes a null growth.
func (m *Massager) Massage(records []domain.RawRepoRecord) []domain.Repo {
	out := make([]domain.Repo, 0, len(records))
	for _, rec := range records {
		if m.exclude != nil && m.exclude(rec) {
			continue
		}
		data := make(map[domain.Window]*domain.GrowthValue, len(m.windows))
		for _, w := range m.windows {
			data[w] = rec.Growth(w)
		}
		out = append(out, domain.Repo{
			Name:        rec.Name,
			Stars:       rec.Stars,
			Language:    rec.Language,
			Topics:      rec.Topics,
			Description: rec.Description,
			Data:        data,
		})
	}
	return out
}

// EmptyDescription drops records without a description.
func EmptyDescription(rec domain.RawRepoRecord) bool {
	return strings.TrimSpace(rec.Description) == ""
}

// cjk lists the ideograph ranges excluded by CJKDescription: the unified
// block up to U+9FCC, extension A, and the supplementary-plane extensions B–D
// plus the compatibility supplement.
var cjk = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3400, Hi: 0x4DB5, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FCC, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x20000, Hi: 0x2A6D6, Stride: 1},
		{Lo: 0x2A700, Hi: 0x2B734, Stride: 1},
		{Lo: 0x2B740, Hi: 0x2B81D, Stride: 1},
		{Lo: 0x2F800, Hi: 0x2FA1D, Stride: 1},
	},
}

// ContainsCJK reports whether s holds any rune of the excluded ideograph ranges.
func ContainsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(cjk, r) {
			return true
		}
	}
	return false
}

// CJKDescription drops records whose description contains CJK ideographs.
func CJKDescription(rec domain.RawRepoRecord) bool {
	return ContainsCJK(rec.Description)
}

// AnyOf drops a record when any of rules does.
func AnyOf(rules ...Exclude) Exclude {
	return func(rec domain.RawRepoRecord) bool {
		for _, r := range rules {
			if r(rec) {
				return true
			}
		}
		return false
	}
}

// LatinAudience is the exclusion policy behind the exclude_cjk switch.
func LatinAudience() Exclude {
	return AnyOf(EmptyDescription, CJKDescription)
}
