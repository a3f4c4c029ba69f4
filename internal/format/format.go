// Package format turns raw numbers and text into their display form.
package format

import (
	"cmp"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/naka-gawa/octotrends/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HumanNumber renders n compactly by magnitude: up to 1000 as is, below a
// million as rounded thousands ("2k"), from a million on as millions with one
// decimal ("2.3M", "1M"). The sign is kept.
func HumanNumber(n int64) string {
	sign := ""
	abs := n
	if n < 0 {
		sign = "-"
		abs = -n
	}
	if abs <= 1000 {
		return strconv.FormatInt(n, 10)
	}
	if abs < 1_000_000 {
		k := math.Round(float64(abs) / 1000)
		if k < 1000 {
			return sign + strconv.FormatFloat(k, 'f', 0, 64) + "k"
		}
		// 999,500 and up round to 1000k
	}
	m := math.Round(float64(abs)/100_000) / 10
	return sign + strconv.FormatFloat(m, 'f', -1, 64) + "M"
}

// CompareBasic is a three-way comparison by ordering, never by subtraction.
func CompareBasic[T cmp.Ordered](a, b T) int {
	switch {
	case a == b:
		return 0
	case a > b:
		return 1
	default:
		return -1
	}
}

// GrowthRatio is (baseline+added)/baseline, 0 for a zero baseline.
func GrowthRatio(g domain.GrowthValue) float64 {
	if g.Baseline == 0 {
		return 0
	}
	return float64(g.Baseline+g.Added) / float64(g.Baseline)
}

// Thousands renders n with thousands separators, e.g. 12,345.
func Thousands(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// Total renders a grouped sum, e.g. "12,345 (total)".
func Total(n int64) string {
	return Thousands(n) + " (total)"
}

// Signed prefixes positive growth with "+".
func Signed(n int64) string {
	if n > 0 {
		return "+" + HumanNumber(n)
	}
	return HumanNumber(n)
}

// newCleaner composes to NFC and drops control and private-use characters.
// Transformers carry state, so every call gets its own chain.
func newCleaner() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Remove(runes.In(unicode.Cc)),
		runes.Remove(runes.In(unicode.Co)),
	)
}

// CleanText normalizes free text from the GitHub API for display.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = strings.Join(strings.Fields(strings.ToValidUTF8(s, "")), " ")
	out, _, err := transform.String(newCleaner(), s)
	if err != nil {
		return s
	}
	return out
}
