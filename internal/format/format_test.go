package format

import (
	"testing"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHumanNumber(t *testing.T) {
	testCases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1000"},
		{1001, "1k"},
		{1500, "2k"},
		{12_345, "12k"},
		{999_499, "999k"},
		{999_500, "1M"},
		{1_000_000, "1M"},
		{2_300_000, "2.3M"},
		{2_000_000, "2M"},
		{-5, "-5"},
		{-1500, "-2k"},
		{-2_300_000, "-2.3M"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, HumanNumber(tc.in), "HumanNumber(%d)", tc.in)
	}
}

func TestCompareBasic(t *testing.T) {
	assert.Equal(t, 0, CompareBasic(3, 3))
	assert.Equal(t, 1, CompareBasic(4, 3))
	assert.Equal(t, -1, CompareBasic(3, 4))
	assert.Equal(t, -1, CompareBasic("Go", "Rust"))
	assert.Equal(t, 1, CompareBasic(0.5, -0.5))
}

func TestGrowthRatio(t *testing.T) {
	assert.Equal(t, 1.5, GrowthRatio(domain.GrowthValue{Baseline: 10, Added: 5}))
	assert.Equal(t, 0.0, GrowthRatio(domain.GrowthValue{Baseline: 0, Added: 5}))
	assert.Equal(t, 0.8, GrowthRatio(domain.GrowthValue{Baseline: 10, Added: -2}))
}

func TestTotalAndSigned(t *testing.T) {
	assert.Equal(t, "12,345 (total)", Total(12345))
	assert.Equal(t, "999", Thousands(999))
	assert.Equal(t, "+2k", Signed(1500))
	assert.Equal(t, "0", Signed(0))
	assert.Equal(t, "-3", Signed(-3))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "a b c", CleanText("  a\tb\n\x00c "))
	// e + combining acute composes to a single rune
	assert.Equal(t, "caf\u00e9", CleanText("cafe\u0301"))
}

func TestEmojizer_Expand(t *testing.T) {
	e := NewEmojizer(map[string]string{
		":rocket:": "\U0001F680",
		":+1:":     "\U0001F44D",
	})
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"no colons", "plain text", "plain text"},
		{"mapped", "fast :rocket: app", "fast \U0001F680 app"},
		{"unmapped passes through", "a :nope: b", "a :nope: b"},
		{"unmapped then mapped", "a :x: b :rocket:", "a :x: b \U0001F680"},
		{"adjacent", ":rocket::+1:", "\U0001F680\U0001F44D"},
		{"clock-like text", "at 10:30:45", "at 10:30:45"},
		{"unterminated", "ratio 1:2", "ratio 1:2"},
		{"empty code", "::", "::"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Expand(tc.in))
		})
	}
}

func TestNewEmojizer_DefaultTable(t *testing.T) {
	e := NewEmojizer(nil)
	assert.NotEmpty(t, e.table)
	assert.Equal(t, "no :definitely_not_an_emoji_code: here", e.Expand("no :definitely_not_an_emoji_code: here"))
}
