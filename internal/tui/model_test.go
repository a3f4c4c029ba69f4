package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	langs := []string{"Go", "Rust", "Go", "Python", "Go", "Rust", "Zig"}
	var records []domain.RawRepoRecord
	for i, lang := range langs {
		records = append(records, domain.RawRepoRecord{
			Name:        fmt.Sprintf("owner/repo%d", i),
			Stars:       int64(500 + i*4000),
			Language:    lang,
			Description: "repo",
			Added:       map[domain.Window]int64{30: int64(100 * i)},
			Baseline:    map[domain.Window]int64{30: 1000},
		})
	}
	d, err := dashboard.New(records, "2026-10-01T00:00:00Z", dashboard.Options{
		Windows:  []domain.Window{30},
		PageSize: 5,
	})
	require.NoError(t, err)
	m, err := New(d)
	require.NoError(t, err)
	return m
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_Pagination(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, 0, m.State().PageIndex)

	testCases := []struct {
		name     string
		key      tea.KeyMsg
		expected int
	}{
		{name: "next", key: tea.KeyMsg{Type: tea.KeyRight}, expected: 1},
		{name: "next stops at the last page", key: tea.KeyMsg{Type: tea.KeyRight}, expected: 1},
		{name: "first", key: tea.KeyMsg{Type: tea.KeyHome}, expected: 0},
		{name: "previous stops at the first page", key: tea.KeyMsg{Type: tea.KeyLeft}, expected: 0},
		{name: "last", key: tea.KeyMsg{Type: tea.KeyEnd}, expected: 1},
		{name: "previous", key: tea.KeyMsg{Type: tea.KeyLeft}, expected: 0},
	}
	for _, tc := range testCases {
		m = press(t, m, tc.key)
		assert.Equal(t, tc.expected, m.State().PageIndex, tc.name)
	}
}

func TestModel_SortKeys(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, []table.SortRule{{ID: "Growth30", Desc: true}}, m.State().SortBy)

	m = press(t, m, runes("s"))
	assert.Equal(t, []table.SortRule{{ID: dashboard.ColName, Desc: false}}, m.State().SortBy)

	m = press(t, m, runes("r"))
	assert.Equal(t, []table.SortRule{{ID: dashboard.ColName, Desc: true}}, m.State().SortBy)
	assert.Equal(t, "owner/repo6", m.view.Page[0].Original.Name)

	m = press(t, m, runes("s"), runes("s"))
	assert.Equal(t, []table.SortRule{{ID: dashboard.ColStars, Desc: true}}, m.State().SortBy)
}

func TestModel_GroupAndLanguage(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("l"))
	assert.Equal(t, "Go", m.State().Filter(dashboard.ColLanguage))
	assert.Equal(t, 3, m.view.Rows)

	// languages cycle in first-appearance order, then back to all
	for _, want := range []string{"Rust", "Python", "Zig"} {
		m = press(t, m, runes("l"))
		assert.Equal(t, want, m.State().Filter(dashboard.ColLanguage))
	}
	m = press(t, m, runes("l"))
	assert.Nil(t, m.State().Filter(dashboard.ColLanguage))
	assert.Equal(t, 7, m.view.Rows)

	m = press(t, m, runes("g"))
	assert.True(t, m.view.Grouped())
	assert.Nil(t, m.State().Filter(dashboard.ColLanguage))
	assert.Equal(t, 4, m.view.Rows)

	// filters are unavailable while grouped
	m = press(t, m, runes("l"))
	assert.Nil(t, m.State().Filter(dashboard.ColLanguage))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.view.Grouped())
	lang, _ := m.State().Filter(dashboard.ColLanguage).(string)
	assert.NotEmpty(t, lang)
}

func TestModel_BucketsAndPageSize(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, runes("1"))
	b, ok := m.State().Filter(dashboard.ColStars).(table.Buckets)
	require.True(t, ok)
	assert.False(t, b["XS"])
	assert.Equal(t, 6, m.view.Rows)

	m = press(t, m, runes("+"))
	assert.Equal(t, 10, m.State().PageSize)
	assert.Equal(t, 1, m.view.PageCount)

	m = press(t, m, runes("-"), runes("-"), runes("-"))
	assert.Equal(t, 5, m.State().PageSize)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "OctoTrends")
	assert.Contains(t, out, "Page 1 of 2 (7 rows)")
	assert.Contains(t, out, "owner/repo6")
}
