// Package tui browses the dashboard in the terminal.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/table"
)

const maxColumnWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#58a6ff"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fb950")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f85149"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d2a8ff"))
)

// Model is the bubbletea model of the terminal browser.
type Model struct {
	dash  *dashboard.Dashboard
	state table.State
	view  *dashboard.View
	table btable.Model
	err   error
}

// New derives the initial view of d.
func New(d *dashboard.Dashboard) (Model, error) {
	m := Model{
		dash: d,
		table: btable.New(
			btable.WithFocused(true),
			btable.WithHeight(d.DefaultState().EffectivePageSize()+1),
		),
	}
	if err := m.apply(d.DefaultState()); err != nil {
		return m, err
	}
	return m, nil
}

// Run shows the browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, d *dashboard.Dashboard) error {
	m, err := New(d)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// State is the current table state.
func (m Model) State() table.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// apply derives the view of st. A failing state leaves the previous view.
func (m *Model) apply(st table.State) error {
	view, err := m.dash.View(st)
	if err != nil {
		m.err = err
		return err
	}
	m.err = nil
	m.view = view
	m.state = view.State
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	m.table.SetRows(m.rows())
	m.table.SetHeight(len(view.Page) + 1)
	m.table.GotoTop()
	return nil
}

func (m Model) columns() []btable.Column {
	cols := make([]btable.Column, 0, len(m.view.Columns))
	for _, c := range m.view.Columns {
		title := c.Header
		if desc, ok := m.state.SortedBy(c.ID); ok && desc {
			title += " ▼"
		} else if ok {
			title += " ▲"
		}
		width := lipgloss.Width(title)
		for _, r := range m.view.Page {
			width = max(width, lipgloss.Width(c.Text(r)))
		}
		cols = append(cols, btable.Column{Title: title, Width: min(width, maxColumnWidth)})
	}
	return cols
}

func (m Model) rows() []btable.Row {
	rows := make([]btable.Row, 0, len(m.view.Page))
	for _, r := range m.view.Page {
		row := make(btable.Row, 0, len(m.view.Columns))
		for _, c := range m.view.Columns {
			row = append(row, c.Text(r))
		}
		rows = append(rows, row)
	}
	return rows
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	st := m.state
	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, keys.PrevPage):
		st = m.view.PreviousPage()
	case key.Matches(keyMsg, keys.NextPage):
		st = m.view.NextPage()
	case key.Matches(keyMsg, keys.FirstPage):
		st = m.view.FirstPage()
	case key.Matches(keyMsg, keys.LastPage):
		st = m.view.LastPage()
	case key.Matches(keyMsg, keys.Sort):
		st = m.nextSort()
	case key.Matches(keyMsg, keys.Reverse):
		if len(st.SortBy) == 0 {
			return m, nil
		}
		st = st.Clone()
		st.SortBy[0].Desc = !st.SortBy[0].Desc
		st.PageIndex = 0
	case key.Matches(keyMsg, keys.Group):
		st = m.dash.ToggleGroup(st)
	case key.Matches(keyMsg, keys.Language):
		if m.view.Grouped() {
			return m, nil
		}
		st = st.SetFilter(dashboard.ColLanguage, m.nextLanguage())
	case key.Matches(keyMsg, keys.Open):
		lang, _ := m.selectedValue(dashboard.ColLanguage).(string)
		if lang == "" {
			return m, nil
		}
		st = m.dash.ShowLanguage(st, lang)
	case key.Matches(keyMsg, keys.Bucket):
		b, ok := st.Filter(dashboard.ColStars).(table.Buckets)
		if !ok || m.view.Grouped() {
			return m, nil
		}
		i := int(keyMsg.String()[0] - '1')
		st = st.SetFilter(dashboard.ColStars, b.Toggle(table.SizeBuckets[i].Name))
	case key.Matches(keyMsg, keys.Bigger):
		st = st.SetPageSize(stepPageSize(st.EffectivePageSize(), 1))
	case key.Matches(keyMsg, keys.Smaller):
		st = st.SetPageSize(stepPageSize(st.EffectivePageSize(), -1))
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	_ = m.apply(st)
	return m, nil
}

// nextSort moves the sort to the following column in its first direction.
func (m Model) nextSort() table.State {
	cols := m.view.Columns
	next := 0
	if len(m.state.SortBy) > 0 {
		i := slices.IndexFunc(cols, func(c *table.Column[domain.Repo]) bool { return c.ID == m.state.SortBy[0].ID })
		next = (i + 1) % len(cols)
	}
	c := cols[next]
	st := m.state.Clone()
	st.SortBy = []table.SortRule{{ID: c.ID, Desc: c.SortDescFirst}}
	st.PageIndex = 0
	return st
}

// nextLanguage cycles through "", then every language in the order the
// language filter offers them.
func (m Model) nextLanguage() string {
	opts := m.view.Options(dashboard.ColLanguage)
	cur, _ := m.state.Filter(dashboard.ColLanguage).(string)
	if cur == "" {
		if len(opts) == 0 {
			return ""
		}
		return opts[0]
	}
	i := slices.Index(opts, cur)
	if i < 0 || i == len(opts)-1 {
		return ""
	}
	return opts[i+1]
}

func (m Model) selectedValue(id string) any {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.view.Page) {
		return nil
	}
	return m.view.Page[i].Values[id]
}

func stepPageSize(cur, dir int) int {
	i := slices.Index(table.PageSizes, cur)
	if i < 0 {
		return table.DefaultPageSize
	}
	i = min(max(i+dir, 0), len(table.PageSizes)-1)
	return table.PageSizes[i]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	s := m.dash.Summary()

	b.WriteString(titleStyle.Render("OctoTrends"))
	if lu := m.dash.LastUpdated(); lu != "" {
		b.WriteString(mutedStyle.Render("  Last updated " + lu))
	}
	b.WriteString("\n")
	summary := fmt.Sprintf("%d repositories · %d languages · median %s stars",
		s.Repos, s.Languages, format.HumanNumber(int64(s.MedianStars)))
	if s.TopRepo != "" {
		summary += fmt.Sprintf(" · top %s %s (%s)", s.Window, s.TopRepo, format.Signed(s.TopAdded))
	}
	b.WriteString(mutedStyle.Render(summary) + "\n\n")

	b.WriteString(m.filterLine() + "\n")
	b.WriteString(m.table.View() + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d rows) · %d per page",
		m.state.PageIndex+1, m.view.PageCount, m.view.Rows, m.state.EffectivePageSize())) + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(helpLine())
	return b.String()
}

func (m Model) filterLine() string {
	if m.view.Grouped() {
		return activeStyle.Render("Languages") + mutedStyle.Render(" (g: repos, enter: show language)")
	}
	parts := []string{activeStyle.Render("Repos")}
	lang, _ := m.state.Filter(dashboard.ColLanguage).(string)
	if lang == "" {
		lang = "all"
	}
	parts = append(parts, "language: "+lang)
	switch f := m.state.Filter(dashboard.ColStars).(type) {
	case table.Buckets:
		var bs []string
		for i, sb := range table.SizeBuckets {
			label := fmt.Sprintf("%d:%s", i+1, sb.Name)
			if f[sb.Name] {
				label = activeStyle.Render(label)
			} else {
				label = mutedStyle.Render(label)
			}
			bs = append(bs, label)
		}
		parts = append(parts, "size: "+strings.Join(bs, " "))
	case table.Range:
		lo, hi := "*", "*"
		if f.Min != nil {
			lo = format.Thousands(*f.Min)
		}
		if f.Max != nil {
			hi = format.Thousands(*f.Max)
		}
		parts = append(parts, fmt.Sprintf("stars: %s..%s", lo, hi))
	}
	return strings.Join(parts, "  ")
}

func helpLine() string {
	var parts []string
	for _, k := range keys.help() {
		h := k.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, " • ")
}
