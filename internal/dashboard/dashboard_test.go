package dashboard

import (
	"testing"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/massager"
	"github.com/naka-gawa/octotrends/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(name string, stars int64, lang, desc string, added30, base30 int64) domain.RawRepoRecord {
	return domain.RawRepoRecord{
		Name:        name,
		Stars:       stars,
		Language:    lang,
		Description: desc,
		Added:       map[domain.Window]int64{30: added30},
		Baseline:    map[domain.Window]int64{30: base30},
	}
}

func testRecords() []domain.RawRepoRecord {
	return []domain.RawRepoRecord{
		raw("golang/go", 120000, "Go", "The Go language :rocket:", 900, 119100),
		raw("rust-lang/rust", 95000, "Rust", "Empowering everyone", 900, 94100),
		raw("tiny/tool", 800, "Go", "", 300, 500),
		raw("mid/lib", 5000, "Python", "A library", -20, 5020),
		{Name: "no/growth", Stars: 4000, Language: "Go", Description: "nothing yet"},
	}
}

func newTestDashboard(t *testing.T, opts Options) *Dashboard {
	t.Helper()
	if opts.Windows == nil {
		opts.Windows = []domain.Window{30}
	}
	if opts.Emojizer == nil {
		opts.Emojizer = format.NewEmojizer(map[string]string{":rocket:": "\U0001F680"})
	}
	d, err := New(testRecords(), "2026-10-01T00:00:00Z", opts)
	require.NoError(t, err)
	return d
}

func pageNames(v *View) []string {
	out := make([]string, 0, len(v.Page))
	for _, r := range v.Page {
		out = append(out, r.Original.Name)
	}
	return out
}

func TestDashboard_DefaultView(t *testing.T) {
	d := newTestDashboard(t, Options{})
	st := d.DefaultState()

	assert.Equal(t, []table.SortRule{{ID: "Growth30", Desc: true}}, st.SortBy)
	assert.Equal(t, table.AllBuckets(), st.Filters[ColStars])

	v, err := d.View(st)
	require.NoError(t, err)
	// equal added keeps input order; the null growth sorts last
	assert.Equal(t, []string{"golang/go", "rust-lang/rust", "tiny/tool", "mid/lib", "no/growth"}, pageNames(v))
	assert.Equal(t, "2026-10-01T00:00:00Z", d.LastUpdated())
}

func TestDashboard_GrowthSortAscending(t *testing.T) {
	d := newTestDashboard(t, Options{})
	st := d.DefaultState().ToggleSort("Growth30", true)

	v, err := d.View(st)
	require.NoError(t, err)
	assert.Equal(t, []string{"no/growth", "mid/lib", "tiny/tool", "golang/go", "rust-lang/rust"}, pageNames(v))
}

func TestDashboard_GrowthSortRatio(t *testing.T) {
	d := newTestDashboard(t, Options{GrowthSort: GrowthSortRatio})
	v, err := d.View(d.DefaultState())
	require.NoError(t, err)
	assert.Equal(t, "tiny/tool", pageNames(v)[0], "small baseline, big ratio ranks first")
}

func TestDashboard_Exclude(t *testing.T) {
	d := newTestDashboard(t, Options{Exclude: massager.LatinAudience()})
	assert.Len(t, d.Repos(), 4)
}

func TestDashboard_Group(t *testing.T) {
	d := newTestDashboard(t, Options{})
	st := d.DefaultState().SetFilter(ColLanguage, "Go").SetFilter(ColStars, table.Buckets{"L": true})

	st = d.ToggleGroup(st)
	assert.True(t, st.IsGrouped(ColLanguage))
	assert.Nil(t, st.Filter(ColLanguage))
	assert.Equal(t, table.AllBuckets(), st.Filter(ColStars))

	v, err := d.View(st)
	require.NoError(t, err)
	require.Len(t, v.Page, 3)

	byLang := map[string]*table.Row[domain.Repo]{}
	for _, r := range v.Page {
		byLang[r.Group.Value.(string)] = r
	}
	goRow := byLang["Go"]
	require.NotNil(t, goRow)
	assert.Equal(t, int64(124800), goRow.Values[ColStars])
	assert.Equal(t, &domain.GrowthValue{Added: 1200, Baseline: 119600}, goRow.Values["Growth30"], "null growth is skipped")

	stars := d.Columns()[2]
	assert.Equal(t, "124,800 (total)", stars.Text(goRow))
	assert.Equal(t, "+1k", d.Columns()[3].Text(goRow))

	st = d.ToggleGroup(st)
	assert.False(t, st.IsGrouped(ColLanguage))
}

func TestDashboard_ShowLanguage(t *testing.T) {
	d := newTestDashboard(t, Options{})
	st := d.ToggleGroup(d.DefaultState())

	st = d.ShowLanguage(st, "Python")
	assert.False(t, st.IsGrouped(ColLanguage))

	v, err := d.View(st)
	require.NoError(t, err)
	assert.Equal(t, []string{"mid/lib"}, pageNames(v))
}

func TestDashboard_StarsRange(t *testing.T) {
	d := newTestDashboard(t, Options{StarsFilter: StarsRange})
	st := d.DefaultState()
	assert.Nil(t, st.Filter(ColStars))

	lo, hi := int64(4000), int64(5000)
	v, err := d.View(st.SetFilter(ColStars, table.Range{Min: &lo, Max: &hi}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mid/lib", "no/growth"}, pageNames(v))
}

func TestDashboard_LanguageOptions(t *testing.T) {
	d := newTestDashboard(t, Options{})
	v, err := d.View(d.DefaultState().SetFilter(ColLanguage, "Rust"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust", "Python"}, v.Options(ColLanguage))
}

func TestCells(t *testing.T) {
	d := newTestDashboard(t, Options{Colors: map[string]string{"Go": "#00ADD8", "Rust": "red;}"}})
	v, err := d.View(d.DefaultState())
	require.NoError(t, err)

	row := v.Page[0]
	name, lang, stars, growth := d.Columns()[0], d.Columns()[1], d.Columns()[2], d.Columns()[3]

	assert.Equal(t, "golang/go", name.Text(row))
	assert.Contains(t, string(name.HTML(row)), `href="https://github.com/golang/go"`)
	assert.Contains(t, string(name.HTML(row)), "golang/<strong>go</strong>")
	assert.Contains(t, string(name.HTML(row)), "The Go language \U0001F680")

	assert.Contains(t, string(lang.HTML(row)), "color: #00ADD8")
	assert.Equal(t, "Go", lang.Text(row))
	assert.Equal(t, "120k", stars.Text(row))
	assert.Contains(t, string(stars.HTML(row)), "120k")
	assert.Equal(t, "+900", growth.Text(row))

	assert.Equal(t, FallbackColor, d.Color("Rust"), "invalid colours fall back")
	assert.Equal(t, FallbackColor, d.Color("Zig"))

	nullRow := v.Page[4]
	assert.Equal(t, "", growth.Text(nullRow))
	assert.Equal(t, "", string(growth.HTML(nullRow)))

	loss := v.Page[3]
	assert.Equal(t, "-20", growth.Text(loss))
	assert.Contains(t, string(growth.HTML(loss)), "growth loss")
}

func TestSumGrowthShapeMismatch(t *testing.T) {
	_, err := table.SumNumberObjects([]map[string]int64{
		(&domain.GrowthValue{Added: 1}).Fields(),
		{"added": 1},
	})
	assert.ErrorIs(t, err, table.ErrShapeMismatch)

	got, err := sumGrowth([]any{nil, nil})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSummarize(t *testing.T) {
	d := newTestDashboard(t, Options{})
	s := d.Summary()

	assert.Equal(t, 5, s.Repos)
	assert.Equal(t, 3, s.Languages)
	assert.Equal(t, float64(5000), s.MedianStars)
	assert.Equal(t, domain.Window(30), s.Window)
	assert.Equal(t, "golang/go", s.TopRepo)
	assert.Equal(t, int64(900), s.TopAdded)
	assert.Equal(t, float64(600), s.MedianAdded)

	empty, err := Summarize(nil, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Repos)
}
