package web

import (
	"html/template"
	"slices"

	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/table"
)

type pageData struct {
	Summary     dashboard.Summary
	LastUpdated string

	Grouped       bool
	ReposHref     string
	LanguagesHref string

	Headers []header
	Rows    []row
	Filters filters
	Pager   pager
	Sizes   []pageSizeOption
}

type header struct {
	Label string
	Title string
	Href  string
	Arrow string
}

type row struct {
	Group bool
	Cells []template.HTML
}

type hiddenField struct {
	Name  string
	Value string
}

type bucketToggle struct {
	Name   string
	Label  string
	Active bool
	Href   string
}

type filters struct {
	// Hidden while grouped.
	Hidden bool

	Lang          string
	LangOptions   []string
	LangHidden    []hiddenField
	ClearLangHref string

	RangeMode   bool
	Buckets     []bucketToggle
	StarsMin    string
	StarsMax    string
	RangeHidden []hiddenField
}

type pager struct {
	Page      int
	PageCount int
	Rows      int
	FirstHref string
	PrevHref  string
	NextHref  string
	LastHref  string
}

type pageSizeOption struct {
	Size     int
	Href     string
	Selected bool
}

func (s *Server) pageData(view *dashboard.View) pageData {
	d := s.dash
	st := view.State
	data := pageData{
		Summary:     d.Summary(),
		LastUpdated: d.LastUpdated(),
		Grouped:     view.Grouped(),
	}
	if data.Grouped {
		data.ReposHref = Href(d, d.ToggleGroup(st))
	} else {
		data.LanguagesHref = Href(d, d.ToggleGroup(st))
	}

	for _, c := range view.Columns {
		h := header{Label: c.Header, Title: c.Title, Href: Href(d, st.ToggleSort(c.ID, c.SortDescFirst))}
		if desc, ok := st.SortedBy(c.ID); ok {
			h.Arrow = "▲"
			if desc {
				h.Arrow = "▼"
			}
		}
		data.Headers = append(data.Headers, h)
	}

	for _, r := range view.Page {
		out := row{Group: r.IsGroup()}
		for _, c := range view.Columns {
			cell := c.HTML(r)
			if c.ID == dashboard.ColLanguage {
				if lang, _ := r.Values[c.ID].(string); lang != "" {
					cell = template.HTML(`<a class="lang-link" href="` +
						template.HTMLEscapeString(Href(d, d.ShowLanguage(st, lang))) + `">`) + cell + `</a>`
				}
			}
			out.Cells = append(out.Cells, cell)
		}
		data.Rows = append(data.Rows, out)
	}

	data.Filters = s.filters(view)
	data.Pager = pager{
		Page:      st.PageIndex + 1,
		PageCount: view.PageCount,
		Rows:      view.Rows,
		FirstHref: Href(d, view.FirstPage()),
		LastHref:  Href(d, view.LastPage()),
	}
	if view.CanPrevious {
		data.Pager.PrevHref = Href(d, view.PreviousPage())
	}
	if view.CanNext {
		data.Pager.NextHref = Href(d, view.NextPage())
	}
	for _, size := range table.PageSizes {
		data.Sizes = append(data.Sizes, pageSizeOption{
			Size:     size,
			Href:     Href(d, st.SetPageSize(size)),
			Selected: size == st.EffectivePageSize(),
		})
	}
	return data
}

func (s *Server) filters(view *dashboard.View) filters {
	d := s.dash
	st := view.State
	f := filters{
		Hidden:      view.Grouped(),
		LangOptions: view.Options(dashboard.ColLanguage),
		RangeMode:   d.StarsFilter() == dashboard.StarsRange,
	}
	f.Lang, _ = st.Filter(dashboard.ColLanguage).(string)
	f.ClearLangHref = Href(d, st.SetFilter(dashboard.ColLanguage, ""))
	f.LangHidden = hiddenFields(d, st.GotoPage(0), paramLang)

	if f.RangeMode {
		vals := Encode(d, st)
		f.StarsMin = vals.Get(paramStarsMin)
		f.StarsMax = vals.Get(paramStarsMax)
		f.RangeHidden = hiddenFields(d, st.GotoPage(0), paramStarsMin, paramStarsMax)
		return f
	}
	b, _ := st.Filter(dashboard.ColStars).(table.Buckets)
	if len(b) == 0 {
		b = table.AllBuckets()
	}
	for _, sb := range table.SizeBuckets {
		f.Buckets = append(f.Buckets, bucketToggle{
			Name:   sb.Name,
			Label:  sb.Label,
			Active: b[sb.Name],
			Href:   Href(d, st.SetFilter(dashboard.ColStars, b.Toggle(sb.Name))),
		})
	}
	return f
}

// hiddenFields carries the rest of the state through a GET form.
func hiddenFields(d *dashboard.Dashboard, st table.State, skip ...string) []hiddenField {
	vals := Encode(d, st)
	keys := make([]string, 0, len(vals))
	for k := range vals {
		if !slices.Contains(skip, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	var out []hiddenField
	for _, k := range keys {
		for _, v := range vals[k] {
			out = append(out, hiddenField{Name: k, Value: v})
		}
	}
	return out
}
