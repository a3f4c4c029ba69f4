package dashboard

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/table"
)

// FallbackColor is the swatch colour of languages without a known colour.
const FallbackColor = "#cccccc"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{3,8}$`)

type cell = table.Cell[domain.Repo]

type render = table.RenderFuncs[domain.Repo]

// cells holds what the presentational cells need besides the row.
type cells struct {
	emoji  *format.Emojizer
	colors map[string]string
}

// Color returns the swatch colour of a language.
func (c cells) Color(lang string) string {
	if col := c.colors[lang]; hexColor.MatchString(col) {
		return col
	}
	return FallbackColor
}

func (c cells) description(r *table.Row[domain.Repo]) string {
	if r.IsGroup() {
		return ""
	}
	return c.emoji.Expand(r.Original.Description)
}

func (c cells) name() render {
	return render{
		TextFunc: func(cl cell) string {
			s, _ := cl.Value.(string)
			return s
		},
		HTMLFunc: func(cl cell) template.HTML {
			name, _ := cl.Value.(string)
			if name == "" {
				return ""
			}
			owner, repo := domain.SplitName(name)
			desc := template.HTMLEscapeString(c.description(cl.Row))
			href := "https://github.com/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
			return template.HTML(fmt.Sprintf(
				`<div class="name"><a target="_blank" rel="noreferrer" title="%s" href="%s">`+
					`<span class="repo">%s/<strong>%s</strong></span><br>`+
					`<span class="desc">%s&nbsp;</span></a></div>`,
				desc,
				template.HTMLEscapeString(href),
				template.HTMLEscapeString(owner),
				template.HTMLEscapeString(repo),
				desc,
			))
		},
	}
}

func (c cells) language() render {
	return render{
		HTMLFunc: func(cl cell) template.HTML {
			lang, _ := cl.Value.(string)
			if lang == "" {
				return ""
			}
			l := template.HTMLEscapeString(lang)
			return template.HTML(fmt.Sprintf(
				`<span class="lang" title="%s"><span class="swatch" style="color: %s">&#9632;</span> %s</span>`,
				l, c.Color(lang), l,
			))
		},
	}
}

func (c cells) stars() render {
	return render{
		TextFunc: func(cl cell) string {
			n, ok := table.AsInt64(cl.Value)
			if !ok {
				return ""
			}
			return format.HumanNumber(n)
		},
		HTMLFunc: func(cl cell) template.HTML {
			n, ok := table.AsInt64(cl.Value)
			if !ok {
				return ""
			}
			return template.HTML(`<span class="stars">&#9733; ` + format.HumanNumber(n) + `</span>`)
		},
	}
}

func (c cells) starsTotal() render {
	return render{
		TextFunc: func(cl cell) string {
			n, _ := table.AsInt64(cl.Value)
			return format.Total(n)
		},
	}
}

func (c cells) growth() render {
	text := func(cl cell) string {
		g, _ := cl.Value.(*domain.GrowthValue)
		if g == nil {
			return ""
		}
		return format.Signed(g.Added)
	}
	return render{
		TextFunc: text,
		HTMLFunc: func(cl cell) template.HTML {
			g, _ := cl.Value.(*domain.GrowthValue)
			if g == nil {
				return ""
			}
			class := "growth"
			if g.Added < 0 {
				class += " loss"
			}
			title := fmt.Sprintf("%s of %s", format.Thousands(g.Added), format.Thousands(g.Baseline))
			return template.HTML(fmt.Sprintf(`<span class="%s" title="%s">%s</span>`,
				class, template.HTMLEscapeString(title), template.HTMLEscapeString(text(cl))))
		},
	}
}
