package web

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/table"
)

// Query parameter names.
const (
	paramSort     = "sort"
	paramDesc     = "desc"
	paramGroup    = "group"
	paramLang     = "lang"
	paramSize     = "size"
	paramStarsMin = "stars_min"
	paramStarsMax = "stars_max"
	paramPage     = "page"
	paramPageSize = "page_size"

	sortNone = "none"
	sizeNone = "none"
)

// Query is the decoded page query string.
type Query struct {
	Sort     string   `query:"sort" validate:"omitempty,max=64"`
	Desc     bool     `query:"desc"`
	Group    string   `query:"group" validate:"omitempty,oneof=Language"`
	Lang     string   `query:"lang" validate:"max=200"`
	Size     []string `query:"size" validate:"dive,oneof=XS S M L none"`
	StarsMin *int64   `query:"stars_min" validate:"omitempty,min=0"`
	StarsMax *int64   `query:"stars_max" validate:"omitempty,min=0"`
	Page     int      `query:"page" validate:"omitempty,min=1"`
	PageSize int      `query:"page_size" validate:"omitempty,oneof=5 10 15 20"`
}

// QueryError reports an invalid query string.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "invalid query: " + strings.Join(e.Messages, "; ")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

// ParseQuery decodes and validates the query string.
func ParseQuery(v *validator.Validate, values url.Values) (Query, error) {
	var (
		q    Query
		msgs []string
	)
	intParam := func(name string) *int64 {
		s := strings.TrimSpace(values.Get(name))
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("%s must be an integer", name))
			return nil
		}
		return &n
	}

	q.Sort = values.Get(paramSort)
	if s := values.Get(paramDesc); s != "" {
		desc, err := strconv.ParseBool(s)
		if err != nil {
			msgs = append(msgs, paramDesc+" must be a boolean")
		}
		q.Desc = desc
	}
	q.Group = values.Get(paramGroup)
	q.Lang = values.Get(paramLang)
	q.Size = values[paramSize]
	q.StarsMin = intParam(paramStarsMin)
	q.StarsMax = intParam(paramStarsMax)
	if p := intParam(paramPage); p != nil {
		q.Page = int(*p)
		if q.Page == 0 {
			msgs = append(msgs, paramPage+" must be at least 1")
		}
	}
	if p := intParam(paramPageSize); p != nil {
		q.PageSize = int(*p)
		if q.PageSize == 0 {
			msgs = append(msgs, paramPageSize+" must be one of [5 10 15 20]")
		}
	}
	if len(msgs) > 0 {
		return q, &QueryError{Messages: msgs}
	}

	if err := v.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return q, err
		}
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
	}
	if q.StarsMin != nil && q.StarsMax != nil && *q.StarsMin > *q.StarsMax {
		msgs = append(msgs, "stars_min must not exceed stars_max")
	}
	if len(msgs) > 0 {
		return q, &QueryError{Messages: msgs}
	}
	return q, nil
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// State turns a query into table state on top of the dashboard defaults.
func (q Query) State(d *dashboard.Dashboard) (table.State, error) {
	st := d.DefaultState()

	switch q.Sort {
	case "":
	case sortNone:
		st.SortBy = nil
	default:
		if !slices.ContainsFunc(d.Columns(), func(c *table.Column[domain.Repo]) bool { return c.ID == q.Sort }) {
			return st, &QueryError{Messages: []string{fmt.Sprintf("sort: unknown column %q", q.Sort)}}
		}
		st.SortBy = []table.SortRule{{ID: q.Sort, Desc: q.Desc}}
	}

	if q.Group != "" {
		st.GroupBy = []string{q.Group}
	}
	if q.Lang != "" {
		st.Filters[dashboard.ColLanguage] = q.Lang
	}

	switch d.StarsFilter() {
	case dashboard.StarsBuckets:
		if len(q.Size) > 0 {
			b := table.Buckets{}
			for _, sb := range table.SizeBuckets {
				b[sb.Name] = slices.Contains(q.Size, sb.Name)
			}
			st.Filters[dashboard.ColStars] = b
		}
	case dashboard.StarsRange:
		r := table.Range{Min: q.StarsMin, Max: q.StarsMax}
		if !r.IsZero() {
			st.Filters[dashboard.ColStars] = r
		}
	}

	if q.PageSize > 0 {
		st.PageSize = q.PageSize
	}
	if q.Page > 0 {
		st.PageIndex = q.Page - 1
	}
	return st, nil
}

// Encode is the inverse of ParseQuery followed by Query.State: it writes the
// parts of st that differ from the dashboard defaults.
func Encode(d *dashboard.Dashboard, st table.State) url.Values {
	def := d.DefaultState()
	v := url.Values{}

	if !slices.Equal(st.SortBy, def.SortBy) {
		if len(st.SortBy) == 0 {
			v.Set(paramSort, sortNone)
		} else {
			v.Set(paramSort, st.SortBy[0].ID)
			if st.SortBy[0].Desc {
				v.Set(paramDesc, "true")
			}
		}
	}
	if len(st.GroupBy) > 0 {
		v.Set(paramGroup, st.GroupBy[0])
	}
	if lang, _ := st.Filter(dashboard.ColLanguage).(string); lang != "" {
		v.Set(paramLang, lang)
	}

	switch f := st.Filter(dashboard.ColStars).(type) {
	case table.Buckets:
		active := f.Active()
		switch {
		case len(active) == len(table.SizeBuckets):
		case len(active) == 0:
			v.Set(paramSize, sizeNone)
		default:
			v[paramSize] = active
		}
	case table.Range:
		if f.Min != nil {
			v.Set(paramStarsMin, strconv.FormatInt(*f.Min, 10))
		}
		if f.Max != nil {
			v.Set(paramStarsMax, strconv.FormatInt(*f.Max, 10))
		}
	}

	if size := st.EffectivePageSize(); size != def.EffectivePageSize() {
		v.Set(paramPageSize, strconv.Itoa(size))
	}
	if st.PageIndex > 0 {
		v.Set(paramPage, strconv.Itoa(st.PageIndex+1))
	}
	return v
}

// Href is the page link of st.
func Href(d *dashboard.Dashboard, st table.State) string {
	q := Encode(d, st).Encode()
	if q == "" {
		return "/"
	}
	return "/?" + q
}
