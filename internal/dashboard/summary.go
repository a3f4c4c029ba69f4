package dashboard

import (
	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/octotrends/internal/domain"
)

// Summary is the statistics strip shown above the table.
type Summary struct {
	Repos       int
	Languages   int
	MedianStars float64
	P90Stars    float64

	// Window is the growth window TopRepo leads.
	Window   domain.Window
	TopRepo  string
	TopAdded int64
	// MedianAdded is the median of the non-null growths of Window.
	MedianAdded float64
}

// Summarize computes the summary of repos for window w.
func Summarize(repos []domain.Repo, w domain.Window) (Summary, error) {
	s := Summary{Repos: len(repos), Window: w}
	if len(repos) == 0 {
		return s, nil
	}

	langs := map[string]struct{}{}
	starData := make(stats.Float64Data, 0, len(repos))
	var added stats.Float64Data
	for _, r := range repos {
		if r.Language != "" {
			langs[r.Language] = struct{}{}
		}
		starData = append(starData, float64(r.Stars))
		g := r.Data[w]
		if g == nil {
			continue
		}
		added = append(added, float64(g.Added))
		if s.TopRepo == "" || g.Added > s.TopAdded {
			s.TopRepo, s.TopAdded = r.Name, g.Added
		}
	}
	s.Languages = len(langs)

	var err error
	if s.MedianStars, err = starData.Median(); err != nil {
		return s, err
	}
	if s.P90Stars, err = starData.Percentile(90); err != nil {
		return s, err
	}
	if len(added) > 0 {
		if s.MedianAdded, err = added.Median(); err != nil {
			return s, err
		}
	}
	return s, nil
}
