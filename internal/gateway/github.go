// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/octotrends/internal/domain"
)

// ErrRepoNotFound is returned for repositories that are gone or private.
var ErrRepoNotFound = errors.New("repository not found")

// maxRateLimitRetries bounds how often one lookup waits out the primary rate limit.
const maxRateLimitRetries = 3

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepo(ctx context.Context, name string) (domain.RepoInfo, error)
	// FetchLanguageColors returns the colours of the languages used by repos.
	FetchLanguageColors(ctx context.Context, repos []string) (map[string]string, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	limiter       *rate.Limiter
	logger        *zerolog.Logger
	sleep         func(ctx context.Context, d time.Duration) error
}

// languagesQuery fetches the languages of one repository with their colours.
type languagesQuery struct {
	Repository struct {
		Languages struct {
			Nodes []struct {
				Name  string
				Color string
			}
		} `graphql:"languages(first: 20, orderBy: {field: SIZE, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// ratePerSecond paces every API call; the secondary rate limit is waited out
// by the transport.
func NewGitHubGateway(token string, ratePerSecond float64, logger *zerolog.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, func(cbc *github_ratelimit.CallbackContext) {
		logger.Warn().Msg("secondary rate limit exceeded beyond one hour")
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return newGateway(github.NewClient(httpClient), githubv4.NewClient(httpClient), ratePerSecond, logger), nil
}

func newGateway(rest *github.Client, gql *githubv4.Client, ratePerSecond float64, logger *zerolog.Logger) *GitHubGateway {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &GitHubGateway{
		restClient:    rest,
		graphqlClient: gql,
		limiter:       rate.NewLimiter(limit, 1),
		logger:        logger,
		sleep:         sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FetchRepo looks up the metadata of "owner/repo".
func (g *GitHubGateway) FetchRepo(ctx context.Context, name string) (domain.RepoInfo, error) {
	owner, repoName := domain.SplitName(name)
	if owner == "" || repoName == "" {
		return domain.RepoInfo{}, fmt.Errorf("invalid repository name %q", name)
	}

	for attempt := 0; ; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return domain.RepoInfo{}, err
		}
		repo, _, err := g.restClient.Repositories.Get(ctx, owner, repoName)
		if err == nil {
			return domain.RepoInfo{
				Stars:       int64(repo.GetStargazersCount()),
				Language:    repo.GetLanguage(),
				Topics:      repo.Topics,
				Description: repo.GetDescription(),
			}, nil
		}

		var rle *github.RateLimitError
		if errors.As(err, &rle) && attempt < maxRateLimitRetries {
			wait := time.Until(rle.Rate.Reset.Time)
			if wait <= 0 || wait > time.Minute {
				wait = time.Minute
			}
			g.logger.Warn().Str("repo", name).Dur("wait", wait).Msg("hit rate limit, sleeping")
			if err := g.sleep(ctx, wait); err != nil {
				return domain.RepoInfo{}, err
			}
			continue
		}

		var er *github.ErrorResponse
		if errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound {
			return domain.RepoInfo{}, fmt.Errorf("%s: %w", name, ErrRepoNotFound)
		}
		return domain.RepoInfo{}, fmt.Errorf("failed to get repository %s: %w", name, err)
	}
}

// FetchLanguageColors queries the languages of each repo and collects their
// colours. Languages GitHub has no colour for are left out.
func (g *GitHubGateway) FetchLanguageColors(ctx context.Context, repos []string) (map[string]string, error) {
	colors := make(map[string]string)
	for _, name := range repos {
		owner, repoName := domain.SplitName(name)
		if owner == "" {
			continue
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		variables := map[string]interface{}{
			"owner": githubv4.String(owner),
			"name":  githubv4.String(repoName),
		}
		var q languagesQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for languages of %s: %w", name, err)
		}
		for _, l := range q.Repository.Languages.Nodes {
			if l.Color != "" {
				colors[l.Name] = l.Color
			}
		}
	}
	g.logger.Debug().Int("languages", len(colors)).Msg("completed fetching language colors")
	return colors, nil
}
