// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/gateway"
	"github.com/naka-gawa/octotrends/internal/growth"
	"github.com/naka-gawa/octotrends/internal/snapshot"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RepoInfoCache keeps repository metadata between runs.
type RepoInfoCache interface {
	Get(name string) (domain.RepoInfo, bool, error)
	Put(name string, info domain.RepoInfo) error
}

// SnapshotWriter persists a built snapshot.
type SnapshotWriter interface {
	Write(snap *snapshot.Snapshot, now time.Time) error
}

// BuildOptions tunes a snapshot build.
type BuildOptions struct {
	Windows  []domain.Window
	MinStars int
	// Concurrency bounds the parallel GitHub lookups.
	Concurrency int
	// BlockedLanguageRepos get an empty language.
	BlockedLanguageRepos []string
}

// Builder is the use case for building the dashboard snapshot.
// It orchestrates the growth query, the metadata lookups and the colours.
type Builder struct {
	source  growth.Source
	fetcher gateway.Fetcher
	cache   RepoInfoCache
	writer  SnapshotWriter
	opts    BuildOptions
	logger  *zerolog.Logger
	now     func() time.Time
}

// NewBuilder creates a new Builder instance. cache may be nil.
func NewBuilder(source growth.Source, fetcher gateway.Fetcher, cache RepoInfoCache, writer SnapshotWriter, opts BuildOptions, logger *zerolog.Logger) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if len(opts.Windows) == 0 {
		opts.Windows = domain.DefaultWindows
	}
	return &Builder{
		source:  source,
		fetcher: fetcher,
		cache:   cache,
		writer:  writer,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// Run builds the snapshot and writes it.
func (b *Builder) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	snap, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.writer.Write(snap, b.now()); err != nil {
		return nil, err
	}
	b.logger.Info().Int("repos", len(snap.Records)).Int("colors", len(snap.Colors)).Msg("snapshot written")
	return snap, nil
}

// Build performs the main business logic without writing anything.
func (b *Builder) Build(ctx context.Context) (*snapshot.Snapshot, error) {
	b.logger.Info().Msg("[1/3] querying star growth")
	growths, err := b.source.Growths(ctx, b.opts.Windows, b.opts.MinStars)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(growths, func(x, y domain.RepoGrowth) int { return strings.Compare(x.Name, y.Name) })

	b.logger.Info().Int("repos", len(growths)).Msg("[2/3] fetching repository metadata")
	infos, err := b.repoInfos(ctx, growths)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRepoRecord, len(growths))
	for i, g := range growths {
		info := infos[i]
		lang := info.Language
		if slices.Contains(b.opts.BlockedLanguageRepos, g.Name) {
			lang = ""
		}
		records[i] = domain.RawRepoRecord{
			Name:        g.Name,
			Stars:       info.Stars,
			Language:    lang,
			Topics:      strings.Join(info.Topics, ", "),
			Description: format.CleanText(info.Description),
			Added:       g.Added,
			Baseline:    g.Baseline,
		}
	}

	b.logger.Info().Msg("[3/3] fetching language colors")
	colors, err := b.fetcher.FetchLanguageColors(ctx, representatives(records))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		b.logger.Warn().Err(err).Msg("continuing without language colors")
		colors = map[string]string{}
	}

	return &snapshot.Snapshot{
		Records:     records,
		LastUpdated: b.now().UTC().Format(time.RFC3339),
		Colors:      colors,
	}, nil
}

// repoInfos looks up every repository, from the cache when possible. A lookup
// that fails leaves the repository with empty metadata.
func (b *Builder) repoInfos(ctx context.Context, growths []domain.RepoGrowth) ([]domain.RepoInfo, error) {
	infos := make([]domain.RepoInfo, len(growths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.opts.Concurrency)
	for i, g := range growths {
		eg.Go(func() error {
			info, err := b.repoInfo(egCtx, g.Name)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func (b *Builder) repoInfo(ctx context.Context, name string) (domain.RepoInfo, error) {
	log := b.logger.With().Str("repo", name).Logger()
	if b.cache != nil {
		info, ok, err := b.cache.Get(name)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		} else if ok {
			log.Debug().Msg("skipping cached repository")
			return info, nil
		}
	}

	info, err := b.fetcher.FetchRepo(ctx, name)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return domain.RepoInfo{}, ctx.Err()
	case errors.Is(err, gateway.ErrRepoNotFound):
		log.Warn().Msg("repository not found, storing empty metadata")
	default:
		log.Warn().Err(err).Msg("repository lookup failed")
		return domain.RepoInfo{}, nil
	}

	if b.cache != nil {
		if err := b.cache.Put(name, info); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return info, nil
}

// representatives picks one repository per language, the first by name.
func representatives(records []domain.RawRepoRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range records {
		if r.Language == "" || seen[r.Language] {
			continue
		}
		seen[r.Language] = true
		out = append(out, r.Name)
	}
	return out
}
