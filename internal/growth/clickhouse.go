// Package growth reads star growth per repository from the GitHub events
// dataset in ClickHouse.
package growth

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/rs/zerolog"
)

// YearWindow is the window the minimum star count applies to.
const YearWindow domain.Window = 365

// Source provides per-repository star growth.
type Source interface {
	// Growths returns the added and baseline star counts of every repository
	// that gained at least minStars stars within the last year.
	Growths(ctx context.Context, windows []domain.Window, minStars int) ([]domain.RepoGrowth, error)
}

// ClickHouseSource queries the github_events table.
type ClickHouseSource struct {
	db     *sqlx.DB
	logger *zerolog.Logger
}

// NewClickHouseSource wraps an open database handle.
func NewClickHouseSource(db *sqlx.DB, logger *zerolog.Logger) *ClickHouseSource {
	return &ClickHouseSource{db: db, logger: logger}
}

// OpenClickHouse connects to the server named by dsn through the database/sql
// interface of clickhouse-go.
func OpenClickHouse(dsn, version string, logger *zerolog.Logger) (*ClickHouseSource, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse clickhouse dsn: %w", err)
	}
	opts.ClientInfo = BuildClientInfo(version)
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	db := sqlx.NewDb(clickhouse.OpenDB(opts), "clickhouse")
	return NewClickHouseSource(db, logger), nil
}

// BuildClientInfo describes this process to the server.
func BuildClientInfo(version string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	type kv = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []kv{
		{Name: "octotrends", Version: strings.TrimSpace(version)},
		{Name: "go", Version: runtime.Version()},
		{Name: "commit", Version: vcsShortSHA()},
		{Name: "host", Version: strings.TrimSpace(host)},
	}}
}

func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

// Ping checks the connection.
func (s *ClickHouseSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *ClickHouseSource) Close() error {
	return s.db.Close()
}

// Query builds the growth query for windows. Days are counted back from the
// newest event in the table, so a stale dataset still yields full windows.
func Query(windows []domain.Window) string {
	var b strings.Builder
	b.WriteString("WITH dateDiff('day', created_at, (SELECT max(created_at) FROM github_events)) AS days\n")
	b.WriteString("SELECT\n\trepo_name")
	for _, w := range windows {
		fmt.Fprintf(&b, ",\n\tcountIf(days < %d) AS added%d", int(w), int(w))
		fmt.Fprintf(&b, ",\n\tcountIf(days >= %d) AS baseline%d", int(w), int(w))
	}
	b.WriteString("\nFROM github_events\n")
	b.WriteString("WHERE event_type = 'WatchEvent'\n")
	b.WriteString("GROUP BY repo_name\n")
	fmt.Fprintf(&b, "HAVING countIf(days < %d) >= ?\n", int(YearWindow))
	b.WriteString("ORDER BY repo_name")
	return b.String()
}

// Growths implements Source.
func (s *ClickHouseSource) Growths(ctx context.Context, windows []domain.Window, minStars int) ([]domain.RepoGrowth, error) {
	start := time.Now()
	rows, err := s.db.QueryxContext(ctx, Query(windows), minStars)
	if err != nil {
		return nil, fmt.Errorf("failed to query growth: %w", err)
	}
	defer rows.Close()

	var out []domain.RepoGrowth
	counts := make([]int64, 2*len(windows))
	dest := make([]any, 0, 1+len(counts))
	var name string
	dest = append(dest, &name)
	for i := range counts {
		dest = append(dest, &counts[i])
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan growth row: %w", err)
		}
		g := domain.RepoGrowth{
			Name:     name,
			Added:    make(map[domain.Window]int64, len(windows)),
			Baseline: make(map[domain.Window]int64, len(windows)),
		}
		for i, w := range windows {
			g.Added[w] = counts[2*i]
			g.Baseline[w] = counts[2*i+1]
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read growth rows: %w", err)
	}

	s.logger.Info().
		Int("repos", len(out)).
		Int("min_stars", minStars).
		Dur("elapsed", time.Since(start)).
		Msg("growth query done")
	return out, nil
}
