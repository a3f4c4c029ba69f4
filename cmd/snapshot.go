package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naka-gawa/octotrends/internal/cache"
	"github.com/naka-gawa/octotrends/internal/domain"
	"github.com/naka-gawa/octotrends/internal/gateway"
	"github.com/naka-gawa/octotrends/internal/growth"
	"github.com/naka-gawa/octotrends/internal/logger"
	"github.com/naka-gawa/octotrends/internal/snapshot"
	"github.com/naka-gawa/octotrends/internal/usecase"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Builds the dashboard snapshot from ClickHouse and the GitHub API",
	Long: `Counts the stars every repository gained per window from the GitHub events
dataset in ClickHouse, looks up the repositories on GitHub and writes
repo-data.json, last_updated.json and language-colors.json.

A GitHub token is required, from github.token or the GITHUB_TOKEN environment
variable. Repository metadata is cached between runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Flags override the configuration.
		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			cfg.Snapshot.Dir = dir
		}
		if cmd.Flags().Changed("min-stars") {
			cfg.ClickHouse.MinStars, _ = cmd.Flags().GetInt("min-stars")
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.GitHub.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if err := cfg.ValidateSnapshot(); err != nil {
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		// Inject dependencies and run the main business logic.
		source, err := growth.OpenClickHouse(cfg.ClickHouse.DSN, version, logger.Named(log, "clickhouse"))
		if err != nil {
			return err
		}
		defer source.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := source.Ping(pingCtx); err != nil {
			return fmt.Errorf("failed to connect to clickhouse: %w", err)
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHub.Token, cfg.GitHub.RatePerSecond, logger.Named(log, "github"))
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}

		var repoCache usecase.RepoInfoCache
		if !noCache && cfg.Cache.Path != "" {
			bc, err := cache.Open(cfg.Cache.Path, cfg.Cache.MaxAge)
			if err != nil {
				return err
			}
			defer bc.Close()
			if n, err := bc.Len(); err == nil {
				log.Info().Str("path", cfg.Cache.Path).Int("entries", n).Msg("repository cache opened")
			}
			repoCache = bc
		}

		windows := make([]domain.Window, 0, len(cfg.Dashboard.Windows))
		for _, w := range cfg.Dashboard.Windows {
			windows = append(windows, domain.Window(w))
		}
		store := snapshot.NewStore(cfg.Snapshot.Dir)
		builder := usecase.NewBuilder(source, githubGateway, repoCache, store, usecase.BuildOptions{
			Windows:              windows,
			MinStars:             cfg.ClickHouse.MinStars,
			Concurrency:          cfg.GitHub.Concurrency,
			BlockedLanguageRepos: cfg.GitHub.BlockedLanguageRepos,
		}, logger.Named(log, "builder"))

		if dryRun {
			snap, err := builder.Build(ctx)
			if err != nil {
				return fmt.Errorf("failed to build snapshot: %w", err)
			}
			// Marshal the records into a pretty-printed JSON string.
			jsonData, err := json.MarshalIndent(snap.Records, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal records to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		}

		snap, err := builder.Run(ctx)
		if err != nil {
			return fmt.Errorf("failed to build snapshot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d repositories and %d language colors to %s\n",
			len(snap.Records), len(snap.Colors), store.Dir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().StringP("out", "o", "", "Snapshot directory (default from config: data)")
	snapshotCmd.Flags().Int("min-stars", 1000, "Minimum stars gained within the last year")
	snapshotCmd.Flags().Int("concurrency", 4, "Parallel GitHub lookups")
	snapshotCmd.Flags().Bool("no-cache", false, "Ignore the repository metadata cache")
	snapshotCmd.Flags().Bool("dry-run", false, "Print the records as JSON instead of writing the snapshot")
}
