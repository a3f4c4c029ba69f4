// Package config loads octotrends settings from config files, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	GitHub     GitHubConfig     `mapstructure:"github"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr" validate:"required"`
	OpenBrowser bool   `mapstructure:"open_browser"`
}

type SnapshotConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
	// ExcludeCJK drops repositories with an empty or CJK description.
	ExcludeCJK bool `mapstructure:"exclude_cjk"`
}

type DashboardConfig struct {
	Windows     []int  `mapstructure:"windows" validate:"required,min=1,unique,dive,gt=0"`
	PageSize    int    `mapstructure:"page_size" validate:"oneof=5 10 15 20"`
	GrowthSort  string `mapstructure:"growth_sort" validate:"oneof=added ratio"`
	StarsFilter string `mapstructure:"stars_filter" validate:"oneof=buckets range"`
}

type GitHubConfig struct {
	Token         string  `mapstructure:"token"`
	Concurrency   int     `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"gt=0"`
	// BlockedLanguageRepos are attributed to languages they have little to do with.
	BlockedLanguageRepos []string `mapstructure:"blocked_language_repos"`
}

type ClickHouseConfig struct {
	DSN      string `mapstructure:"dsn" validate:"required"`
	MinStars int    `mapstructure:"min_stars" validate:"gte=0"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
	// MaxAge expires cached repository metadata; zero keeps it forever.
	MaxAge time.Duration `mapstructure:"max_age" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// DefaultBlockedLanguageRepos lists repositories whose language is cleared.
var DefaultBlockedLanguageRepos = []string{
	"996icu/996.ICU",
	"public-apis/public-apis",
	"CyC2018/CS-Notes",
	"awesome-selfhosted/awesome-selfhosted",
	"jaywcjlove/awesome-mac",
	"bayandin/awesome-awesomeness",
	"donnemartin/system-design-primer",
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Snapshot: SnapshotConfig{
			Dir: "data",
		},
		Dashboard: DashboardConfig{
			Windows:     []int{7, 30, 90},
			PageSize:    10,
			GrowthSort:  "added",
			StarsFilter: "buckets",
		},
		GitHub: GitHubConfig{
			Concurrency:          4,
			RatePerSecond:        1,
			BlockedLanguageRepos: DefaultBlockedLanguageRepos,
		},
		ClickHouse: ClickHouseConfig{
			DSN:      "clickhouse://play@play.clickhouse.com:9440/default?secure=true",
			MinStars: 1000,
		},
		Cache: CacheConfig{
			Path:   filepath.Join(homeDir, ".octotrends", "repo-info.db"),
			MaxAge: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// setDefaults registers every key so that OCTOTRENDS_* variables are picked up.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.open_browser", cfg.Server.OpenBrowser)
	v.SetDefault("snapshot.dir", cfg.Snapshot.Dir)
	v.SetDefault("snapshot.exclude_cjk", cfg.Snapshot.ExcludeCJK)
	v.SetDefault("dashboard.windows", cfg.Dashboard.Windows)
	v.SetDefault("dashboard.page_size", cfg.Dashboard.PageSize)
	v.SetDefault("dashboard.growth_sort", cfg.Dashboard.GrowthSort)
	v.SetDefault("dashboard.stars_filter", cfg.Dashboard.StarsFilter)
	v.SetDefault("github.token", cfg.GitHub.Token)
	v.SetDefault("github.concurrency", cfg.GitHub.Concurrency)
	v.SetDefault("github.rate_per_second", cfg.GitHub.RatePerSecond)
	v.SetDefault("github.blocked_language_repos", cfg.GitHub.BlockedLanguageRepos)
	v.SetDefault("clickhouse.dsn", cfg.ClickHouse.DSN)
	v.SetDefault("clickhouse.min_stars", cfg.ClickHouse.MinStars)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("cache.max_age", cfg.Cache.MaxAge)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}

// Load loads configuration from file. An empty path searches ./octotrends.yaml
// and ~/.octotrends/octotrends.yaml; a missing file is fine.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix("OCTOTRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("octotrends")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".octotrends"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// loadEnvFiles loads .env files; variables already set win.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

// applyEnvOverrides applies the conventional unprefixed variables.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = token
	}
	if dsn := os.Getenv("CLICKHOUSE_DSN"); dsn != "" {
		cfg.ClickHouse.DSN = dsn
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateSnapshot additionally checks what the snapshot command needs.
func (c *Config) ValidateSnapshot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GitHub.Token == "" {
		return errors.New("invalid configuration: a GitHub token is required (github.token or GITHUB_TOKEN)")
	}
	return nil
}
