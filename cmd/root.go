// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/octotrends/internal/config"
	"github.com/naka-gawa/octotrends/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	cfg *config.Config
	log *zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "octotrends",
	Short: "Trending GitHub repositories by stars gained.",
	Long: `octotrends ranks popular GitHub repositories by the stars they gained over
recent windows (7, 30 and 90 days by default).

The snapshot command builds a static snapshot from the GitHub events dataset in
ClickHouse and the GitHub API. The serve and browse commands show that snapshot
as a sortable, filterable and groupable table in the browser or the terminal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			c.Log.Level = "debug"
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		log = logger.New(logger.Options{
			Level:   c.Log.Level,
			Format:  c.Log.Format,
			Service: "octotrends",
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: octotrends.yaml in . or ~/.octotrends)")
}
