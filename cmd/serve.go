package cmd

import (
	"fmt"
	"net"

	"github.com/naka-gawa/octotrends/internal/logger"
	"github.com/naka-gawa/octotrends/internal/web"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the dashboard over HTTP",
	Long:  `Loads the snapshot and serves the repository table as an HTML page, with the same view available as JSON under /api/repos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if cmd.Flags().Changed("open") {
			cfg.Server.OpenBrowser, _ = cmd.Flags().GetBool("open")
		}

		d, err := loadDashboard()
		if err != nil {
			return err
		}
		srv, err := web.NewServer(d, logger.Named(log, "http"))
		if err != nil {
			return err
		}

		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
		}
		url := "http://" + ln.Addr().String() + "/"
		fmt.Fprintf(cmd.OutOrStdout(), "Serving OctoTrends on %s\n", url)
		if cfg.Server.OpenBrowser {
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Msg("failed to open browser")
			}
		}

		ctx, stop := signalContext()
		defer stop()
		return srv.Serve(ctx, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config: 127.0.0.1:8080)")
	serveCmd.Flags().Bool("open", false, "Open the dashboard in the default browser")
}
