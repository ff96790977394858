package cli

import (
	"github.com/spf13/cobra"

	"github.com/neboloop/browserpilot/internal/config"
)

// Version is set at build time with -ldflags "-X .../cmd/browserpilot.Version=v1.2.3".
var Version = "dev"

// Shared CLI flags (used across multiple command files)
var (
	cfgFile  string
	port     int
	driver   string
	headless string
	verbose  bool
)

// ServerConfig holds the loaded configuration (set by main, overlaid in PersistentPreRunE)
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "browserpilot",
		Short: "BrowserPilot - drive a browser from a web UI",
		Long: `BrowserPilot runs a browser (Playwright, chromedp or Rod) behind a small
HTTP API and web UI, with an optional LLM assistant that turns plain-language
instructions into browser actions.

Just type 'browserpilot' to start the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, ServerConfig)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ServerConfig)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <data dir>/config.yaml)")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "HTTP port (overrides server.port)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "browser driver: playwright, chromedp or rod")
	rootCmd.PersistentFlags().StringVar(&headless, "headless", "", "run the browser headless (true/false)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Add commands
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(HistoryCmd())
	rootCmd.AddCommand(DoctorCmd())
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}
