package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/neboloop/browserpilot/internal/browser"
	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/db/migrations"
	"github.com/neboloop/browserpilot/internal/defaults"
)

// DoctorCmd creates the doctor command for health checks
func DoctorCmd() *cobra.Command {
	var resetConfig bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database and browser setup",
		Long: `Run diagnostics on your BrowserPilot installation.

Checks:
  - Data directory and config file
  - Database and migrations
  - Browser driver and executable
  - AI provider credentials

Use --reset-config to restore the default config.yaml in the data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resetConfig {
				dir, err := defaults.EnsureDataDir()
				if err != nil {
					return err
				}
				if err := defaults.Reset(dir); err != nil {
					return fmt.Errorf("reset config: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", filepath.Join(dir, defaults.ConfigFile))
			}
			results := runChecks(cmd.Context(), ServerConfig)
			if printResults(cmd.OutOrStdout(), results) > 0 {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetConfig, "reset-config", false, "restore the default config file before checking")
	return cmd
}

var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runChecks(ctx context.Context, c *config.Config) []checkResult {
	var results []checkResult
	results = append(results, checkDataDir()...)
	results = append(results, checkDatabase(ctx, c)...)
	results = append(results, checkBrowser(c)...)
	results = append(results, checkAI(c)...)
	results = append(results, checkResult{
		name:    "Platform",
		status:  "ok",
		message: fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, runtime.Version()),
	})
	return results
}

// printResults writes results and a summary, returning the error count.
func printResults(w io.Writer, results []checkResult) int {
	okCount, warnCount, errorCount := 0, 0, 0
	for _, r := range results {
		switch r.status {
		case "ok":
			fmt.Fprintf(w, "%s %s: %s\n", styleOK.Render("✓"), r.name, r.message)
			okCount++
		case "warn":
			fmt.Fprintf(w, "%s %s: %s\n", styleWarn.Render("⚠"), r.name, r.message)
			warnCount++
		case "error":
			fmt.Fprintf(w, "%s %s: %s\n", styleError.Render("✗"), r.name, r.message)
			errorCount++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d passed", okCount)
	if warnCount > 0 {
		fmt.Fprintf(w, ", %d warnings", warnCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(w, ", %d errors", errorCount)
	}
	fmt.Fprintln(w)
	return errorCount
}

func checkDataDir() []checkResult {
	dir, err := defaults.DataDir()
	if err != nil {
		return []checkResult{{"Data Directory", "error", err.Error()}}
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []checkResult{{"Data Directory", "warn", dir + " (created on first run)"}}
	}
	return []checkResult{{"Data Directory", "ok", dir}}
}

func checkDatabase(ctx context.Context, c *config.Config) []checkResult {
	path := c.Database.SQLitePath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return []checkResult{{"Database", "warn", path + " not found (created on first run)"}}
	}

	migrations.QuietMode = true
	store, err := db.NewSQLite(path)
	if err != nil {
		return []checkResult{{"Database", "error", err.Error()}}
	}
	defer store.Close()

	n, err := store.CountHistory(ctx)
	if err != nil {
		return []checkResult{{"Database", "error", err.Error()}}
	}
	version, err := migrations.Version(store.GetDB())
	if err != nil {
		return []checkResult{{"Database", "error", err.Error()}}
	}
	return []checkResult{{"Database", "ok", fmt.Sprintf("%s (schema v%d, %d history rows)", path, version, n)}}
}

func checkBrowser(c *config.Config) []checkResult {
	opts := browser.ResolveOptions(c.Browser)
	if _, err := browser.Lookup(opts.Driver); err != nil {
		msg := fmt.Sprintf("%v (available: %s)", err, strings.Join(browser.Drivers(), ", "))
		return []checkResult{{"Browser Driver", "error", msg}}
	}
	results := []checkResult{{"Browser Driver", "ok", fmt.Sprintf("%s (headless=%v, stealth=%v)", opts.Driver, opts.Headless, opts.Stealth)}}

	if opts.RemoteURL != "" {
		if browser.IsChromeReachable(opts.RemoteURL, 2*time.Second) {
			results = append(results, checkResult{"Remote Browser", "ok", opts.RemoteURL})
		} else {
			results = append(results, checkResult{"Remote Browser", "error", opts.RemoteURL + " is not responding"})
		}
		return results
	}

	exe, err := browser.FindChromeExecutable(opts.ExecutablePath)
	switch {
	case err != nil:
		results = append(results, checkResult{"Browser Executable", "error", err.Error()})
	case exe != nil:
		results = append(results, checkResult{"Browser Executable", "ok", fmt.Sprintf("%s (%s)", exe.Path, exe.Kind)})
	case opts.Driver == browser.DriverPlaywright:
		results = append(results, checkResult{"Browser Executable", "warn", "none found; Playwright downloads Chromium on first launch"})
	case opts.Driver == browser.DriverRod:
		results = append(results, checkResult{"Browser Executable", "warn", "none found; Rod downloads Chromium on first launch"})
	default:
		results = append(results, checkResult{"Browser Executable", "error", "no Chrome or Chromium found; set browser.executablePath or CHROME_PATH"})
	}
	return results
}

func checkAI(c *config.Config) []checkResult {
	name := c.AI.Provider
	switch {
	case name == "ollama":
		return []checkResult{{"AI Provider", "ok", "ollama (local, no key needed)"}}
	case c.AI.APIKey != "":
		return []checkResult{{"AI Provider", "ok", name + " (API key set)"}}
	case name == "openai" && c.AI.BaseURL != "":
		return []checkResult{{"AI Provider", "ok", "openai-compatible endpoint " + c.AI.BaseURL}}
	default:
		return []checkResult{{"AI Provider", "warn", name + " has no API key; /api/ai/command is disabled"}}
	}
}
