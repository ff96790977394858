package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/defaults"
	"github.com/neboloop/browserpilot/internal/logging"
)

// loadConfig layers the user config file and the command-line flags over c.
func loadConfig(cmd *cobra.Command, c *config.Config) error {
	if cfgFile != "" {
		if err := c.MergeFile(cfgFile); err != nil {
			return err
		}
	} else if dir, err := defaults.DataDir(); err == nil {
		if err := c.MergeFileIfExists(filepath.Join(dir, defaults.ConfigFile)); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		c.Server.Port = port
	}
	if flags.Changed("driver") {
		c.Browser.Driver = driver
	}
	if flags.Changed("headless") {
		c.Browser.Headless = headless
	}
	if c.Database.SQLitePath == "" {
		if dir, err := defaults.DataDir(); err == nil {
			c.Database.SQLitePath = filepath.Join(dir, "data", "browserpilot.db")
		}
	}
	c.ApplyDefaults()

	lvl := c.Log.Level
	if verbose {
		lvl = "debug"
	}
	logging.Setup(os.Stderr, c.Log.Format, lvl)
	return nil
}
