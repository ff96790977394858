package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/defaults"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/server"
	"github.com/neboloop/browserpilot/internal/svc"
)

// ServeCmd starts the HTTP server
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and web UI (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ServerConfig)
		},
	}
}

func runServe(ctx context.Context, c *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := defaults.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("failed to initialize data directory: %w", err)
	}

	// The persistent browser profile cannot be shared between processes.
	lockFile, err := acquireLock(dataDir)
	if err != nil {
		return fmt.Errorf("%w: BrowserPilot is already running for %s", err, dataDir)
	}
	defer releaseLock(lockFile)

	svcCtx, err := svc.NewServiceContext(*c)
	if err != nil {
		return err
	}
	defer svcCtx.Close()
	svcCtx.Version = Version

	if svcCtx.DB == nil {
		return fmt.Errorf("failed to initialize database at %s", c.Database.SQLitePath)
	}

	logging.Infof("BrowserPilot %s on http://%s (driver %s)", Version, c.Addr(), svcCtx.Browser.DriverName())
	return server.Run(ctx, svcCtx)
}
