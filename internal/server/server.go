package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/neboloop/browserpilot/app"
	"github.com/neboloop/browserpilot/internal/handler"
	aihandler "github.com/neboloop/browserpilot/internal/handler/ai"
	browserhandler "github.com/neboloop/browserpilot/internal/handler/browser"
	historyhandler "github.com/neboloop/browserpilot/internal/handler/history"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/mcp"
	"github.com/neboloop/browserpilot/internal/middleware"
	"github.com/neboloop/browserpilot/internal/svc"
)

const shutdownTimeout = 30 * time.Second

// ServerOptions holds optional settings for Run.
type ServerOptions struct {
	Quiet bool // Suppress access logs and startup messages
	// Listener overrides the configured address, for tests.
	Listener net.Listener
}

// Run serves svcCtx until ctx is cancelled, then shuts down gracefully and
// stops the browser.
func Run(ctx context.Context, svcCtx *svc.ServiceContext, opts ...ServerOptions) error {
	var o ServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	quiet := o.Quiet || svcCtx.Config.IsQuiet()

	ln := o.Listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", svcCtx.Config.Addr())
		if err != nil {
			return fmt.Errorf("listen on %s: %w", svcCtx.Config.Addr(), err)
		}
	}

	// ReadTimeout/WriteTimeout are omitted: they would cut off the websocket stream.
	httpServer := &http.Server{
		Handler:           NewRouter(svcCtx, quiet),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if !quiet {
		logging.Infof("Server ready at http://%s", ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if !quiet {
			logging.Info("Shutting down server gracefully...")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		if stopErr := svcCtx.Browser.Stop(); stopErr != nil {
			logging.Warnf("Failed to stop browser: %v", stopErr)
		}
		return err
	})
	return g.Wait()
}

// NewRouter builds the HTTP routes.
func NewRouter(svcCtx *svc.ServiceContext, quiet bool) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if !quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.CORS(svcCtx.Config.Origins()))
	if svcCtx.Metrics != nil {
		r.Use(svcCtx.Metrics.Middleware)
	}

	r.Get("/health", handler.HealthCheckHandler(svcCtx))
	if svcCtx.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svcCtx.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/browser/launch", browserhandler.LaunchBrowserHandler(svcCtx))
		r.Post("/browser/action", browserhandler.BrowserActionHandler(svcCtx))
		r.Get("/browser/status", browserhandler.StatusBrowserHandler(svcCtx))
		r.Post("/browser/stop", browserhandler.StopBrowserHandler(svcCtx))
		r.Get("/browser/stream", browserhandler.BrowserStreamHandler(svcCtx))

		r.Post("/ai/command", aihandler.CommandHandler(svcCtx))
		r.Get("/ai/messages", aihandler.ListMessagesHandler(svcCtx))

		r.Get("/history", historyhandler.ListHistoryHandler(svcCtx))
	})

	if svcCtx.Config.IsMCPEnabled() {
		mcpHandler := mcp.NewHandler(svcCtx)
		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	}

	// SPA fallback - serve the UI for all other routes
	spaFS, err := app.FileSystem()
	if err != nil {
		logging.Warnf("Could not load embedded UI: %v", err)
	} else {
		r.NotFound(app.SPAHandler(spaFS).ServeHTTP)
	}
	return r
}
