package svc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/neboloop/browserpilot/internal/ai"
	"github.com/neboloop/browserpilot/internal/browser"
	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/defaults"
	"github.com/neboloop/browserpilot/internal/digest"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/metrics"
)

// ErrNoDatabase is returned by handlers that need the store when it failed to open.
var ErrNoDatabase = errors.New("database is not available")

// ErrNoAssistant is returned by /api/ai/command when no provider is configured.
var ErrNoAssistant = errors.New("ai assistant is not configured")

type ServiceContext struct {
	Config  config.Config
	DataDir string // per-user data directory (config overlay, browser profile)
	Version string // build version, "dev" for local builds

	DB        *db.Store
	Browser   *browser.Manager
	Assistant *ai.Assistant // nil when the provider could not be built
	Metrics   *metrics.Metrics
}

// NewServiceContext wires the store, browser manager and assistant from c.
// An optional pre-opened store is used instead of opening one.
func NewServiceContext(c config.Config, database ...*db.Store) (*ServiceContext, error) {
	var db0 *db.Store
	if len(database) > 0 {
		db0 = database[0]
	}
	return newServiceContext(c, db0)
}

func newServiceContext(c config.Config, database *db.Store) (*ServiceContext, error) {
	dataDir, err := defaults.EnsureDataDir()
	if err != nil {
		logging.Errorf("Failed to ensure data directory: %v", err)
		dataDir, _ = defaults.DataDir()
	}

	svc := &ServiceContext{
		Config:  c,
		DataDir: dataDir,
		Version: "dev",
	}
	if c.IsMetricsEnabled() {
		svc.Metrics = metrics.New()
	}

	if database != nil {
		svc.DB = database
		logging.Info("Using shared database connection")
	} else {
		database, err = db.NewSQLite(c.Database.SQLitePath)
		if err != nil {
			logging.Errorf("Failed to initialize SQLite database: %v", err)
		} else {
			svc.DB = database
		}
	}

	bopts := []browser.Option{browser.WithObserver(svc.Metrics.ObserveAction)}
	if svc.DB != nil {
		bopts = append(bopts, browser.WithHistoryRecorder(&HistoryRecorder{Store: svc.DB, Metrics: svc.Metrics}))
	}
	svc.Browser, err = browser.NewManager(browser.ResolveOptions(c.Browser), bopts...)
	if err != nil {
		if svc.DB != nil {
			svc.DB.Close()
		}
		return nil, err
	}
	logging.Infof("Browser driver: %s", svc.Browser.DriverName())

	provider, err := ai.NewProvider(context.Background(), c.AI)
	if err != nil {
		logging.Warnf("AI assistant disabled: %v", err)
	} else {
		aopts := []ai.AssistantOption{
			ai.WithObserver(svc.Metrics.ObserveCompletion),
			ai.WithCacheSize(c.AI.CacheSize),
			ai.WithMaxTokens(c.AI.MaxTokens),
			ai.WithDigestOptions(digest.Options{
				TokenBudget: c.AI.PageTokenBudget,
				MaxElements: c.AI.MaxElements,
			}),
		}
		if svc.DB != nil {
			aopts = append(aopts, ai.WithMessageStore(svc.DB))
		}
		svc.Assistant = ai.NewAssistant(provider, aopts...)
		logging.Infof("AI assistant: %s (%s)", provider.ID(), provider.Model())
	}

	return svc, nil
}

// Close stops the browser and closes the database.
func (svc *ServiceContext) Close() {
	if svc.Browser != nil {
		if err := svc.Browser.Stop(); err != nil {
			logging.Warnf("Failed to stop browser: %v", err)
		}
	}
	if svc.Assistant != nil {
		if c, ok := svc.Assistant.Provider().(interface{ Close() error }); ok {
			c.Close()
		}
	}
	if svc.DB != nil {
		svc.DB.Close()
	}
}

// HistoryRecorder writes navigation rows for the browser manager.
type HistoryRecorder struct {
	Store   *db.Store
	Metrics *metrics.Metrics
}

func (h *HistoryRecorder) RecordVisit(ctx context.Context, url, title string) error {
	_, err := h.Store.AddToHistory(ctx, db.AddToHistoryParams{
		URL:       url,
		Title:     sql.NullString{String: title, Valid: title != ""},
		VisitTime: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	h.Metrics.HistoryRecorded()
	return nil
}
