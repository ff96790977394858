// Package svctest builds a ServiceContext backed by an in-memory database,
// a fake browser driver and a scripted model.
package svctest

import (
	"context"
	"sync"
	"testing"

	"github.com/neboloop/browserpilot/internal/ai"
	"github.com/neboloop/browserpilot/internal/browser"
	"github.com/neboloop/browserpilot/internal/browser/browsertest"
	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/db/migrations"
	"github.com/neboloop/browserpilot/internal/metrics"
	"github.com/neboloop/browserpilot/internal/svc"
)

// Provider replies with Reply, or fails with Err.
type Provider struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []string
}

func (p *Provider) ID() string    { return "fake" }
func (p *Provider) Model() string { return "fake-1" }

func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prompts = append(p.Prompts, req.Prompt)
	return p.Reply, p.Err
}

// Env is a test service context plus its fakes.
type Env struct {
	Svc      *svc.ServiceContext
	Driver   *browsertest.Driver
	Provider *Provider
}

// New returns an Env. Pass noAssistant to leave svc.Assistant nil.
func New(t testing.TB, noAssistant ...bool) *Env {
	t.Helper()
	migrations.QuietMode = true

	store, err := db.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var c config.Config
	c.ApplyDefaults()
	m := metrics.New()

	drv := &browsertest.Driver{}
	opts := browser.DefaultOptions()
	opts.Driver = "fake"
	mgr, err := browser.NewManager(opts,
		browser.WithDriverFactory(drv.Factory()),
		browser.WithHistoryRecorder(&svc.HistoryRecorder{Store: store, Metrics: m}),
		browser.WithObserver(m.ObserveAction),
	)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	env := &Env{
		Svc: &svc.ServiceContext{
			Config:  c,
			Version: "test",
			DB:      store,
			Browser: mgr,
			Metrics: m,
		},
		Driver:   drv,
		Provider: &Provider{Reply: `{"message":"ok"}`},
	}
	if len(noAssistant) == 0 || !noAssistant[0] {
		env.Svc.Assistant = ai.NewAssistant(env.Provider,
			ai.WithMessageStore(store),
			ai.WithObserver(m.ObserveCompletion),
			ai.WithCacheSize(-1),
		)
	}
	t.Cleanup(env.Svc.Close)
	return env
}
