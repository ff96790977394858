package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/neboloop/browserpilot/internal/logging"
)

// HistoryRecorder persists one row per successful navigation.
type HistoryRecorder interface {
	RecordVisit(ctx context.Context, url, title string) error
}

// Observer is told about every dispatched action.
type Observer func(driver, action string, elapsed time.Duration, err error)

// Manager owns the single shared driver. Every driver call holds mu, so
// concurrent requests run one after another against the page.
type Manager struct {
	mu sync.Mutex

	opts     Options
	factory  Factory
	driver   Driver
	recorder HistoryRecorder
	observer Observer
	audit    *auditLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDriverFactory overrides the factory looked up from Options.Driver.
func WithDriverFactory(f Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithHistoryRecorder records navigations.
func WithHistoryRecorder(r HistoryRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithObserver receives per-action timings.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// NewManager returns a Manager for opts. The browser is not started until
// the first Launch or Do.
func NewManager(opts Options, options ...Option) (*Manager, error) {
	m := &Manager{
		opts:  opts,
		audit: newAuditLogger(),
	}
	for _, o := range options {
		o(m)
	}
	if m.factory == nil {
		f, err := Lookup(opts.Driver)
		if err != nil {
			return nil, err
		}
		m.factory = f
	}
	if opts.RemoteURL != "" && !isLoopbackURL(opts.RemoteURL) {
		logging.Warnf("browser remote URL %s is not loopback; page traffic leaves this host", opts.RemoteURL)
	}
	return m, nil
}

// DriverName returns the configured driver.
func (m *Manager) DriverName() string {
	return m.opts.Driver
}

// Options returns the resolved launch options.
func (m *Manager) Options() Options {
	return m.opts
}

// IsLaunched reports whether a driver is currently running.
func (m *Manager) IsLaunched() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.driver != nil
}

// Launch starts the browser if it is not already running.
func (m *Manager) Launch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.launchLocked(ctx)
}

func (m *Manager) launchLocked(ctx context.Context) error {
	if m.driver != nil {
		return nil
	}
	d, err := m.factory(m.opts)
	if err != nil {
		return fmt.Errorf("create %s driver: %w", m.opts.Driver, err)
	}
	if err := d.Launch(ctx); err != nil {
		_ = d.Close()
		return fmt.Errorf("launch %s: %w", m.opts.Driver, err)
	}
	m.driver = d
	logging.Infof("Browser launched (driver=%s headless=%v stealth=%v)", m.opts.Driver, m.opts.Headless, m.opts.Stealth)
	return nil
}

// Do launches the browser if needed, runs a, and returns the resulting
// page state with a screenshot.
func (m *Manager) Do(ctx context.Context, a Action) (*State, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.launchLocked(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.opts.ActionTimeout)
	defer cancel()

	start := time.Now()
	result, err := m.dispatch(ctx, a)
	elapsed := time.Since(start)
	m.audit.logAction(m.opts.Driver, a, elapsed, err)
	if m.observer != nil {
		m.observer(m.opts.Driver, a.Name, elapsed, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.Name, err)
	}

	state, err := m.stateLocked(ctx, true, false)
	if err != nil {
		return nil, err
	}
	state.Result = result
	return state, nil
}

func (m *Manager) dispatch(ctx context.Context, a Action) (json.RawMessage, error) {
	d := m.driver
	switch a.Name {
	case ActionNavigate:
		if a.URL == "" {
			return nil, nil
		}
		if err := d.Navigate(ctx, a.URL); err != nil {
			return nil, err
		}
		return nil, m.record(ctx, a.URL)
	case ActionClick:
		if a.Selector != "" {
			return nil, d.Click(ctx, a.Selector)
		}
		if a.X != nil && a.Y != nil {
			return nil, d.ClickAt(ctx, *a.X, *a.Y)
		}
		return nil, nil
	case ActionType:
		if a.Selector != "" && a.Text != "" {
			return nil, d.Type(ctx, a.Selector, a.Text)
		}
		if a.Text != "" {
			return nil, d.TypeKeys(ctx, a.Text)
		}
		return nil, nil
	case ActionScroll:
		return nil, d.Scroll(ctx, 0, ScrollStep)
	case ActionBack:
		return nil, d.Back(ctx)
	case ActionForward:
		return nil, d.Forward(ctx)
	case ActionReload:
		return nil, d.Reload(ctx)
	case ActionEvaluate:
		return d.Evaluate(ctx, a.Script)
	case ActionScreenshot:
		// The returned state always carries a screenshot.
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, a.Name)
	}
}

// record stores the visit under the page title the browser settled on.
func (m *Manager) record(ctx context.Context, url string) error {
	if m.recorder == nil {
		return nil
	}
	title, err := m.driver.Title(ctx)
	if err != nil {
		return fmt.Errorf("read title: %w", err)
	}
	if err := m.recorder.RecordVisit(ctx, url, title); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// Status returns the current page with a screenshot, or an empty state
// when the browser has not been launched.
func (m *Manager) Status(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.driver == nil {
		return &State{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.ActionTimeout)
	defer cancel()
	return m.stateLocked(ctx, true, false)
}

// Snapshot is Status plus the page HTML, without a screenshot.
func (m *Manager) Snapshot(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.driver == nil {
		return &State{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.ActionTimeout)
	defer cancel()
	return m.stateLocked(ctx, false, true)
}

func (m *Manager) stateLocked(ctx context.Context, screenshot, html bool) (*State, error) {
	d := m.driver
	url, err := d.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("read url: %w", err)
	}
	title, err := d.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}
	state := &State{URL: url, Title: title}
	if screenshot {
		buf, err := d.Screenshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("screenshot: %w", err)
		}
		state.Screenshot = base64.StdEncoding.EncodeToString(buf)
	}
	if html {
		if state.HTML, err = d.HTML(ctx); err != nil {
			return nil, fmt.Errorf("read html: %w", err)
		}
	}
	return state, nil
}

// Stop closes the browser. The next Launch or Do starts a fresh one.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.driver == nil {
		return nil
	}
	err := m.driver.Close()
	m.driver = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", m.opts.Driver, err)
	}
	logging.Info("Browser stopped")
	return nil
}
