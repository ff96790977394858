// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/neboloop/browserpilot/internal/browser"
)

// ErrNavigation is returned by Navigate when FailNavigation is set.
var ErrNavigation = errors.New("net::ERR_NAME_NOT_RESOLVED")

// Driver serves a fake page: Navigate sets the URL and a title of
// "Title of <url>", Screenshot returns the bytes "jpeg".
type Driver struct {
	mu sync.Mutex

	FailNavigation bool
	EvalResult     json.RawMessage
	Page           string // HTML returned by HTML

	calls    []string
	url      string
	title    string
	launched bool
	closed   bool
}

// Factory returns a browser.Factory that always hands out d.
func (d *Driver) Factory() browser.Factory {
	return func(browser.Options) (browser.Driver, error) {
		return d, nil
	}
}

// Calls returns the driver calls made so far.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Closed reports whether Close was called since the last Launch.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) call(name string) {
	d.mu.Lock()
	d.calls = append(d.calls, name)
	d.mu.Unlock()
}

func (d *Driver) Name() string { return "fake" }

func (d *Driver) Launch(ctx context.Context) error {
	d.call("launch")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.launched, d.closed = true, false
	d.url = "about:blank"
	d.title = ""
	return nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.call("navigate " + url)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailNavigation {
		return ErrNavigation
	}
	d.url = url
	d.title = "Title of " + url
	return nil
}

func (d *Driver) Click(ctx context.Context, selector string) error {
	d.call("click " + selector)
	return nil
}

func (d *Driver) ClickAt(ctx context.Context, x, y float64) error {
	d.call("clickAt")
	return nil
}

func (d *Driver) Type(ctx context.Context, selector, text string) error {
	d.call("type " + selector + " " + text)
	return nil
}

func (d *Driver) TypeKeys(ctx context.Context, text string) error {
	d.call("keys " + text)
	return nil
}

func (d *Driver) Scroll(ctx context.Context, dx, dy int) error {
	d.call("scroll")
	return nil
}

func (d *Driver) Back(ctx context.Context) error    { d.call("back"); return nil }
func (d *Driver) Forward(ctx context.Context) error { d.call("forward"); return nil }
func (d *Driver) Reload(ctx context.Context) error  { d.call("reload"); return nil }

func (d *Driver) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	d.call("evaluate")
	if d.EvalResult == nil {
		return json.RawMessage(`null`), nil
	}
	return d.EvalResult, nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("jpeg"), nil
}

func (d *Driver) HTML(ctx context.Context) (string, error) {
	if d.Page == "" {
		return "<html><body></body></html>", nil
	}
	return d.Page, nil
}

func (d *Driver) URL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) Title(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) Close() error {
	d.call("close")
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
