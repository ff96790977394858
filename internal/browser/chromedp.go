package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromedpDriver talks CDP directly through chromedp.
type chromedpDriver struct {
	opts Options

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func newChromedpDriver(opts Options) (Driver, error) {
	return &chromedpDriver{opts: opts}, nil
}

func (d *chromedpDriver) Name() string { return DriverChromedp }

func (d *chromedpDriver) allocatorOptions() ([]chromedp.ExecAllocatorOption, error) {
	if err := os.MkdirAll(d.opts.UserDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.opts.Headless),
		chromedp.UserDataDir(d.opts.UserDataDir),
		chromedp.WindowSize(d.opts.Viewport.Width, d.opts.Viewport.Height),
		chromedp.UserAgent(d.opts.UserAgent),
	)
	if exe, err := FindChromeExecutable(d.opts.ExecutablePath); err == nil && exe != nil {
		opts = append(opts, chromedp.ExecPath(exe.Path))
	}
	if d.opts.Stealth {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("window-position", "0,0"),
			chromedp.Flag("ignore-certificate-errors", true),
		)
	}
	return opts, nil
}

func (d *chromedpDriver) Launch(ctx context.Context) error {
	if d.browserCtx != nil {
		return nil
	}

	var allocCtx context.Context
	if d.opts.RemoteURL != "" {
		allocCtx, d.allocCancel = chromedp.NewRemoteAllocator(context.Background(), d.opts.RemoteURL)
	} else {
		opts, err := d.allocatorOptions()
		if err != nil {
			return err
		}
		allocCtx, d.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	d.browserCtx, d.browserCancel = chromedp.NewContext(allocCtx)

	// The first Run starts the browser and must use the browser context itself,
	// or the browser dies with the per-call timeout.
	if err := chromedp.Run(d.browserCtx); err != nil {
		d.Close()
		return fmt.Errorf("launch chromedp: %w", err)
	}
	if err := d.run(ctx, d.emulate()...); err != nil {
		d.Close()
		return fmt.Errorf("launch chromedp: %w", err)
	}
	return nil
}

func (d *chromedpDriver) emulate() []chromedp.Action {
	actions := []chromedp.Action{
		emulation.SetDeviceMetricsOverride(int64(d.opts.Viewport.Width), int64(d.opts.Viewport.Height), 1, false),
		emulation.SetUserAgentOverride(d.opts.UserAgent).WithAcceptLanguage(d.opts.Locale),
		emulation.SetLocaleOverride().WithLocale(d.opts.Locale),
		emulation.SetTimezoneOverride(d.opts.Timezone),
	}
	if d.opts.Stealth {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(StealthScript).Do(ctx)
			return err
		}))
	}
	return actions
}

// run executes actions on the browser context, bounded by ctx's deadline
// and cancelled along with ctx.
func (d *chromedpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	if d.browserCtx == nil {
		return ErrNotLaunched
	}
	runCtx, cancel := context.WithTimeout(d.browserCtx, remaining(ctx, d.opts.ActionTimeout))
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate waits for the load event; chromedp does not expose DOMContentLoaded alone.
func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *chromedpDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (d *chromedpDriver) ClickAt(ctx context.Context, x, y float64) error {
	return d.run(ctx, chromedp.MouseClickXY(x, y))
}

func (d *chromedpDriver) Type(ctx context.Context, selector, text string) error {
	clickCtx, cancel := context.WithTimeout(ctx, TypeClickTimeout)
	err := d.run(clickCtx, chromedp.Click(selector, chromedp.ByQuery))
	cancel()
	if err != nil {
		return err
	}
	return d.TypeKeys(ctx, text)
}

func (d *chromedpDriver) TypeKeys(ctx context.Context, text string) error {
	var actions []chromedp.Action
	for _, r := range text {
		actions = append(actions, chromedp.KeyEvent(string(r)), chromedp.Sleep(KeyDelay))
	}
	return d.run(ctx, actions...)
}

func (d *chromedpDriver) Scroll(ctx context.Context, dx, dy int) error {
	return d.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy), nil))
}

func (d *chromedpDriver) Back(ctx context.Context) error {
	return d.run(ctx, chromedp.NavigateBack())
}

func (d *chromedpDriver) Forward(ctx context.Context) error {
	return d.run(ctx, chromedp.NavigateForward())
}

func (d *chromedpDriver) Reload(ctx context.Context) error {
	return d.run(ctx, chromedp.Reload())
}

func (d *chromedpDriver) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	var raw []byte
	if err := d.run(ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	return raw, nil
}

func (d *chromedpDriver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatJpeg).
			WithQuality(int64(d.opts.ScreenshotQuality)).
			Do(ctx)
		return err
	}))
	return buf, err
}

func (d *chromedpDriver) HTML(ctx context.Context) (string, error) {
	var html string
	err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (d *chromedpDriver) URL(ctx context.Context) (string, error) {
	var url string
	err := d.run(ctx, chromedp.Location(&url))
	return url, err
}

func (d *chromedpDriver) Title(ctx context.Context) (string, error) {
	var title string
	err := d.run(ctx, chromedp.Title(&title))
	return title, err
}

// Close cancels the browser context, which shuts down a launched Chromium
// or detaches from a remote one.
func (d *chromedpDriver) Close() error {
	var err error
	if d.browserCtx != nil {
		done := make(chan error, 1)
		go func(ctx context.Context) {
			done <- chromedp.Cancel(ctx)
		}(d.browserCtx)
		select {
		case err = <-done:
		case <-time.After(chromeStopTimeout):
		}
		d.browserCancel()
	}
	if d.allocCancel != nil {
		d.allocCancel()
	}
	d.browserCtx = nil
	d.browserCancel = nil
	d.allocCancel = nil
	return err
}
