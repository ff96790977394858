package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// rodDriver launches Chromium through rod's launcher and opens a
// go-rod/stealth page when stealth is on.
type rodDriver struct {
	opts     Options
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func newRodDriver(opts Options) (Driver, error) {
	return &rodDriver{opts: opts}, nil
}

func (d *rodDriver) Name() string { return DriverRod }

func (d *rodDriver) Launch(ctx context.Context) error {
	if d.page != nil {
		return nil
	}

	controlURL := d.opts.RemoteURL
	if controlURL == "" {
		if err := os.MkdirAll(d.opts.UserDataDir, 0755); err != nil {
			return fmt.Errorf("failed to create user data dir: %w", err)
		}
		l := launcher.New().
			Headless(d.opts.Headless).
			UserDataDir(d.opts.UserDataDir).
			Set("window-size", fmt.Sprintf("%d,%d", d.opts.Viewport.Width, d.opts.Viewport.Height))
		if exe, err := FindChromeExecutable(d.opts.ExecutablePath); err == nil && exe != nil {
			l = l.Bin(exe.Path)
		}
		if d.opts.Stealth {
			l = l.NoSandbox(true).
				Set("disable-setuid-sandbox").
				Set("disable-dev-shm-usage").
				Set("disable-blink-features", "AutomationControlled").
				Set("disable-infobars").
				Set("window-position", "0,0").
				Set("ignore-certificate-errors")
		}
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		d.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		d.Close()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	d.browser = b

	var (
		page *rod.Page
		err  error
	)
	if d.opts.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		d.Close()
		return fmt.Errorf("new page: %w", err)
	}

	if err := d.emulate(page); err != nil {
		d.Close()
		return err
	}
	d.page = page
	return nil
}

func (d *rodDriver) emulate(page *rod.Page) error {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             d.opts.Viewport.Width,
		Height:            d.opts.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      d.opts.UserAgent,
		AcceptLanguage: d.opts.Locale,
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: d.opts.Timezone}).Call(page); err != nil {
		return fmt.Errorf("set timezone: %w", err)
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: d.opts.Locale}).Call(page); err != nil {
		return fmt.Errorf("set locale: %w", err)
	}
	if d.opts.Stealth {
		if _, err := page.EvalOnNewDocument(StealthScript); err != nil {
			return fmt.Errorf("add init script: %w", err)
		}
	}
	return nil
}

// p binds the page to ctx and the action timeout.
func (d *rodDriver) p(ctx context.Context) (*rod.Page, error) {
	if d.page == nil {
		return nil, ErrNotLaunched
	}
	return d.page.Context(ctx).Timeout(remaining(ctx, d.opts.ActionTimeout)), nil
}

func (d *rodDriver) Navigate(ctx context.Context, url string) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	return nil
}

func (d *rodDriver) Click(ctx context.Context, selector string) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *rodDriver) ClickAt(ctx context.Context, x, y float64) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	if err := page.Mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
		return err
	}
	return page.Mouse.Click(proto.InputMouseButtonLeft, 1)
}

func (d *rodDriver) Type(ctx context.Context, selector, text string) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	el, err := page.Timeout(TypeClickTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	return insertSlowly(ctx, page, text)
}

func (d *rodDriver) TypeKeys(ctx context.Context, text string) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	return insertSlowly(ctx, page, text)
}

// insertSlowly types one character at a time with KeyDelay between them.
func insertSlowly(ctx context.Context, page *rod.Page, text string) error {
	for _, r := range text {
		if err := page.InsertText(string(r)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(KeyDelay):
		}
	}
	return nil
}

func (d *rodDriver) Scroll(ctx context.Context, dx, dy int) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	_, err = page.Eval(fmt.Sprintf(`() => window.scrollBy(%d, %d)`, dx, dy))
	return err
}

func (d *rodDriver) Back(ctx context.Context) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	return page.NavigateBack()
}

func (d *rodDriver) Forward(ctx context.Context) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	return page.NavigateForward()
}

func (d *rodDriver) Reload(ctx context.Context) error {
	page, err := d.p(ctx)
	if err != nil {
		return err
	}
	return page.Reload()
}

func (d *rodDriver) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	page, err := d.p(ctx)
	if err != nil {
		return nil, err
	}
	res, err := page.Eval(script)
	if err != nil {
		return nil, err
	}
	return res.Value.MarshalJSON()
}

func (d *rodDriver) Screenshot(ctx context.Context) ([]byte, error) {
	page, err := d.p(ctx)
	if err != nil {
		return nil, err
	}
	return page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(d.opts.ScreenshotQuality),
	})
}

func (d *rodDriver) HTML(ctx context.Context) (string, error) {
	page, err := d.p(ctx)
	if err != nil {
		return "", err
	}
	return page.HTML()
}

func (d *rodDriver) URL(ctx context.Context) (string, error) {
	page, err := d.p(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *rodDriver) Title(ctx context.Context) (string, error) {
	page, err := d.p(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// Close kills the browser if this driver launched it. On a remote browser
// only the page opened by Launch is closed.
func (d *rodDriver) Close() error {
	var err error
	switch {
	case d.launcher != nil:
		if d.browser != nil {
			err = d.browser.Close()
		}
		d.launcher.Kill()
	case d.page != nil:
		err = d.page.Close()
	}
	d.page = nil
	d.browser = nil
	d.launcher = nil
	return err
}
