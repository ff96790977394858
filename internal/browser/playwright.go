package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
)

var (
	// Playwright instance (singleton)
	pwOnce     sync.Once
	pwInstance *playwright.Playwright
	pwErr      error
)

// getPlaywright installs chromium if needed and starts the driver process once.
func getPlaywright() (*playwright.Playwright, error) {
	pwOnce.Do(func() {
		opts := &playwright.RunOptions{Browsers: []string{"chromium"}}
		if err := playwright.Install(opts); err != nil {
			pwErr = fmt.Errorf("failed to install playwright browsers: %w", err)
			return
		}

		pw, err := playwright.Run(opts)
		if err != nil {
			pwErr = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		pwInstance = pw
	})

	return pwInstance, pwErr
}

// playwrightDriver runs a persistent Chromium context, or attaches over CDP
// when RemoteURL is set.
type playwrightDriver struct {
	opts    Options
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func newPlaywrightDriver(opts Options) (Driver, error) {
	return &playwrightDriver{opts: opts}, nil
}

func (d *playwrightDriver) Name() string { return DriverPlaywright }

func (d *playwrightDriver) Launch(ctx context.Context) error {
	if d.page != nil {
		return nil
	}
	pw, err := getPlaywright()
	if err != nil {
		return err
	}

	if d.opts.RemoteURL != "" {
		err = d.connect(pw)
	} else {
		err = d.launchPersistent(pw)
	}
	if err != nil {
		return err
	}

	if d.opts.Stealth {
		if err := d.context.AddInitScript(playwright.Script{Content: playwright.String(StealthScript)}); err != nil {
			d.Close()
			return fmt.Errorf("add init script: %w", err)
		}
	}

	if pages := d.context.Pages(); len(pages) > 0 {
		d.page = pages[0]
	} else {
		page, err := d.context.NewPage()
		if err != nil {
			d.Close()
			return fmt.Errorf("new page: %w", err)
		}
		d.page = page
	}
	d.page.SetDefaultTimeout(float64(d.opts.ActionTimeout.Milliseconds()))
	return nil
}

func (d *playwrightDriver) launchPersistent(pw *playwright.Playwright) error {
	if err := os.MkdirAll(d.opts.UserDataDir, 0755); err != nil {
		return fmt.Errorf("failed to create user data dir: %w", err)
	}

	launch := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:   playwright.Bool(d.opts.Headless),
		Viewport:   &playwright.Size{Width: d.opts.Viewport.Width, Height: d.opts.Viewport.Height},
		Locale:     playwright.String(d.opts.Locale),
		TimezoneId: playwright.String(d.opts.Timezone),
		UserAgent:  playwright.String(d.opts.UserAgent),
	}
	if d.opts.ExecutablePath != "" {
		launch.ExecutablePath = playwright.String(d.opts.ExecutablePath)
	}
	if d.opts.Stealth {
		launch.Args = StealthArgs
		launch.IgnoreHttpsErrors = playwright.Bool(true)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(d.opts.UserDataDir, launch)
	if err != nil {
		return fmt.Errorf("launch persistent context: %w", err)
	}
	d.context = bctx
	return nil
}

func (d *playwrightDriver) connect(pw *playwright.Playwright) error {
	b, err := pw.Chromium.ConnectOverCDP(d.opts.RemoteURL)
	if err != nil {
		return fmt.Errorf("failed to connect to CDP at %s: %w", d.opts.RemoteURL, err)
	}
	d.browser = b
	if contexts := b.Contexts(); len(contexts) > 0 {
		d.context = contexts[0]
		return nil
	}
	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: d.opts.Viewport.Width, Height: d.opts.Viewport.Height},
		Locale:            playwright.String(d.opts.Locale),
		TimezoneId:        playwright.String(d.opts.Timezone),
		UserAgent:         playwright.String(d.opts.UserAgent),
		IgnoreHttpsErrors: playwright.Bool(d.opts.Stealth),
	})
	if err != nil {
		_ = b.Close()
		return fmt.Errorf("new context: %w", err)
	}
	d.context = bctx
	return nil
}

func (d *playwrightDriver) timeout(ctx context.Context) *float64 {
	return playwright.Float(float64(remaining(ctx, d.opts.ActionTimeout).Milliseconds()))
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   d.timeout(ctx),
	})
	return err
}

func (d *playwrightDriver) Click(ctx context.Context, selector string) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	return d.page.Locator(selector).Click(playwright.LocatorClickOptions{Timeout: d.timeout(ctx)})
}

func (d *playwrightDriver) ClickAt(ctx context.Context, x, y float64) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	return d.page.Mouse().Click(x, y)
}

func (d *playwrightDriver) Type(ctx context.Context, selector, text string) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	locator := d.page.Locator(selector)
	if err := locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(TypeClickTimeout.Milliseconds())),
	}); err != nil {
		return err
	}
	return locator.Type(text, playwright.LocatorTypeOptions{
		Delay:   playwright.Float(float64(KeyDelay.Milliseconds())),
		Timeout: d.timeout(ctx),
	})
}

func (d *playwrightDriver) TypeKeys(ctx context.Context, text string) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	return d.page.Keyboard().Type(text, playwright.KeyboardTypeOptions{
		Delay: playwright.Float(float64(KeyDelay.Milliseconds())),
	})
}

func (d *playwrightDriver) Scroll(ctx context.Context, dx, dy int) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	_, err := d.page.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d)", dx, dy))
	return err
}

func (d *playwrightDriver) Back(ctx context.Context) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	_, err := d.page.GoBack(playwright.PageGoBackOptions{Timeout: d.timeout(ctx)})
	return err
}

func (d *playwrightDriver) Forward(ctx context.Context) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	_, err := d.page.GoForward(playwright.PageGoForwardOptions{Timeout: d.timeout(ctx)})
	return err
}

func (d *playwrightDriver) Reload(ctx context.Context) error {
	if d.page == nil {
		return ErrNotLaunched
	}
	_, err := d.page.Reload(playwright.PageReloadOptions{Timeout: d.timeout(ctx)})
	return err
}

func (d *playwrightDriver) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	if d.page == nil {
		return nil, ErrNotLaunched
	}
	result, err := d.page.Evaluate(script)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (d *playwrightDriver) Screenshot(ctx context.Context) ([]byte, error) {
	if d.page == nil {
		return nil, ErrNotLaunched
	}
	return d.page.Screenshot(playwright.PageScreenshotOptions{
		Type:    playwright.ScreenshotTypeJpeg,
		Quality: playwright.Int(d.opts.ScreenshotQuality),
		Timeout: d.timeout(ctx),
	})
}

func (d *playwrightDriver) HTML(ctx context.Context) (string, error) {
	if d.page == nil {
		return "", ErrNotLaunched
	}
	return d.page.Content()
}

func (d *playwrightDriver) URL(ctx context.Context) (string, error) {
	if d.page == nil {
		return "", ErrNotLaunched
	}
	return d.page.URL(), nil
}

func (d *playwrightDriver) Title(ctx context.Context) (string, error) {
	if d.page == nil {
		return "", ErrNotLaunched
	}
	return d.page.Title()
}

// Close closes the context. An attached remote browser is disconnected, not
// shut down; the shared playwright process is left running for the next launch.
func (d *playwrightDriver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	} else if d.context != nil {
		err = d.context.Close()
	}
	d.page = nil
	d.context = nil
	d.browser = nil
	return err
}
