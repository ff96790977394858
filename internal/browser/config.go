package browser

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/defaults"
)

// Viewport is the page size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// Options are the fully resolved launch options handed to a Driver.
type Options struct {
	Driver         string
	ExecutablePath string
	UserDataDir    string
	// RemoteURL attaches to an already running Chromium over CDP instead of launching one.
	RemoteURL string
	Headless  bool
	Stealth   bool
	Viewport  Viewport
	Locale    string
	Timezone  string
	UserAgent string

	ActionTimeout     time.Duration
	ScreenshotQuality int
}

// DefaultOptions returns headless stealth options for the playwright driver.
func DefaultOptions() Options {
	return Options{
		Driver:            DriverPlaywright,
		Headless:          true,
		Stealth:           true,
		Viewport:          Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		Locale:            DefaultLocale,
		Timezone:          DefaultTimezone,
		UserAgent:         DefaultUserAgent,
		ActionTimeout:     DefaultActionTimeout,
		ScreenshotQuality: DefaultScreenshotQuality,
	}
}

// ResolveOptions applies config over the defaults, then falls back to the
// PLAYWRIGHT_* and CHROME_PATH environment variables.
func ResolveOptions(cfg config.Browser) Options {
	o := DefaultOptions()
	if cfg.Driver != "" {
		o.Driver = strings.ToLower(cfg.Driver)
	}
	o.Headless = cfg.IsHeadless()
	if v := os.Getenv("PLAYWRIGHT_HEADLESS"); cfg.Headless == "" && v == "false" {
		o.Headless = false
	}
	o.Stealth = cfg.IsStealth()
	o.RemoteURL = cfg.RemoteURL

	o.ExecutablePath = cfg.ExecutablePath
	if o.ExecutablePath == "" {
		o.ExecutablePath = executableFromEnv()
	}
	o.UserDataDir = cfg.UserDataDir
	if o.UserDataDir == "" {
		o.UserDataDir = os.Getenv("PLAYWRIGHT_USER_DATA_DIR")
	}
	if o.UserDataDir == "" {
		o.UserDataDir = defaultUserDataDir()
	}

	if cfg.ViewportWidth > 0 {
		o.Viewport.Width = cfg.ViewportWidth
	}
	if cfg.ViewportHeight > 0 {
		o.Viewport.Height = cfg.ViewportHeight
	}
	if cfg.Locale != "" {
		o.Locale = cfg.Locale
	}
	if cfg.Timezone != "" {
		o.Timezone = cfg.Timezone
	}
	if cfg.UserAgent != "" {
		o.UserAgent = cfg.UserAgent
	}
	if cfg.ActionTimeoutSeconds > 0 {
		o.ActionTimeout = time.Duration(cfg.ActionTimeoutSeconds) * time.Second
	}
	if cfg.ScreenshotQuality > 0 && cfg.ScreenshotQuality <= 100 {
		o.ScreenshotQuality = cfg.ScreenshotQuality
	}
	return o
}

// executableFromEnv returns the first env-provided browser path that exists.
func executableFromEnv() string {
	for _, key := range []string{"PLAYWRIGHT_EXECUTABLE_PATH", "CHROME_PATH"} {
		if p := os.Getenv(key); p != "" && fileExists(p) {
			return p
		}
	}
	return ""
}

func defaultUserDataDir() string {
	dir, err := defaults.DataDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "browserpilot", "browser", "profile")
	}
	return filepath.Join(dir, "browser", "profile")
}

func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}
