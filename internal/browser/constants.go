// Package browser drives a single shared Chromium page through one of
// several automation backends and records navigation history.
package browser

import "time"

// Driver names accepted by browser.driver.
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverRod        = "rod"
)

// Action names.
const (
	ActionNavigate   = "navigate"
	ActionClick      = "click"
	ActionType       = "type"
	ActionScroll     = "scroll"
	ActionScreenshot = "screenshot"
	ActionBack       = "back"
	ActionForward    = "forward"
	ActionReload     = "reload"
	ActionEvaluate   = "evaluate"
)

// Launch and interaction defaults.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultLocale         = "en-US"
	DefaultTimezone       = "America/Los_Angeles"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultScreenshotQuality = 80
	DefaultActionTimeout     = 30 * time.Second

	// ScrollStep is how far a scroll action moves the window vertically.
	ScrollStep = 500

	KeyDelay          = 25 * time.Millisecond
	TypeClickTimeout  = 5 * time.Second
	chromeStopTimeout = 5 * time.Second
)

// StealthArgs are passed to Chromium to hide common automation signals.
var StealthArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-blink-features=AutomationControlled",
	"--disable-infobars",
	"--window-position=0,0",
	"--ignore-certificate-errors",
}

// StealthScript runs before any page script on every new document.
const StealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => false });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });`
