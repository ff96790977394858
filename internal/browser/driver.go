package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNotLaunched is returned by driver calls made before Launch or after Close.
	ErrNotLaunched = errors.New("browser not launched")
	// ErrInvalidAction is returned for an action the dispatcher cannot run.
	ErrInvalidAction = errors.New("invalid browser action")
	// ErrScriptRequired is the ErrInvalidAction for an evaluate with no script.
	ErrScriptRequired = fmt.Errorf("%w: evaluate requires script", ErrInvalidAction)
	// ErrUnknownDriver is returned when browser.driver names no registered backend.
	ErrUnknownDriver = errors.New("unknown browser driver")
)

// Driver is one browser automation backend holding a single page.
type Driver interface {
	Name() string
	Launch(ctx context.Context) error
	// Navigate loads url and returns once DOMContentLoaded has fired.
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) error
	ClickAt(ctx context.Context, x, y float64) error
	// Type focuses selector with a click, then types text key by key.
	Type(ctx context.Context, selector, text string) error
	// TypeKeys types text into whatever element has focus.
	TypeKeys(ctx context.Context, text string) error
	Scroll(ctx context.Context, dx, dy int) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Reload(ctx context.Context) error
	// Evaluate runs script in the page and returns its JSON-encoded result.
	Evaluate(ctx context.Context, script string) (json.RawMessage, error)
	// Screenshot captures the viewport as JPEG.
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Close() error
}

// Factory builds an unlaunched Driver.
type Factory func(Options) (Driver, error)

var factories = map[string]Factory{
	DriverPlaywright: newPlaywrightDriver,
	DriverChromedp:   newChromedpDriver,
	DriverRod:        newRodDriver,
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return f, nil
}

// Drivers lists registered driver names.
func Drivers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Action is one request to act on the page.
// X and Y are pointers so a click at 0,0 differs from no coordinates.
type Action struct {
	Name     string
	URL      string
	Selector string
	Text     string
	X        *float64
	Y        *float64
	Script   string
}

// State is a snapshot of the page after an action.
type State struct {
	URL        string
	Title      string
	Screenshot string // base64 JPEG
	HTML       string
	IsLoading  bool
	Result     json.RawMessage
}

// Validate checks the action name and the fields it requires.
func (a Action) Validate() error {
	switch a.Name {
	case ActionNavigate, ActionClick, ActionType, ActionScroll, ActionScreenshot,
		ActionBack, ActionForward, ActionReload:
		return nil
	case ActionEvaluate:
		if a.Script == "" {
			return ErrScriptRequired
		}
		return nil
	case "":
		return fmt.Errorf("%w: action is required", ErrInvalidAction)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, a.Name)
	}
}

// remaining returns the time left before ctx expires, or fallback when ctx has no deadline.
func remaining(ctx context.Context, fallback time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return fallback
}
