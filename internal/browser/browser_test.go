package browser

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeDriver records calls and serves a fixed page.
type fakeDriver struct {
	mu       sync.Mutex
	calls    []string
	url      string
	title    string
	failNav  bool
	launched bool
	closed   bool
	inFlight int
	overlap  bool
}

func (f *fakeDriver) enter(name string) func() {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.inFlight++
	if f.inFlight > 1 {
		f.overlap = true
	}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}
}

func (f *fakeDriver) Name() string { return "fake" }

func (f *fakeDriver) Launch(ctx context.Context) error {
	defer f.enter("launch")()
	f.launched = true
	f.url = "about:blank"
	return nil
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	defer f.enter("navigate " + url)()
	time.Sleep(time.Millisecond)
	if f.failNav {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	f.url = url
	f.title = "Title of " + url
	return nil
}

func (f *fakeDriver) Click(ctx context.Context, selector string) error {
	defer f.enter("click " + selector)()
	return nil
}

func (f *fakeDriver) ClickAt(ctx context.Context, x, y float64) error {
	defer f.enter("clickAt")()
	return nil
}

func (f *fakeDriver) Type(ctx context.Context, selector, text string) error {
	defer f.enter("type " + selector + " " + text)()
	return nil
}

func (f *fakeDriver) TypeKeys(ctx context.Context, text string) error {
	defer f.enter("keys " + text)()
	return nil
}

func (f *fakeDriver) Scroll(ctx context.Context, dx, dy int) error {
	defer f.enter("scroll")()
	if dx != 0 || dy != ScrollStep {
		return errors.New("unexpected scroll delta")
	}
	return nil
}

func (f *fakeDriver) Back(ctx context.Context) error    { defer f.enter("back")(); return nil }
func (f *fakeDriver) Forward(ctx context.Context) error { defer f.enter("forward")(); return nil }
func (f *fakeDriver) Reload(ctx context.Context) error  { defer f.enter("reload")(); return nil }

func (f *fakeDriver) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	defer f.enter("evaluate")()
	return json.RawMessage(`42`), nil
}

func (f *fakeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("jpeg"), nil
}

func (f *fakeDriver) HTML(ctx context.Context) (string, error) {
	return "<html><body>hi</body></html>", nil
}

func (f *fakeDriver) URL(ctx context.Context) (string, error) { return f.url, nil }

func (f *fakeDriver) Title(ctx context.Context) (string, error) { return f.title, nil }

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

type visit struct{ url, title string }

type fakeRecorder struct {
	mu     sync.Mutex
	visits []visit
}

func (r *fakeRecorder) RecordVisit(ctx context.Context, url, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, visit{url, title})
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeRecorder, *[]*fakeDriver) {
	t.Helper()
	var drivers []*fakeDriver
	rec := &fakeRecorder{}
	opts := DefaultOptions()
	opts.Driver = "fake"
	m, err := NewManager(opts,
		WithDriverFactory(func(Options) (Driver, error) {
			d := &fakeDriver{}
			drivers = append(drivers, d)
			return d, nil
		}),
		WithHistoryRecorder(rec),
	)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m, rec, &drivers
}

func ptr(f float64) *float64 { return &f }

func TestStatusBeforeLaunch(t *testing.T) {
	m, _, drivers := newTestManager(t)

	state, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.URL != "" || state.Title != "" || state.IsLoading || state.Screenshot != "" {
		t.Errorf("expected empty state, got %+v", state)
	}
	if len(*drivers) != 0 {
		t.Errorf("Status must not launch a browser")
	}
}

func TestLaunchIsIdempotent(t *testing.T) {
	m, _, drivers := newTestManager(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.Launch(ctx); err != nil {
			t.Fatalf("Launch: %v", err)
		}
	}
	if len(*drivers) != 1 {
		t.Fatalf("expected 1 driver, got %d", len(*drivers))
	}
	if !m.IsLaunched() {
		t.Error("expected IsLaunched")
	}
}

func TestNavigateRecordsHistory(t *testing.T) {
	m, rec, _ := newTestManager(t)

	state, err := m.Do(context.Background(), Action{Name: ActionNavigate, URL: "https://example.com"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if state.URL != "https://example.com" {
		t.Errorf("url = %q", state.URL)
	}
	if state.Title != "Title of https://example.com" {
		t.Errorf("title = %q", state.Title)
	}
	if state.Screenshot != "anBlZw==" {
		t.Errorf("screenshot = %q", state.Screenshot)
	}
	if len(rec.visits) != 1 || rec.visits[0].url != "https://example.com" || rec.visits[0].title != "Title of https://example.com" {
		t.Errorf("visits = %+v", rec.visits)
	}
}

func TestNavigateFailureRecordsNothing(t *testing.T) {
	rec := &fakeRecorder{}
	opts := DefaultOptions()
	m, err := NewManager(opts,
		WithDriverFactory(func(Options) (Driver, error) { return &fakeDriver{failNav: true}, nil }),
		WithHistoryRecorder(rec),
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Do(context.Background(), Action{Name: ActionNavigate, URL: "https://nope.invalid"}); err == nil {
		t.Fatal("expected navigation error")
	}
	if len(rec.visits) != 0 {
		t.Errorf("expected no history, got %+v", rec.visits)
	}
}

func TestNavigateWithoutURLIsNoop(t *testing.T) {
	m, rec, drivers := newTestManager(t)

	if _, err := m.Do(context.Background(), Action{Name: ActionNavigate}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(rec.visits) != 0 {
		t.Errorf("expected no history, got %+v", rec.visits)
	}
	for _, c := range (*drivers)[0].calls {
		if c != "launch" {
			t.Errorf("unexpected driver call %q", c)
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"click selector", Action{Name: ActionClick, Selector: "#go", X: ptr(1), Y: ptr(2)}, "click #go"},
		{"click coordinates", Action{Name: ActionClick, X: ptr(0), Y: ptr(0)}, "clickAt"},
		{"click nothing", Action{Name: ActionClick, X: ptr(3)}, ""},
		{"type into selector", Action{Name: ActionType, Selector: "input", Text: "hello"}, "type input hello"},
		{"type keys", Action{Name: ActionType, Text: "hello"}, "keys hello"},
		{"type without text", Action{Name: ActionType, Selector: "input"}, ""},
		{"scroll", Action{Name: ActionScroll}, "scroll"},
		{"back", Action{Name: ActionBack}, "back"},
		{"forward", Action{Name: ActionForward}, "forward"},
		{"reload", Action{Name: ActionReload}, "reload"},
		{"screenshot", Action{Name: ActionScreenshot}, ""},
		{"evaluate", Action{Name: ActionEvaluate, Script: "6*7"}, "evaluate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, rec, drivers := newTestManager(t)
			state, err := m.Do(context.Background(), tt.action)
			if err != nil {
				t.Fatalf("Do: %v", err)
			}
			calls := (*drivers)[0].calls[1:]
			if tt.want == "" {
				if len(calls) != 0 {
					t.Errorf("expected no calls, got %v", calls)
				}
			} else if len(calls) != 1 || calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", calls, tt.want)
			}
			if len(rec.visits) != 0 {
				t.Errorf("only navigate records history, got %+v", rec.visits)
			}
			if state.Screenshot == "" {
				t.Error("expected a screenshot in state")
			}
		})
	}
}

func TestEvaluateReturnsResult(t *testing.T) {
	m, _, _ := newTestManager(t)
	state, err := m.Do(context.Background(), Action{Name: ActionEvaluate, Script: "6*7"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(state.Result) != "42" {
		t.Errorf("result = %s", state.Result)
	}
}

func TestInvalidAction(t *testing.T) {
	m, _, drivers := newTestManager(t)

	for _, a := range []Action{{Name: "explode"}, {}, {Name: ActionEvaluate}} {
		_, err := m.Do(context.Background(), a)
		if !errors.Is(err, ErrInvalidAction) {
			t.Errorf("Do(%+v) err = %v, want ErrInvalidAction", a, err)
		}
	}
	if len(*drivers) != 0 {
		t.Error("invalid actions must not launch the browser")
	}
}

func TestStopRelaunches(t *testing.T) {
	m, _, drivers := newTestManager(t)
	ctx := context.Background()

	if err := m.Launch(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !(*drivers)[0].closed {
		t.Error("expected driver closed")
	}
	if m.IsLaunched() {
		t.Error("expected not launched after Stop")
	}
	if err := m.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	if _, err := m.Do(ctx, Action{Name: ActionReload}); err != nil {
		t.Fatal(err)
	}
	if len(*drivers) != 2 {
		t.Errorf("expected relaunch, got %d drivers", len(*drivers))
	}
}

func TestActionsAreSerialized(t *testing.T) {
	m, rec, drivers := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Do(ctx, Action{Name: ActionNavigate, URL: "https://example.com"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if len(*drivers) != 1 {
		t.Errorf("expected a single driver, got %d", len(*drivers))
	}
	if (*drivers)[0].overlap {
		t.Error("driver calls overlapped")
	}
	if len(rec.visits) != 20 {
		t.Errorf("expected 20 visits, got %d", len(rec.visits))
	}
}

func TestSnapshotIncludesHTML(t *testing.T) {
	m, _, _ := newTestManager(t)
	if err := m.Launch(context.Background()); err != nil {
		t.Fatal(err)
	}
	state, err := m.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state.HTML == "" || state.Screenshot != "" {
		t.Errorf("unexpected snapshot %+v", state)
	}
}

func TestObserver(t *testing.T) {
	var seen []string
	opts := DefaultOptions()
	m, err := NewManager(opts,
		WithDriverFactory(func(Options) (Driver, error) { return &fakeDriver{}, nil }),
		WithObserver(func(driver, action string, _ time.Duration, err error) {
			seen = append(seen, driver+":"+action)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Do(context.Background(), Action{Name: ActionScroll}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "playwright:scroll" {
		t.Errorf("seen = %v", seen)
	}
}

func TestUnknownDriver(t *testing.T) {
	opts := DefaultOptions()
	opts.Driver = "lynx"
	if _, err := NewManager(opts); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("err = %v, want ErrUnknownDriver", err)
	}
}

func TestDrivers(t *testing.T) {
	got := Drivers()
	want := []string{DriverChromedp, DriverPlaywright, DriverRod}
	if len(got) != len(want) {
		t.Fatalf("Drivers() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drivers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
