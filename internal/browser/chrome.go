package browser

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// BrowserKind identifies the type of Chromium-based browser.
type BrowserKind string

const (
	BrowserChrome   BrowserKind = "chrome"
	BrowserBrave    BrowserKind = "brave"
	BrowserEdge     BrowserKind = "edge"
	BrowserChromium BrowserKind = "chromium"
	BrowserCanary   BrowserKind = "canary"
	BrowserCustom   BrowserKind = "custom"
)

// BrowserExecutable represents a found browser binary.
type BrowserExecutable struct {
	Kind BrowserKind
	Path string
}

type candidate struct {
	kind BrowserKind
	path string
}

// FindChromeExecutable finds a Chrome/Chromium browser on the system.
// It returns nil, nil when nothing is installed in a known location.
func FindChromeExecutable(customPath string) (*BrowserExecutable, error) {
	if customPath != "" {
		if !fileExists(customPath) {
			return nil, fmt.Errorf("browser executable not found: %s", customPath)
		}
		return &BrowserExecutable{Kind: BrowserCustom, Path: customPath}, nil
	}

	if p := executableFromEnv(); p != "" {
		return &BrowserExecutable{Kind: BrowserCustom, Path: p}, nil
	}

	switch runtime.GOOS {
	case "darwin":
		return firstExisting(macCandidates()), nil
	case "linux":
		return firstExisting(linuxCandidates()), nil
	case "windows":
		return firstExisting(windowsCandidates()), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// IsChromeReachable checks if a Chrome CDP endpoint is responding.
func IsChromeReachable(cdpURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	versionURL := strings.TrimSuffix(httpURL(cdpURL), "/") + "/json/version"
	req, err := http.NewRequestWithContext(ctx, "GET", versionURL, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// httpURL maps a ws:// debugger URL to the http:// endpoint serving /json.
func httpURL(cdpURL string) string {
	switch {
	case strings.HasPrefix(cdpURL, "ws://"):
		cdpURL = "http://" + strings.TrimPrefix(cdpURL, "ws://")
	case strings.HasPrefix(cdpURL, "wss://"):
		cdpURL = "https://" + strings.TrimPrefix(cdpURL, "wss://")
	}
	if i := strings.Index(cdpURL, "/devtools/"); i > 0 {
		cdpURL = cdpURL[:i]
	}
	return cdpURL
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func firstExisting(candidates []candidate) *BrowserExecutable {
	for _, c := range candidates {
		if fileExists(c.path) {
			return &BrowserExecutable{Kind: c.kind, Path: c.path}
		}
	}
	return nil
}

func macCandidates() []candidate {
	home := os.Getenv("HOME")
	return []candidate{
		{BrowserChrome, "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
		{BrowserChrome, filepath.Join(home, "Applications/Google Chrome.app/Contents/MacOS/Google Chrome")},
		{BrowserBrave, "/Applications/Brave Browser.app/Contents/MacOS/Brave Browser"},
		{BrowserEdge, "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"},
		{BrowserChromium, "/Applications/Chromium.app/Contents/MacOS/Chromium"},
		{BrowserCanary, "/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary"},
	}
}

func linuxCandidates() []candidate {
	out := []candidate{
		{BrowserChrome, "/usr/bin/google-chrome"},
		{BrowserChrome, "/usr/bin/google-chrome-stable"},
		{BrowserChrome, "/usr/bin/chrome"},
		{BrowserChromium, "/usr/bin/chromium"},
		{BrowserChromium, "/usr/bin/chromium-browser"},
		{BrowserChromium, "/snap/bin/chromium"},
		{BrowserBrave, "/usr/bin/brave-browser"},
		{BrowserEdge, "/usr/bin/microsoft-edge"},
	}
	// Fall back to whatever is on PATH.
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if p, err := exec.LookPath(name); err == nil {
			out = append(out, candidate{BrowserChromium, p})
		}
	}
	return out
}

func windowsCandidates() []candidate {
	programFiles := os.Getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = "C:\\Program Files"
	}
	programFilesX86 := os.Getenv("ProgramFiles(x86)")
	if programFilesX86 == "" {
		programFilesX86 = "C:\\Program Files (x86)"
	}

	var out []candidate
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		out = append(out,
			candidate{BrowserChrome, filepath.Join(localAppData, "Google", "Chrome", "Application", "chrome.exe")},
			candidate{BrowserBrave, filepath.Join(localAppData, "BraveSoftware", "Brave-Browser", "Application", "brave.exe")},
			candidate{BrowserEdge, filepath.Join(localAppData, "Microsoft", "Edge", "Application", "msedge.exe")},
		)
	}
	return append(out,
		candidate{BrowserChrome, filepath.Join(programFiles, "Google", "Chrome", "Application", "chrome.exe")},
		candidate{BrowserChrome, filepath.Join(programFilesX86, "Google", "Chrome", "Application", "chrome.exe")},
		candidate{BrowserEdge, filepath.Join(programFiles, "Microsoft", "Edge", "Application", "msedge.exe")},
	)
}
