package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	if err := c.Merge(data); err != nil {
		return c, err
	}
	return c, nil
}

// Merge layers YAML bytes over c. Keys absent from data keep their current value.
func (c *Config) Merge(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// MergeFile layers the YAML file at path over c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return c.Merge(data)
}

// MergeFileIfExists is MergeFile, except a missing file is not an error.
func (c *Config) MergeFileIfExists(path string) error {
	err := c.MergeFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseBool parses a string as boolean with a default value.
// Accepts: "true", "1", "yes" as true; empty returns default.
func parseBool(s string, defaultVal bool) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal
	}
	return s == "true" || s == "1" || s == "yes"
}

type Config struct {
	Server struct {
		Host             string `yaml:"host"`
		Port             int    `yaml:"port"`
		Quiet            string `yaml:"quiet"`
		AllowedOrigins   string `yaml:"allowedOrigins"`
		StreamIntervalMs int    `yaml:"streamIntervalMs"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Database struct {
		SQLitePath string `yaml:"sqlitePath"`
	} `yaml:"database"`
	Browser Browser `yaml:"browser"`
	AI      AI      `yaml:"ai"`
	Metrics struct {
		Enabled string `yaml:"enabled"`
	} `yaml:"metrics"`
	MCP struct {
		Enabled string `yaml:"enabled"`
	} `yaml:"mcp"`
}

// Browser configures the automation driver and its launch options.
type Browser struct {
	Driver               string `yaml:"driver"`
	Headless             string `yaml:"headless"`
	Stealth              string `yaml:"stealth"`
	ExecutablePath       string `yaml:"executablePath"`
	UserDataDir          string `yaml:"userDataDir"`
	RemoteURL            string `yaml:"remoteURL"`
	ViewportWidth        int    `yaml:"viewportWidth"`
	ViewportHeight       int    `yaml:"viewportHeight"`
	Locale               string `yaml:"locale"`
	Timezone             string `yaml:"timezone"`
	UserAgent            string `yaml:"userAgent"`
	ActionTimeoutSeconds int    `yaml:"actionTimeoutSeconds"`
	ScreenshotQuality    int    `yaml:"screenshotQuality"`
}

// AI configures the language-model provider behind /api/ai/command.
type AI struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	APIKey          string `yaml:"apiKey"`
	BaseURL         string `yaml:"baseURL"`
	MaxTokens       int    `yaml:"maxTokens"`
	CacheSize       int    `yaml:"cacheSize"`
	PageTokenBudget int    `yaml:"pageTokenBudget"`
	MaxElements     int    `yaml:"maxElements"`
}

func (c Config) IsQuiet() bool {
	return parseBool(c.Server.Quiet, false)
}

func (c Config) IsMetricsEnabled() bool {
	return parseBool(c.Metrics.Enabled, true)
}

func (c Config) IsMCPEnabled() bool {
	return parseBool(c.MCP.Enabled, true)
}

// IsHeadless reports whether the browser runs without a window.
// Only the exact value "false" turns headless off.
func (b Browser) IsHeadless() bool {
	return strings.TrimSpace(b.Headless) != "false"
}

func (b Browser) IsStealth() bool {
	return parseBool(b.Stealth, true)
}

// Origins returns the configured CORS origins.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ApplyDefaults fills zero values left by empty environment expansions.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.StreamIntervalMs <= 0 {
		c.Server.StreamIntervalMs = 1500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "./data/browserpilot.db"
	}
	if c.Browser.Driver == "" {
		c.Browser.Driver = "playwright"
	}
	if c.Browser.ViewportWidth == 0 {
		c.Browser.ViewportWidth = 1280
	}
	if c.Browser.ViewportHeight == 0 {
		c.Browser.ViewportHeight = 800
	}
	if c.Browser.ActionTimeoutSeconds <= 0 {
		c.Browser.ActionTimeoutSeconds = 30
	}
	if c.Browser.ScreenshotQuality <= 0 || c.Browser.ScreenshotQuality > 100 {
		c.Browser.ScreenshotQuality = 80
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 1024
	}
	if c.AI.PageTokenBudget <= 0 {
		c.AI.PageTokenBudget = 1500
	}
	if c.AI.MaxElements <= 0 {
		c.AI.MaxElements = 40
	}
}
