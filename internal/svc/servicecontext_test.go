package svc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neboloop/browserpilot/internal/config"
	"github.com/neboloop/browserpilot/internal/db/migrations"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	migrations.QuietMode = true
	t.Setenv("BROWSERPILOT_DATA_DIR", t.TempDir())
	t.Setenv("PLAYWRIGHT_USER_DATA_DIR", "")

	var c config.Config
	c.ApplyDefaults()
	c.Database.SQLitePath = filepath.Join(t.TempDir(), "pilot.db")
	return c
}

func TestNewServiceContext(t *testing.T) {
	c := testConfig(t)
	c.Browser.Driver = "rod"
	c.AI.Provider = "ollama"

	svc, err := NewServiceContext(c)
	require.NoError(t, err)
	defer svc.Close()

	require.NotNil(t, svc.DB)
	require.NotNil(t, svc.Metrics)
	assert.Equal(t, "rod", svc.Browser.DriverName())
	assert.False(t, svc.Browser.IsLaunched())
	require.NotNil(t, svc.Assistant)
	assert.Equal(t, "ollama", svc.Assistant.Provider().ID())
	assert.Equal(t, filepath.Join(svc.DataDir, "browser", "profile"), svc.Browser.Options().UserDataDir)
}

func TestNewServiceContextWithoutKey(t *testing.T) {
	c := testConfig(t)
	c.AI.Provider = "openai"
	c.AI.APIKey = ""
	c.AI.BaseURL = ""

	svc, err := NewServiceContext(c)
	require.NoError(t, err)
	defer svc.Close()
	assert.Nil(t, svc.Assistant)
}

func TestNewServiceContextUnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.Browser.Driver = "lynx"

	_, err := NewServiceContext(c)
	assert.Error(t, err)
}

func TestHistoryRecorder(t *testing.T) {
	c := testConfig(t)
	svc, err := NewServiceContext(c)
	require.NoError(t, err)
	defer svc.Close()

	rec := &HistoryRecorder{Store: svc.DB, Metrics: svc.Metrics}
	require.NoError(t, rec.RecordVisit(t.Context(), "https://example.com", ""))
	require.NoError(t, rec.RecordVisit(t.Context(), "https://example.org", "Example"))

	rows, err := svc.DB.ListHistory(t.Context())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	titles := map[string]bool{}
	for _, r := range rows {
		titles[r.URL] = r.Title.Valid
	}
	assert.False(t, titles["https://example.com"])
	assert.True(t, titles["https://example.org"])
}
