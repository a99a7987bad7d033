package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EmptyPathUsesBuiltinListing(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	require.Len(t, cfg.Listings, 1)
	listing := cfg.Listings[0]
	assert.Equal(t, "hn-newest", listing.Name)
	assert.Equal(t, "https://news.ycombinator.com/newest", listing.URL)
	assert.Equal(t, "chrome", listing.Driver)
	assert.Equal(t, 100, listing.Target)
	assert.Equal(t, 20, listing.MaxPages)
	assert.Equal(t, "tr.athing", listing.Selectors.Item)
	assert.Equal(t, "a.morelink", listing.Selectors.LoadMore)
}

func TestLoad_FullListing(t *testing.T) {
	path := writeConfig(t, `
listings:
  - name: example-new
    url: https://example.com/new
    driver: static
    target: 50
    max_pages: 10
    selectors:
      item: "li.entry"
      title: "a.entry-title"
      time: "time.published"
      time_attr: "datetime"
      load_more: "a.next"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	require.Len(t, cfg.Listings, 1)
	listing := cfg.Listings[0]
	assert.Equal(t, "example-new", listing.Name)
	assert.Equal(t, "static", listing.Driver)
	assert.Equal(t, 50, listing.Target)
	assert.Equal(t, 10, listing.MaxPages)
	assert.Equal(t, "datetime", listing.Selectors.TimeAttr)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
listings:
  - url: https://example.com/new
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	listing := cfg.Listings[0]
	assert.Equal(t, "https://example.com/new", listing.Name, "name defaults to the URL")
	assert.Equal(t, DefaultDriver, listing.Driver)
	assert.Equal(t, DefaultTarget, listing.Target)
	assert.Equal(t, DefaultMaxPages, listing.MaxPages)
	assert.Equal(t, DefaultListing().Selectors, listing.Selectors)
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "no listings",
			body: "listings: []\n",
		},
		{
			name: "invalid yaml",
			body: "listings: [\n",
		},
		{
			name: "bad url scheme",
			body: "listings:\n  - url: ftp://example.com/new\n",
		},
		{
			name: "unknown driver",
			body: "listings:\n  - url: https://example.com/new\n    driver: carrier-pigeon\n",
		},
		{
			name: "negative target",
			body: "listings:\n  - url: https://example.com/new\n    target: -5\n",
		},
		{
			name: "partial selectors",
			body: "listings:\n  - url: https://example.com/new\n    selectors:\n      item: \"li\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))

			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoadRuntime_Defaults(t *testing.T) {
	rt, err := LoadRuntime()

	require.NoError(t, err)
	assert.True(t, rt.Headless)
	assert.Equal(t, 30*time.Second, rt.NavigateTimeout)
	assert.Equal(t, 15*time.Second, rt.SettleTimeout)
	assert.Equal(t, 1*time.Second, rt.PageInterval)
	assert.Equal(t, 9090, rt.MetricsPort)
}

func TestLoadRuntime_EnvOverrides(t *testing.T) {
	t.Setenv("AUDIT_HEADLESS", "false")
	t.Setenv("AUDIT_NAVIGATE_TIMEOUT", "10s")
	t.Setenv("AUDIT_PAGE_INTERVAL", "0s")
	t.Setenv("METRICS_PORT", "9191")

	rt, err := LoadRuntime()

	require.NoError(t, err)
	assert.False(t, rt.Headless)
	assert.Equal(t, 10*time.Second, rt.NavigateTimeout)
	assert.Zero(t, rt.PageInterval)
	assert.Equal(t, 9191, rt.MetricsPort)
}

func TestLoadRuntime_RejectsBadValues(t *testing.T) {
	t.Setenv("METRICS_PORT", "70000")

	_, err := LoadRuntime()

	assert.Error(t, err)
}
