// Package config loads the audit configuration: which listings to check, how
// to extract items from them, and the runtime knobs shared by all targets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"orderwatch/internal/domain/entity"
	pkgconfig "orderwatch/pkg/config"
)

// Default listing parameters, used when the YAML omits a field and for the
// built-in target when no config file is given.
const (
	DefaultTarget   = 100
	DefaultMaxPages = 20
	DefaultDriver   = "chrome"
)

// Selectors describes how to locate item fields inside a listing page.
// All values are CSS selectors. Title and Time are evaluated inside one item
// row; when Time matches nothing there, the row's next sibling is searched as
// well, since some listings (Hacker News among them) keep the age line in a
// separate row.
type Selectors struct {
	// Item matches one listing row.
	Item string `yaml:"item"`

	// Title matches the title node within a row.
	Title string `yaml:"title"`

	// Time matches the timestamp node within a row (or its sibling row).
	Time string `yaml:"time"`

	// TimeAttr names the attribute carrying the timestamp value.
	// Empty means the node's text content is used.
	TimeAttr string `yaml:"time_attr"`

	// LoadMore matches the control that reveals the next page of items.
	LoadMore string `yaml:"load_more"`
}

// Listing describes one audit target.
type Listing struct {
	// Name labels the target in logs, metrics and reports.
	Name string `yaml:"name"`

	// URL is the listing page to audit.
	URL string `yaml:"url"`

	// Driver selects the page source implementation: "chrome" for
	// JavaScript-rendered listings, "static" for server-rendered pagers.
	Driver string `yaml:"driver"`

	// Target is the number of items to gather and validate.
	Target int `yaml:"target"`

	// MaxPages bounds the number of additional page loads per run.
	MaxPages int `yaml:"max_pages"`

	// Selectors configure field extraction for this listing.
	Selectors Selectors `yaml:"selectors"`
}

// Config is the full audit configuration.
type Config struct {
	Listings []Listing `yaml:"listings"`
}

// Runtime holds process-wide knobs loaded from the environment.
type Runtime struct {
	// Headless controls whether the chrome driver runs without a display.
	// Default: true. Environment variable: AUDIT_HEADLESS.
	Headless bool

	// NavigateTimeout bounds the initial page navigation.
	// Default: 30s. Environment variable: AUDIT_NAVIGATE_TIMEOUT.
	NavigateTimeout time.Duration

	// SettleTimeout bounds how long one load-more waits for new items.
	// Default: 15s. Environment variable: AUDIT_SETTLE_TIMEOUT.
	SettleTimeout time.Duration

	// PageInterval is the minimum spacing between page loads (politeness).
	// Zero disables the limiter. Default: 1s.
	// Environment variable: AUDIT_PAGE_INTERVAL.
	PageInterval time.Duration

	// MetricsPort is the watch-mode metrics server port.
	// Default: 9090. Environment variable: METRICS_PORT.
	MetricsPort int
}

// DefaultListing returns the built-in audit target: the Hacker News "newest"
// listing, whose age spans carry an "<ISO> <unix>" title attribute.
func DefaultListing() Listing {
	return Listing{
		Name:     "hn-newest",
		URL:      "https://news.ycombinator.com/newest",
		Driver:   DefaultDriver,
		Target:   DefaultTarget,
		MaxPages: DefaultMaxPages,
		Selectors: Selectors{
			Item:     "tr.athing",
			Title:    "span.titleline > a",
			Time:     "span.age",
			TimeAttr: "title",
			LoadMore: "a.morelink",
		},
	}
}

// Load reads the audit configuration from a YAML file. An empty path yields a
// configuration holding only the built-in default listing.
// The path parameter is expected to come from a trusted source (command-line
// argument or hardcoded default).
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{Listings: []Listing{DefaultListing()}}, nil
	}

	// #nosec G304 -- path is provided by trusted source (CLI arg), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(config.Listings) == 0 {
		return nil, &entity.ValidationError{Field: "listings", Message: "at least one listing is required"}
	}

	defaults := DefaultListing()
	for i := range config.Listings {
		applyListingDefaults(&config.Listings[i], defaults)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyListingDefaults fills omitted listing fields from the built-in target.
func applyListingDefaults(l *Listing, defaults Listing) {
	if l.Driver == "" {
		l.Driver = defaults.Driver
	}
	if l.Target == 0 {
		l.Target = defaults.Target
	}
	if l.MaxPages == 0 {
		l.MaxPages = defaults.MaxPages
	}
	if l.Selectors.Item == "" {
		l.Selectors = defaults.Selectors
	}
	if l.Name == "" {
		l.Name = l.URL
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	for i := range c.Listings {
		if err := c.Listings[i].Validate(); err != nil {
			return fmt.Errorf("listing %q: %w", c.Listings[i].Name, err)
		}
	}
	return nil
}

// Validate checks one listing for usable values.
func (l *Listing) Validate() error {
	if err := entity.ValidateListingURL(l.URL); err != nil {
		return err
	}
	if l.Driver != "chrome" && l.Driver != "static" {
		return &entity.ValidationError{Field: "driver", Message: fmt.Sprintf("unknown driver %q", l.Driver)}
	}
	if l.Target <= 0 {
		return &entity.ValidationError{Field: "target", Message: "target must be a positive integer"}
	}
	if l.MaxPages <= 0 {
		return &entity.ValidationError{Field: "max_pages", Message: "max_pages must be a positive integer"}
	}
	if l.Selectors.Item == "" || l.Selectors.Title == "" || l.Selectors.Time == "" {
		return &entity.ValidationError{Field: "selectors", Message: "item, title and time selectors are required"}
	}
	if l.Selectors.LoadMore == "" {
		return &entity.ValidationError{Field: "selectors", Message: "load_more selector is required"}
	}
	return nil
}

// LoadRuntime reads the process-wide runtime knobs from the environment.
func LoadRuntime() (Runtime, error) {
	rt := Runtime{
		Headless:        pkgconfig.GetEnvBool("AUDIT_HEADLESS", true),
		NavigateTimeout: pkgconfig.GetEnvDuration("AUDIT_NAVIGATE_TIMEOUT", 30*time.Second),
		SettleTimeout:   pkgconfig.GetEnvDuration("AUDIT_SETTLE_TIMEOUT", 15*time.Second),
		PageInterval:    pkgconfig.GetEnvDuration("AUDIT_PAGE_INTERVAL", 1*time.Second),
		MetricsPort:     pkgconfig.GetEnvInt("METRICS_PORT", 9090),
	}

	if err := pkgconfig.ValidatePositiveDuration(rt.NavigateTimeout); err != nil {
		return rt, fmt.Errorf("invalid navigate timeout: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(rt.SettleTimeout); err != nil {
		return rt, fmt.Errorf("invalid settle timeout: %w", err)
	}
	if err := pkgconfig.ValidateNonNegativeDuration(rt.PageInterval); err != nil {
		return rt, fmt.Errorf("invalid page interval: %w", err)
	}
	if err := pkgconfig.ValidateDurationRange(rt.SettleTimeout, time.Second, 5*time.Minute); err != nil {
		return rt, fmt.Errorf("invalid settle timeout: %w", err)
	}
	if rt.MetricsPort < 1 || rt.MetricsPort > 65535 {
		return rt, fmt.Errorf("invalid metrics port: %d", rt.MetricsPort)
	}

	return rt, nil
}
