// Package source creates page source drivers for audit targets.
// It provides a centralized way to instantiate drivers with consistent
// configuration.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"orderwatch/internal/config"
	"orderwatch/internal/domain/entity"
	"orderwatch/internal/infra/browser"
	"orderwatch/internal/infra/static"
)

// Driver is a navigable page source: the accumulator's PageSource capability
// plus the navigation lifecycle around it.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	ExtractVisibleItems(ctx context.Context) ([]entity.RawItem, error)
	LoadMore(ctx context.Context) error
	Close(ctx context.Context) error
}

// Factory creates page source drivers for different listing types.
type Factory struct {
	client  *http.Client
	runtime config.Runtime
	flags   []string
	logger  *slog.Logger
}

// NewFactory creates a Factory with the given HTTP client and runtime knobs.
// The HTTP client should be configured with appropriate timeouts; it is only
// used by the static driver. Extra Chrome flags apply to the chrome driver.
func NewFactory(client *http.Client, runtime config.Runtime, chromeFlags []string, logger *slog.Logger) *Factory {
	return &Factory{
		client:  client,
		runtime: runtime,
		flags:   chromeFlags,
		logger:  logger,
	}
}

// Create instantiates the driver named by the listing's Driver field.
// For "chrome" this launches a browser; the caller must Close the returned
// driver on every path.
func (f *Factory) Create(ctx context.Context, listing config.Listing) (Driver, error) {
	switch listing.Driver {
	case "chrome":
		return browser.New(ctx, browser.Config{
			Headless:         f.runtime.Headless,
			ExtraFlags:       f.flags,
			NavigateTimeout:  f.runtime.NavigateTimeout,
			SettleTimeout:    f.runtime.SettleTimeout,
			ItemSelector:     listing.Selectors.Item,
			TitleSelector:    listing.Selectors.Title,
			TimeSelector:     listing.Selectors.Time,
			TimeAttr:         listing.Selectors.TimeAttr,
			LoadMoreSelector: listing.Selectors.LoadMore,
		}, f.logger)
	case "static":
		return static.New(f.client, static.Config{
			ItemSelector:     listing.Selectors.Item,
			TitleSelector:    listing.Selectors.Title,
			TimeSelector:     listing.Selectors.Time,
			TimeAttr:         listing.Selectors.TimeAttr,
			LoadMoreSelector: listing.Selectors.LoadMore,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown driver %q for listing %q", listing.Driver, listing.Name)
	}
}
