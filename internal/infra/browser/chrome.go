// Package browser implements a page source backed by a headless Chrome tab
// driven over the DevTools protocol. It is the driver for listings that only
// render or paginate through JavaScript.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"orderwatch/internal/domain/entity"
	"orderwatch/internal/resilience/retry"

	"github.com/chromedp/chromedp"
)

// Config holds the browser driver settings for one listing.
type Config struct {
	// Headless controls whether Chrome runs without a display.
	Headless bool

	// ExtraFlags are additional Chrome flags, each "name" or "name=value".
	ExtraFlags []string

	// NavigateTimeout bounds the initial navigation.
	NavigateTimeout time.Duration

	// SettleTimeout bounds how long LoadMore waits for new rows.
	SettleTimeout time.Duration

	// ItemSelector matches one listing row.
	ItemSelector string

	// TitleSelector matches the title node within a row.
	TitleSelector string

	// TimeSelector matches the timestamp node within a row or its sibling row.
	TimeSelector string

	// TimeAttr names the attribute carrying the timestamp; empty = node text.
	TimeAttr string

	// LoadMoreSelector matches the control revealing more rows.
	LoadMoreSelector string
}

// pageRecord is the shape the extraction script returns per row.
type pageRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

// Chrome is a PageSource over a Chrome tab.
type Chrome struct {
	cfg         Config
	logger      *slog.Logger
	retryConfig retry.Config

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches a Chrome instance and opens one tab.
// The caller must release it with Close on every path.
func New(parent context.Context, cfg Config, logger *slog.Logger) (*Chrome, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	for _, flag := range cfg.ExtraFlags {
		name, value, found := strings.Cut(flag, "=")
		if found {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	return &Chrome{
		cfg:         cfg,
		logger:      logger,
		retryConfig: retry.NavigationConfig(),
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Navigate loads the listing page and waits for the first rows to appear.
// Only this initial load is retried; pagination runs without retries.
func (c *Chrome) Navigate(_ context.Context, pageURL string) error {
	return retry.WithBackoff(c.ctx, c.retryConfig, func() error {
		tctx, cancel := context.WithTimeout(c.ctx, c.cfg.NavigateTimeout)
		defer cancel()

		err := chromedp.Run(tctx,
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible(c.cfg.ItemSelector, chromedp.ByQuery),
		)
		if err != nil {
			return fmt.Errorf("navigate %s: %w", pageURL, err)
		}
		return nil
	})
}

// ExtractVisibleItems evaluates the extraction script against the current
// document and returns every visible row, in display order.
func (c *Chrome) ExtractVisibleItems(_ context.Context) ([]entity.RawItem, error) {
	tctx, cancel := context.WithTimeout(c.ctx, c.cfg.SettleTimeout)
	defer cancel()

	var records []pageRecord
	if err := chromedp.Run(tctx, chromedp.Evaluate(extractScript(c.cfg), &records)); err != nil {
		return nil, fmt.Errorf("evaluate extraction script: %w", err)
	}

	return toRawItems(records), nil
}

// LoadMore clicks the load-more control and waits for the listing to settle:
// either more rows appear in place, or the click navigated to the next page
// and its rows rendered. Returns an error wrapping entity.ErrSourceExhausted
// when the control is absent or nothing new appears within the settle window.
func (c *Chrome) LoadMore(_ context.Context) error {
	tctx, cancel := context.WithTimeout(c.ctx, c.cfg.SettleTimeout)
	defer cancel()

	var present bool
	probe := fmt.Sprintf("document.querySelector(%q) !== null", c.cfg.LoadMoreSelector)
	if err := chromedp.Run(tctx, chromedp.Evaluate(probe, &present)); err != nil {
		return fmt.Errorf("probe load-more control: %w", err)
	}
	if !present {
		return fmt.Errorf("control %q not found: %w", c.cfg.LoadMoreSelector, entity.ErrSourceExhausted)
	}

	var before int
	countExpr := fmt.Sprintf("document.querySelectorAll(%q).length", c.cfg.ItemSelector)
	if err := chromedp.Run(tctx, chromedp.Evaluate(countExpr, &before)); err != nil {
		return fmt.Errorf("count visible rows: %w", err)
	}
	var firstID string
	firstExpr := fmt.Sprintf("(document.querySelector(%q) || {id: \"\"}).id || \"\"", c.cfg.ItemSelector)
	if err := chromedp.Run(tctx, chromedp.Evaluate(firstExpr, &firstID)); err != nil {
		return fmt.Errorf("read first row id: %w", err)
	}

	if err := chromedp.Run(tctx, chromedp.Click(c.cfg.LoadMoreSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click load-more control: %w", err)
	}

	var settled bool
	err := chromedp.Run(tctx, chromedp.Poll(
		settleScript(c.cfg.ItemSelector, before, firstID),
		&settled,
		chromedp.WithPollingTimeout(c.cfg.SettleTimeout),
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
	if err == nil {
		return nil
	}
	if errors.Is(err, chromedp.ErrPollingTimeout) {
		return fmt.Errorf("no new rows within %s: %w", c.cfg.SettleTimeout, entity.ErrSourceExhausted)
	}

	// The click navigated to a new document and tore down the polling
	// context; wait for the new page's rows instead.
	c.logger.Debug("load-more navigated, waiting for new document",
		slog.Any("poll_error", err))
	if werr := chromedp.Run(tctx, chromedp.WaitVisible(c.cfg.ItemSelector, chromedp.ByQuery)); werr != nil {
		return fmt.Errorf("wait for next page rows: %w", werr)
	}
	return nil
}

// Close releases the tab and the Chrome process.
func (c *Chrome) Close(_ context.Context) error {
	c.cancelTab()
	c.cancelAlloc()
	return nil
}

// extractScript builds the in-page extraction expression for the configured
// selectors. It maps every listing row to {id, title, time}; absent nodes
// yield empty strings so the admission check downstream can drop them.
func extractScript(cfg Config) string {
	attrExpr := "t.textContent.trim()"
	if cfg.TimeAttr != "" {
		attrExpr = fmt.Sprintf("(t.getAttribute(%q) || \"\")", cfg.TimeAttr)
	}
	return fmt.Sprintf(`(() => {
	return Array.from(document.querySelectorAll(%q)).map((row) => {
		const a = row.querySelector(%q);
		let t = row.querySelector(%q);
		if (!t && row.nextElementSibling) {
			t = row.nextElementSibling.querySelector(%q);
		}
		return {
			id: row.id || "",
			title: a ? a.textContent.trim() : "",
			time: t ? %s : "",
		};
	});
})()`, cfg.ItemSelector, cfg.TitleSelector, cfg.TimeSelector, cfg.TimeSelector, attrExpr)
}

// settleScript builds the expression polled after a load-more click: true once
// the row count grew in place or the first row changed (pager navigation).
func settleScript(itemSelector string, before int, firstID string) string {
	return fmt.Sprintf(`(() => {
	const rows = document.querySelectorAll(%q);
	if (rows.length > %d) { return true; }
	return rows.length > 0 && (rows[0].id || "") !== %q;
})()`, itemSelector, before, firstID)
}

// toRawItems converts script records to raw extraction records.
func toRawItems(records []pageRecord) []entity.RawItem {
	items := make([]entity.RawItem, 0, len(records))
	for _, rec := range records {
		items = append(items, entity.RawItem{
			ID:          rec.ID,
			Title:       rec.Title,
			UnixSeconds: entity.ParseUnixSeconds(rec.Time),
		})
	}
	return items
}
