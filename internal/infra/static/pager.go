// Package static implements a page source for server-rendered listings that
// paginate through a plain "more" link. Each page is fetched over HTTP and
// parsed with CSS selectors; the visible set is everything fetched so far.
package static

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"orderwatch/internal/domain/entity"
	"orderwatch/internal/resilience/retry"

	"github.com/PuerkitoBio/goquery"
)

// maxBodySize limits listing page bodies to prevent memory exhaustion.
const maxBodySize = 10 * 1024 * 1024 // 10MB

const userAgent = "orderwatch/1.0"

// Config holds the extraction selectors for one listing.
type Config struct {
	// ItemSelector matches one listing row.
	ItemSelector string

	// TitleSelector matches the title node within a row.
	TitleSelector string

	// TimeSelector matches the timestamp node within a row or its sibling row.
	TimeSelector string

	// TimeAttr names the attribute carrying the timestamp; empty = node text.
	TimeAttr string

	// LoadMoreSelector matches the link to the next listing page.
	LoadMoreSelector string
}

// Pager is a PageSource over an HTTP-paginated listing. It accumulates the
// rows of every fetched page; ExtractVisibleItems returns the full set on
// every call, matching the visible-set semantics of a scrolled page.
type Pager struct {
	client      *http.Client
	cfg         Config
	retryConfig retry.Config
	logger      *slog.Logger

	visible []entity.RawItem
	nextURL string
}

// New creates a Pager with the given HTTP client.
// The HTTP client should be configured with appropriate timeouts.
func New(client *http.Client, cfg Config, logger *slog.Logger) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{
		client:      client,
		cfg:         cfg,
		retryConfig: retry.NavigationConfig(),
		logger:      logger,
	}
}

// Navigate fetches the first listing page. Only this initial load is retried;
// subsequent pagination runs without retries.
func (p *Pager) Navigate(ctx context.Context, pageURL string) error {
	return retry.WithBackoff(ctx, p.retryConfig, func() error {
		return p.fetchPage(ctx, pageURL)
	})
}

// ExtractVisibleItems returns every row fetched so far, in arrival order.
func (p *Pager) ExtractVisibleItems(_ context.Context) ([]entity.RawItem, error) {
	out := make([]entity.RawItem, len(p.visible))
	copy(out, p.visible)
	return out, nil
}

// LoadMore follows the listing's next-page link and appends its rows to the
// visible set. Returns an error wrapping entity.ErrSourceExhausted when the
// current page carries no such link.
func (p *Pager) LoadMore(ctx context.Context) error {
	if p.nextURL == "" {
		return fmt.Errorf("no %q link on current page: %w", p.cfg.LoadMoreSelector, entity.ErrSourceExhausted)
	}
	return p.fetchPage(ctx, p.nextURL)
}

// Close releases nothing; the Pager holds no page resources.
func (p *Pager) Close(_ context.Context) error {
	return nil
}

// fetchPage fetches and parses one listing page, appending its rows to the
// visible set and recording the next-page link.
func (p *Pager) fetchPage(ctx context.Context, pageURL string) error {
	doc, err := p.fetchHTML(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("fetch listing page: %w", err)
	}

	rows := p.parseItems(doc)
	p.visible = append(p.visible, rows...)

	next, err := p.resolveNext(doc, pageURL)
	if err != nil {
		return fmt.Errorf("resolve next page link: %w", err)
	}
	p.nextURL = next

	p.logger.Debug("listing page fetched",
		slog.String("url", pageURL),
		slog.Int("rows", len(rows)),
		slog.Bool("has_next", next != ""))

	return nil
}

// fetchHTML fetches and parses HTML from the given URL.
func (p *Pager) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	limitedReader := io.LimitReader(resp.Body, maxBodySize)
	doc, err := goquery.NewDocumentFromReader(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return doc, nil
}

// parseItems extracts raw records from one page, in display order.
// Missing fields stay empty or nil; admission happens downstream.
func (p *Pager) parseItems(doc *goquery.Document) []entity.RawItem {
	var rows []entity.RawItem
	doc.Find(p.cfg.ItemSelector).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(p.cfg.TitleSelector).First().Text())

		// Some listings keep the age line in the row after the item row.
		timeNode := s.Find(p.cfg.TimeSelector).First()
		if timeNode.Length() == 0 {
			timeNode = s.Next().Find(p.cfg.TimeSelector).First()
		}
		var timeRaw string
		if timeNode.Length() > 0 {
			if p.cfg.TimeAttr != "" {
				timeRaw = timeNode.AttrOr(p.cfg.TimeAttr, "")
			} else {
				timeRaw = strings.TrimSpace(timeNode.Text())
			}
		}

		rows = append(rows, entity.RawItem{
			ID:          s.AttrOr("id", ""),
			Title:       title,
			UnixSeconds: entity.ParseUnixSeconds(timeRaw),
		})
	})
	return rows
}

// resolveNext finds the next-page link and resolves it against the current
// page URL. Returns "" when the page has no next link.
func (p *Pager) resolveNext(doc *goquery.Document, pageURL string) (string, error) {
	href, ok := doc.Find(p.cfg.LoadMoreSelector).First().Attr("href")
	if !ok || href == "" {
		return "", nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page URL: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", href, err)
	}

	return base.ResolveReference(ref).String(), nil
}
