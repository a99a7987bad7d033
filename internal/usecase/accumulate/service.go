package accumulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orderwatch/internal/domain/entity"
	"orderwatch/internal/observability/metrics"

	"golang.org/x/time/rate"
)

// PageSource is the navigation capability the accumulator drives.
// Implementations wrap a loaded listing page and expose only two operations:
// reading the full currently-visible set of records and revealing more.
type PageSource interface {
	// ExtractVisibleItems returns every record currently visible on the
	// listing page, in display order. It returns the full visible set on
	// every call, not just newly revealed records.
	ExtractVisibleItems(ctx context.Context) ([]entity.RawItem, error)

	// LoadMore reveals additional records and blocks until the page has
	// settled. It returns an error wrapping entity.ErrSourceExhausted when
	// the source has no further pages.
	LoadMore(ctx context.Context) error
}

// Config holds the accumulation loop parameters.
type Config struct {
	// Target is the number of admitted items required before the loop stops.
	Target int

	// MaxPages bounds the number of LoadMore invocations for one run.
	MaxPages int
}

// Stats contains statistics about one accumulation run.
type Stats struct {
	Extracted  int
	Admitted   int
	Dropped    int
	Duplicates int
	Pages      int
	Duration   time.Duration
}

// Service assembles an ordered-by-arrival collection of admitted items from a
// paginated page source. The loop is strictly sequential: each extraction
// completes, and each LoadMore settles, before the next step begins.
type Service struct {
	source  PageSource
	limiter *rate.Limiter
	logger  *slog.Logger
	target  string
	cfg     Config
}

// NewService creates an accumulation Service for one audit target.
//
// Parameters:
//   - source: the page source to paginate
//   - limiter: politeness limiter awaited before each LoadMore (can be nil to disable)
//   - logger: structured logger for loop events
//   - targetName: audit target label used in logs and metrics
//   - cfg: loop parameters (target count, page budget)
func NewService(source PageSource, limiter *rate.Limiter, logger *slog.Logger, targetName string, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:  source,
		limiter: limiter,
		logger:  logger,
		target:  targetName,
		cfg:     cfg,
	}
}

// Collect runs the pagination loop until at least cfg.Target items have been
// admitted. Records failing the admission check are dropped and counted, never
// stored. Items re-extracted across page loads are kept as duplicates; the
// collection is append-only and insertion-ordered.
//
// The returned collection may exceed cfg.Target; callers truncate. On failure
// the partial stats are still returned. LoadMore is never invoked once the
// target has been reached.
func (s *Service) Collect(ctx context.Context) ([]entity.Item, *Stats, error) {
	stats := &Stats{}
	if s.cfg.Target <= 0 {
		return nil, stats, fmt.Errorf("%w: got %d", ErrInvalidTarget, s.cfg.Target)
	}

	start := time.Now()
	defer func() { stats.Duration = time.Since(start) }()

	collection := make([]entity.Item, 0, s.cfg.Target)
	seen := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		raws, err := s.source.ExtractVisibleItems(ctx)
		if err != nil {
			return nil, stats, fmt.Errorf("extract visible items: %w", err)
		}
		stats.Extracted += len(raws)
		metrics.RecordItemsExtracted(s.target, len(raws))

		admitted := 0
		for _, raw := range raws {
			item, err := entity.NewItem(raw)
			if err != nil {
				stats.Dropped++
				metrics.RecordItemDropped(s.target, rejectionReason(err))
				s.logger.Debug("dropped extraction record",
					slog.String("target", s.target),
					slog.String("id", raw.ID),
					slog.Any("error", err))
				continue
			}
			if _, dup := seen[item.ID]; dup {
				stats.Duplicates++
				metrics.RecordDuplicateItem(s.target)
			}
			seen[item.ID] = struct{}{}
			collection = append(collection, item)
			admitted++
		}
		stats.Admitted += admitted

		s.logger.Debug("extraction pass complete",
			slog.String("target", s.target),
			slog.Int("visible", len(raws)),
			slog.Int("admitted", admitted),
			slog.Int("collected", len(collection)))

		if len(collection) >= s.cfg.Target {
			break
		}

		// A page load that reveals nothing admissible means the source can
		// no longer move us toward the target.
		if stats.Pages > 0 && admitted == 0 {
			return nil, stats, fmt.Errorf("no forward progress after %d pages: %w",
				stats.Pages, entity.ErrSourceExhausted)
		}

		if stats.Pages >= s.cfg.MaxPages {
			return nil, stats, fmt.Errorf("%w: %d pages loaded, %d/%d items collected",
				ErrPageBudgetExceeded, stats.Pages, len(collection), s.cfg.Target)
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, stats, fmt.Errorf("await page load slot: %w", err)
			}
		}

		if err := s.source.LoadMore(ctx); err != nil {
			return nil, stats, fmt.Errorf("load more after %d/%d items: %w",
				len(collection), s.cfg.Target, err)
		}
		stats.Pages++
		metrics.RecordPageLoaded(s.target)
	}

	s.logger.Info("accumulation complete",
		slog.String("target", s.target),
		slog.Int("collected", len(collection)),
		slog.Int("dropped", stats.Dropped),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("pages", stats.Pages))

	return collection, stats, nil
}

// rejectionReason maps an admission error to a metrics label.
func rejectionReason(err error) string {
	var vErr *entity.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Field
	}
	return "unknown"
}
