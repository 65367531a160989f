// Package scraper contains the extraction core: the per-card field extractor
// and the pagination-driven crawl loop.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/dom"
	"github.com/rcastro/listing-snapshot/internal/models"
)

// Crawler walks a paginated listing, extracting every card on every page
// until pagination is exhausted or the page cap is hit.
//
// Fault policy: a page where no card ever appears is fatal for the run; a
// single card that faults is logged and skipped; a missing or unclickable
// next-page control is normal exhaustion, not an error.
type Crawler struct {
	browser   dom.Browser
	extractor *Extractor
	selectors config.Selectors

	maxPages    int
	pageDelay   time.Duration
	settleDelay time.Duration
	waitTimeout time.Duration

	seen    *lru.Cache[string, struct{}]
	metrics *Metrics
	status  *Status
	logger  *slog.Logger
}

// NewCrawler wires a crawler from configuration. metrics and status may be
// nil when the caller does not track them.
func NewCrawler(b dom.Browser, selectors config.Selectors, cfg config.CrawlConfig, metrics *Metrics, status *Status, logger *slog.Logger) (*Crawler, error) {
	if err := selectors.Validate(); err != nil {
		return nil, err
	}

	seen, err := lru.New[string, struct{}](cfg.DedupeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Crawler{
		browser:     b,
		extractor:   NewExtractor(selectors),
		selectors:   selectors,
		maxPages:    cfg.MaxPages,
		pageDelay:   cfg.PageDelay,
		settleDelay: cfg.SettleDelay,
		waitTimeout: cfg.WaitTimeout,
		seen:        seen,
		metrics:     metrics,
		status:      status,
		logger:      logger.With("component", "crawler"),
	}, nil
}

// Crawl scrapes products starting at startURL, following the next-page
// control until it disappears, fails to activate, or maxPages is reached.
// Cards are processed in document order; pages strictly in crawl order.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]models.ProductRecord, error) {
	c.logger.Info("opening listing", "url", startURL)
	if c.status != nil {
		c.status.Start(startURL)
	}

	doc, err := c.browser.Open(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open start url: %w", err)
	}

	var results []models.ProductRecord

	for page := 1; page <= c.maxPages; page++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		c.logger.Info("scraping page", "page", page, "max_pages", c.maxPages)

		if err := doc.WaitFor(ctx, c.selectors.ProductCard, c.waitTimeout); err != nil {
			return nil, fmt.Errorf("no product cards appeared on page %d: %w", page, err)
		}

		cards := doc.All(c.selectors.ProductCard)
		c.logger.Info("found product cards", "page", page, "count", len(cards))
		c.metrics.AddCards(len(cards))

		accepted := 0
		for _, card := range cards {
			record, err := c.extractCard(card)
			if err != nil {
				c.logger.Warn("failed to parse card", "page", page, "error", err)
				c.metrics.IncCardFailure()
				continue
			}

			// Structural acceptance: a record needs a name or a deep link.
			// SKU alone is not enough, the sentinel would let empty husks
			// through. Quality judgment happens later in the validator.
			if record.Name == "" && record.ProductURL == "" {
				c.metrics.IncFiltered()
				continue
			}

			if c.isDuplicate(record) {
				c.metrics.IncDuplicate()
				continue
			}

			results = append(results, record)
			accepted++
			c.metrics.IncAccepted()
		}

		c.metrics.IncPages()
		if c.status != nil {
			c.status.PageDone(len(cards), accepted)
		}

		if page == c.maxPages {
			c.logger.Info("page cap reached, stopping", "pages", page)
			break
		}

		next := doc.First(c.selectors.NextPageButton)
		if next == nil {
			c.logger.Info("no next page button found, stopping", "pages", page)
			break
		}

		if err := c.advance(ctx, next); err != nil {
			// A found-but-unclickable button usually means the control went
			// stale; treat it as normal exhaustion.
			c.logger.Info("pagination ended or failed to click next", "pages", page, "error", err)
			break
		}

		c.sleep(ctx, c.pageDelay)
	}

	c.logger.Info("crawl finished", "records", len(results))
	return results, nil
}

// extractCard shields the page loop from a faulting card: an unexpected
// panic during extraction is converted into an error for that card only.
func (c *Crawler) extractCard(card dom.Element) (record models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("card extraction panicked: %v", r)
		}
	}()

	return c.extractor.ExtractRecord(card), nil
}

func (c *Crawler) isDuplicate(record models.ProductRecord) bool {
	key := record.SKU + "|" + record.Name + "|" + record.ProductURL
	if _, ok := c.seen.Get(key); ok {
		return true
	}
	c.seen.Add(key, struct{}{})
	return false
}

// advance scrolls the next-page control into view, lets lazy loading settle,
// and activates it.
func (c *Crawler) advance(ctx context.Context, next dom.Element) error {
	if err := next.ScrollIntoView(); err != nil {
		return err
	}
	c.sleep(ctx, c.settleDelay)
	return next.Click()
}

func (c *Crawler) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
