package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/dom"
)

// fakeDocument scripts a paginated listing: clicking the next-page control
// advances to the next slice of cards.
type fakeDocument struct {
	selectors config.Selectors
	pages     [][]dom.Element
	idx       int
	clickErr  error
}

func (d *fakeDocument) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if selector == d.selectors.ProductCard && len(d.pages[d.idx]) > 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", dom.ErrWaitTimeout, selector)
}

func (d *fakeDocument) First(selector string) dom.Element {
	if selector == d.selectors.NextPageButton && d.idx < len(d.pages)-1 {
		return &fakeNextButton{doc: d}
	}
	return nil
}

func (d *fakeDocument) All(selector string) []dom.Element {
	if selector == d.selectors.ProductCard {
		return d.pages[d.idx]
	}
	return nil
}

type fakeNextButton struct {
	doc *fakeDocument
}

func (b *fakeNextButton) Attr(string) string       { return "" }
func (b *fakeNextButton) Text() string             { return "" }
func (b *fakeNextButton) First(string) dom.Element { return nil }
func (b *fakeNextButton) All(string) []dom.Element { return nil }
func (b *fakeNextButton) ScrollIntoView() error    { return nil }

func (b *fakeNextButton) Click() error {
	if b.doc.clickErr != nil {
		return b.doc.clickErr
	}
	b.doc.idx++
	return nil
}

type fakeBrowser struct {
	doc    *fakeDocument
	closed bool
}

func (b *fakeBrowser) Open(ctx context.Context, url string) (dom.Document, error) {
	return b.doc, nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func pageOfCards(t *testing.T, skus ...string) []dom.Element {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, sku := range skus {
		fmt.Fprintf(&sb, `
			<div class="cc-product-card">
				<div class="cc-product-card-title"><span class="cc-text-overflow">Product %s</span></div>
				<div class="cc-product-sku-container"><small>SKU: <span>#</span><span>%s</span></small></div>
				<a href="/en/product/%s">view</a>
			</div>`, sku, sku, sku)
	}
	sb.WriteString("</body></html>")

	doc, err := dom.NewStaticDocument(strings.NewReader(sb.String()))
	require.NoError(t, err)
	return doc.All("div.cc-product-card")
}

func testCrawlConfig() config.CrawlConfig {
	return config.CrawlConfig{
		MaxPages:        10,
		PageDelay:       0,
		SettleDelay:     0,
		WaitTimeout:     time.Second,
		DedupeCacheSize: 64,
	}
}

func newTestCrawler(t *testing.T, doc *fakeDocument, cfg config.CrawlConfig) (*Crawler, *fakeBrowser) {
	t.Helper()

	b := &fakeBrowser{doc: doc}
	c, err := NewCrawler(b, config.DefaultSelectors(), cfg, NewMetrics(), NewStatus(), slog.Default())
	require.NoError(t, err)
	return c, b
}

func TestCrawlFollowsPaginationUntilExhaustion(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1", "A2"),
			pageOfCards(t, "B1", "B2"),
			pageOfCards(t, "C1"),
		},
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")
	require.NoError(t, err)

	var skus []string
	for _, r := range records {
		skus = append(skus, r.SKU)
	}
	assert.Equal(t, []string{"A1", "A2", "B1", "B2", "C1"}, skus)
}

func TestCrawlHonorsPageCap(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1", "A2"),
			pageOfCards(t, "B1"),
		},
	}

	cfg := testCrawlConfig()
	cfg.MaxPages = 1

	c, _ := newTestCrawler(t, doc, cfg)
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "A1", records[0].SKU)
	assert.Equal(t, "A2", records[1].SKU)
}

func TestCrawlFatalWhenNoCardsAppear(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages:     [][]dom.Element{{}},
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	_, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")

	require.Error(t, err)
	assert.ErrorIs(t, err, dom.ErrWaitTimeout)
}

func TestCrawlClickFailureEndsRunWithoutError(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1"),
			pageOfCards(t, "B1"),
		},
		clickErr: errors.New("element is stale"),
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0].SKU)
}

func TestCrawlAcceptanceFilter(t *testing.T) {
	// One card with neither name nor URL (sentinel SKU only), one with a URL
	// but no name. The first is filtered; the second survives the crawl and
	// is left for the validator to judge.
	html := `<html><body>
		<div class="cc-product-card">
			<div class="cc-product-sku-container"><small>SKU: <span>#</span><span>ONLYSKU</span></small></div>
		</div>
		<div class="cc-product-card">
			<div class="cc-product-sku-container"><small>SKU: <span>#</span><span>ABC123</span></small></div>
			<a href="/en/product/abc123">view</a>
		</div>
	</body></html>`

	staticDoc, err := dom.NewStaticDocument(strings.NewReader(html))
	require.NoError(t, err)

	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages:     [][]dom.Element{staticDoc.All("div.cc-product-card")},
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "ABC123", records[0].SKU)
	assert.Empty(t, records[0].Name)
}

// faultyCard panics on every read, like a card element detached from the
// DOM mid-extraction.
type faultyCard struct{}

func (faultyCard) Attr(string) string       { panic("stale element reference") }
func (faultyCard) Text() string             { panic("stale element reference") }
func (faultyCard) First(string) dom.Element { panic("stale element reference") }
func (faultyCard) All(string) []dom.Element { panic("stale element reference") }
func (faultyCard) ScrollIntoView() error    { return nil }
func (faultyCard) Click() error             { return nil }

func TestCrawlSkipsFaultingCard(t *testing.T) {
	good := pageOfCards(t, "GOOD1")

	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages:     [][]dom.Element{{faultyCard{}, good[0]}},
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "GOOD1", records[0].SKU)
}

func TestCrawlSkipsRepeatedCards(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1", "A2"),
			// The site re-renders A2 on the second page.
			pageOfCards(t, "A2", "B1"),
		},
	}

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	records, err := c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")
	require.NoError(t, err)

	var skus []string
	for _, r := range records {
		skus = append(skus, r.SKU)
	}
	assert.Equal(t, []string{"A1", "A2", "B1"}, skus)
}

func TestCrawlCancelledContextStopsEarly(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1"),
			pageOfCards(t, "B1"),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestCrawler(t, doc, testCrawlConfig())
	_, err := c.Crawl(ctx, "https://shop.example.com/en/category/Sale")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCrawlUpdatesStatus(t *testing.T) {
	doc := &fakeDocument{
		selectors: config.DefaultSelectors(),
		pages: [][]dom.Element{
			pageOfCards(t, "A1", "A2"),
			pageOfCards(t, "B1"),
		},
	}

	b := &fakeBrowser{doc: doc}
	status := NewStatus()
	c, err := NewCrawler(b, config.DefaultSelectors(), testCrawlConfig(), nil, status, slog.Default())
	require.NoError(t, err)

	_, err = c.Crawl(context.Background(), "https://shop.example.com/en/category/Sale")
	require.NoError(t, err)

	status.Finish(nil)

	view := status.Snapshot()
	assert.Equal(t, StateDone, view.State)
	assert.Equal(t, 2, view.Pages)
	assert.Equal(t, 3, view.Cards)
	assert.Equal(t, 3, view.Records)
	assert.NotEmpty(t, view.RunID)
}
