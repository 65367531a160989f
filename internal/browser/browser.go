// Package browser is the production adapter for the dom capability, driving
// a headless Chromium instance through Playwright.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/rcastro/listing-snapshot/internal/dom"
)

type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	logger  *slog.Logger
	timeout time.Duration
}

type Options struct {
	Headless       bool
	Timeout        time.Duration
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		AcceptLanguage: "en-CA,en;q=0.9",
		TimezoneID:     "America/Toronto",
		Locale:         "en-CA",
	}
}

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-gpu",
			fmt.Sprintf("--window-size=%d,%d", opts.ViewportWidth, opts.ViewportHeight),
			"--lang=en-US",
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:  &opts.UserAgent,
		Locale:     &opts.Locale,
		TimezoneId: &opts.TimezoneID,
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": opts.AcceptLanguage,
		},
	}

	browserContext, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	return &Browser{
		pw:      pw,
		browser: b,
		context: browserContext,
		logger:  slog.Default().With("component", "browser"),
		timeout: opts.Timeout,
	}, nil
}

// Open navigates a fresh page to url and returns it as a dom.Document.
func (b *Browser) Open(ctx context.Context, url string) (dom.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := b.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}

	page.SetDefaultTimeout(float64(b.timeout.Milliseconds()))

	b.logger.Info("navigating", "url", url)
	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(b.timeout.Milliseconds())),
	})
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	return &pageDocument{page: page}, nil
}

func (b *Browser) Close() error {
	var errs []error

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

type pageDocument struct {
	page playwright.Page
}

func (d *pageDocument) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := d.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", dom.ErrWaitTimeout, selector, err)
	}

	return nil
}

func (d *pageDocument) First(selector string) dom.Element {
	return firstOf(d.page.Locator(selector))
}

func (d *pageDocument) All(selector string) []dom.Element {
	return allOf(d.page.Locator(selector))
}

type pageElement struct {
	loc playwright.Locator
}

func (e *pageElement) Attr(name string) string {
	value, err := e.loc.GetAttribute(name)
	if err != nil {
		return ""
	}
	return value
}

func (e *pageElement) Text() string {
	// TextContent includes text contributed by nested elements.
	text, err := e.loc.TextContent()
	if err != nil {
		return ""
	}
	return text
}

func (e *pageElement) First(selector string) dom.Element {
	return firstOf(e.loc.Locator(selector))
}

func (e *pageElement) All(selector string) []dom.Element {
	return allOf(e.loc.Locator(selector))
}

func (e *pageElement) ScrollIntoView() error {
	if err := e.loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("failed to scroll into view: %w", err)
	}
	return nil
}

func (e *pageElement) Click() error {
	if err := e.loc.Click(); err != nil {
		return fmt.Errorf("failed to click: %w", err)
	}
	return nil
}

func firstOf(loc playwright.Locator) dom.Element {
	first := loc.First()
	count, err := first.Count()
	if err != nil || count == 0 {
		return nil
	}
	return &pageElement{loc: first}
}

func allOf(loc playwright.Locator) []dom.Element {
	count, err := loc.Count()
	if err != nil {
		return nil
	}

	elements := make([]dom.Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &pageElement{loc: loc.Nth(i)})
	}
	return elements
}
