// Package dom defines the narrow browsing capability the scraper core
// depends on. Production code drives a real browser through this interface;
// tests and offline runs use a static HTML implementation.
package dom

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrWaitTimeout is returned when a selector never matched within the
	// configured wait window.
	ErrWaitTimeout = errors.New("timed out waiting for selector")

	// ErrClickUnsupported is returned by backends that cannot activate
	// elements, such as static documents.
	ErrClickUnsupported = errors.New("click is not supported by this document")
)

// AttrPrefix marks a selector string as an attribute reference: the value is
// read from the named attribute of the element itself instead of locating a
// descendant, e.g. "@data-oe-item-sale-price".
const AttrPrefix = "@"

// IsAttrRef reports whether selector is an attribute reference.
func IsAttrRef(selector string) bool {
	return strings.HasPrefix(selector, AttrPrefix)
}

// AttrName returns the attribute name of an attribute-reference selector.
func AttrName(selector string) string {
	return strings.TrimPrefix(selector, AttrPrefix)
}

// Element is one node in a rendered document.
type Element interface {
	// Attr returns the named attribute, or "" when absent.
	Attr(name string) string

	// Text returns the full rendered text content, including text
	// contributed by nested inline elements.
	Text() string

	// First returns the first descendant matching the CSS selector, or nil
	// when nothing matches.
	First(selector string) Element

	// All returns every descendant matching the CSS selector in document
	// order.
	All(selector string) []Element

	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView() error

	// Click activates the element and waits for the action to complete.
	Click() error
}

// Document is one loaded page.
type Document interface {
	// WaitFor blocks until at least one element matches selector, the
	// timeout elapses, or ctx is cancelled.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error

	First(selector string) Element
	All(selector string) []Element
}

// Browser owns a browsing session. It is an exclusively-owned resource: one
// crawl invocation acquires it, and the caller must Close it even on error.
type Browser interface {
	// Open navigates to url and returns the loaded document.
	Open(ctx context.Context, url string) (Document, error)

	Close() error
}
