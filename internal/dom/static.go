package dom

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StaticDocument is a Document backed by a parsed HTML tree. There is no
// rendering or waiting involved; WaitFor succeeds immediately when the
// selector matches the parsed markup and fails otherwise.
type StaticDocument struct {
	doc *goquery.Document
}

// NewStaticDocument parses HTML from r.
func NewStaticDocument(r io.Reader) (*StaticDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &StaticDocument{doc: doc}, nil
}

// NewStaticDocumentFromFile parses a saved HTML snapshot from disk.
func NewStaticDocumentFromFile(path string) (*StaticDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	return NewStaticDocument(f)
}

func (d *StaticDocument) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return nil
}

func (d *StaticDocument) First(selector string) Element {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &staticElement{sel: sel}
}

func (d *StaticDocument) All(selector string) []Element {
	var elements []Element
	d.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &staticElement{sel: sel})
	})
	return elements
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Attr(name string) string {
	value, _ := e.sel.Attr(name)
	return value
}

func (e *staticElement) Text() string {
	return e.sel.Text()
}

func (e *staticElement) First(selector string) Element {
	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return &staticElement{sel: sel}
}

func (e *staticElement) All(selector string) []Element {
	var elements []Element
	e.sel.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &staticElement{sel: sel})
	})
	return elements
}

func (e *staticElement) ScrollIntoView() error {
	return nil
}

func (e *staticElement) Click() error {
	return ErrClickUnsupported
}

// StaticBrowser serves a single pre-parsed document for any URL. It backs
// the offline single-page extraction mode and deterministic tests.
type StaticBrowser struct {
	Doc Document
}

func (b *StaticBrowser) Open(ctx context.Context, url string) (Document, error) {
	if b.Doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	return b.Doc, nil
}

func (b *StaticBrowser) Close() error {
	return nil
}
