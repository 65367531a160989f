package dom

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
	<div class="card" data-id="first">
		<span class="title">Garage <strong>Shelf</strong></span>
		<a href="/en/product/123">view</a>
	</div>
	<div class="card" data-id="second">
		<span class="title">Work Light</span>
	</div>
</body></html>`

func TestStaticDocumentQueries(t *testing.T) {
	doc, err := NewStaticDocument(strings.NewReader(listingHTML))
	require.NoError(t, err)

	cards := doc.All("div.card")
	require.Len(t, cards, 2)

	assert.Equal(t, "first", cards[0].Attr("data-id"))
	assert.Equal(t, "second", cards[1].Attr("data-id"))
	assert.Empty(t, cards[0].Attr("missing"))

	// Text includes content of nested inline elements.
	title := cards[0].First(".title")
	require.NotNil(t, title)
	assert.Equal(t, "Garage Shelf", strings.TrimSpace(title.Text()))

	assert.Nil(t, cards[1].First("a"))
}

func TestStaticDocumentWaitFor(t *testing.T) {
	doc, err := NewStaticDocument(strings.NewReader(listingHTML))
	require.NoError(t, err)

	ctx := context.Background()

	assert.NoError(t, doc.WaitFor(ctx, "div.card", time.Second))

	err = doc.WaitFor(ctx, "div.missing", time.Second)
	assert.ErrorIs(t, err, ErrWaitTimeout)
}

func TestStaticElementClickUnsupported(t *testing.T) {
	doc, err := NewStaticDocument(strings.NewReader(listingHTML))
	require.NoError(t, err)

	card := doc.First("div.card")
	require.NotNil(t, card)
	assert.ErrorIs(t, card.Click(), ErrClickUnsupported)
	assert.NoError(t, card.ScrollIntoView())
}

func TestAttrRefHelpers(t *testing.T) {
	assert.True(t, IsAttrRef("@data-oe-item-sale-price"))
	assert.False(t, IsAttrRef(".cc-product-card-title"))
	assert.Equal(t, "data-oe-item-sale-price", AttrName("@data-oe-item-sale-price"))
}
