package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl stage.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesCrawled      prometheus.Counter
	CardsSeen         prometheus.Counter
	CardFailures      prometheus.Counter
	RecordsAccepted   prometheus.Counter
	RecordsFiltered   prometheus.Counter
	DuplicatesSkipped prometheus.Counter
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_crawled_total",
		Help: "Total listing pages processed.",
	})
	cards := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_cards_seen_total",
		Help: "Total product cards enumerated across all pages.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_card_failures_total",
		Help: "Cards skipped because extraction faulted.",
	})
	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_records_accepted_total",
		Help: "Records that passed the structural acceptance filter.",
	})
	filtered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_records_filtered_total",
		Help: "Records dropped by the acceptance filter (no name, no URL).",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_duplicates_skipped_total",
		Help: "Records skipped because an identical card was already seen.",
	})

	registry.MustRegister(pages, cards, failures, accepted, filtered, duplicates)

	return &Metrics{
		Registry:          registry,
		PagesCrawled:      pages,
		CardsSeen:         cards,
		CardFailures:      failures,
		RecordsAccepted:   accepted,
		RecordsFiltered:   filtered,
		DuplicatesSkipped: duplicates,
	}
}

func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesCrawled.Inc()
}

func (m *Metrics) AddCards(n int) {
	if m == nil {
		return
	}
	m.CardsSeen.Add(float64(n))
}

func (m *Metrics) IncCardFailure() {
	if m == nil {
		return
	}
	m.CardFailures.Inc()
}

func (m *Metrics) IncAccepted() {
	if m == nil {
		return
	}
	m.RecordsAccepted.Inc()
}

func (m *Metrics) IncFiltered() {
	if m == nil {
		return
	}
	m.RecordsFiltered.Inc()
}

func (m *Metrics) IncDuplicate() {
	if m == nil {
		return
	}
	m.DuplicatesSkipped.Inc()
}
