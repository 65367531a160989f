package scraper

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run states reported over the status endpoint.
const (
	StateIdle     = "idle"
	StateCrawling = "crawling"
	StateDone     = "done"
	StateFailed   = "failed"
)

// Status tracks the progress of the current crawl run for the HTTP surface.
type Status struct {
	mu sync.RWMutex
	v  StatusView
}

// StatusView is the JSON shape served by /status.
type StatusView struct {
	RunID      string    `json:"run_id"`
	State      string    `json:"state"`
	StartURL   string    `json:"start_url,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Pages      int       `json:"pages"`
	Cards      int       `json:"cards"`
	Records    int       `json:"records"`
	Error      string    `json:"error,omitempty"`
}

func NewStatus() *Status {
	return &Status{
		v: StatusView{
			RunID: uuid.New().String(),
			State: StateIdle,
		},
	}
}

func (s *Status) Start(startURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.State = StateCrawling
	s.v.StartURL = startURL
	s.v.StartedAt = time.Now()
}

func (s *Status) PageDone(cards, accepted int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Pages++
	s.v.Cards += cards
	s.v.Records += accepted
}

func (s *Status) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.FinishedAt = time.Now()
	if err != nil {
		s.v.State = StateFailed
		s.v.Error = err.Error()
		return
	}
	s.v.State = StateDone
}

func (s *Status) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.RunID
}

// Snapshot returns a copy safe to serialize concurrently with updates.
func (s *Status) Snapshot() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}
