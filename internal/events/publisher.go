// Package events announces pipeline milestones on a Redis channel so
// downstream consumers (dashboards, schedulers) can react without polling
// the output directories.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event types published by the pipeline stages.
const (
	EventTypeCrawlCompleted    = "CRAWL_COMPLETED"
	EventTypeSnapshotCompleted = "SNAPSHOT_COMPLETED"
)

// Event is the payload published for a completed stage.
type Event struct {
	EventID        string         `json:"event_id"`
	EventType      string         `json:"event_type"`
	Timestamp      time.Time      `json:"timestamp"`
	RunID          string         `json:"run_id,omitempty"`
	SnapshotDate   string         `json:"snapshot_date"`
	TotalRows      int            `json:"total_rows"`
	ValidRows      int            `json:"valid_rows,omitempty"`
	InvalidRows    int            `json:"invalid_rows,omitempty"`
	InvalidReasons map[string]int `json:"invalid_reasons,omitempty"`
	OutputPath     string         `json:"output_path,omitempty"`
}

// Publisher sends events over Redis pub/sub.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewPublisher(addr string, db int, channel string, logger *slog.Logger) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &Publisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "event_publisher"),
	}
}

// Publish fills in event metadata and sends the event on the configured
// channel.
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published",
		"type", event.EventType,
		"event_id", event.EventID,
		"channel", p.channel,
	)

	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}
