// Package events delivers account events to Kafka, or to the log when no
// broker is configured or the broker keeps failing.
package events

import (
	"context"
	"log/slog"

	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/platform/metrics"
)

const (
	SinkLog   = "log"
	SinkKafka = "kafka"
)

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLogPublisher(logger *slog.Logger, m *metrics.Metrics) *LogPublisher {
	return &LogPublisher{logger: logger, metrics: m}
}

func (p *LogPublisher) Publish(ctx context.Context, e models.Event) error {
	p.logger.InfoContext(ctx, "account event",
		"event_id", e.ID,
		"type", e.Type,
		"user_id", e.UserID,
		"role", e.Role,
		"platform", e.Platform,
		"request_id", e.RequestID,
	)
	p.metrics.IncEventsPublished(string(e.Type), SinkLog)
	return nil
}
