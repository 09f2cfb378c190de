package eventbus

import (
	"context"
	"log/slog"
)

// LogPublisher logs events instead of publishing them. Used in local
// mode when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("event", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
