package eventbus

import (
	"context"
	"encoding/json"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

// Publisher pushes serialized domain events onto a message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// PublishDomainEvents serializes and publishes all pending events of an
// aggregate, then clears them. Publish failures are returned but the
// events are cleared regardless; the broker is best effort here.
func PublishDomainEvents(ctx context.Context, pub Publisher, agg domain.AggregateRoot) error {
	events := agg.DomainEvents()
	defer agg.ClearDomainEvents()

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if err := pub.Publish(ctx, ev.RoutingKey(), payload); err != nil {
			return err
		}
	}
	return nil
}
