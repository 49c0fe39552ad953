package events

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/embire2/DayResellers-sub000/internal/metrics"
)

// Publisher delivers order events to one sink.
type Publisher interface {
	Publish(ctx context.Context, event *OrderEvent) error
	Name() string
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *OrderEvent) error { return nil }
func (NopPublisher) Name() string                               { return "nop" }

// Fanout publishes each event to every sink. A failing sink does not stop
// the others; failures are logged, counted and joined into the result.
type Fanout struct {
	sinks []Publisher
}

// NewFanout creates a Fanout over sinks.
func NewFanout(sinks ...Publisher) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Publish(ctx context.Context, event *OrderEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, event); err != nil {
			metrics.EventsPublishFailures.WithLabelValues(s.Name()).Inc()
			log.Error().
				Err(err).
				Str("sink", s.Name()).
				Str("event_type", string(event.Type)).
				Int("order_id", event.OrderID).
				Msg("Failed to publish order event")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
