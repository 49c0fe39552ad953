package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/embire2/DayResellers-sub000/internal/events"
)

// HubPublisher forwards order events to admin dashboards through the Hub.
type HubPublisher struct {
	hub *Hub
}

// NewHubPublisher creates a publisher backed by the given Hub.
func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Name() string { return "sse" }

// Publish implements events.Publisher.
func (p *HubPublisher) Publish(_ context.Context, event *events.OrderEvent) error {
	if p.hub.ClientCount() == 0 {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sse event: %w", err)
	}
	p.hub.Broadcast(Message{Event: string(event.Type), Data: data})
	return nil
}
