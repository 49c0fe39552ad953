// Package events publishes order lifecycle events to downstream consumers.
package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/embire2/DayResellers-sub000/internal/models"
)

// EventType names an order lifecycle event.
type EventType string

const (
	OrderSubmitted EventType = "order.submitted"
	OrderApproved  EventType = "order.approved"
	OrderRejected  EventType = "order.rejected"
)

// OrderEvent is the payload emitted for every order transition.
type OrderEvent struct {
	EventID         string             `json:"eventId"`
	Type            EventType          `json:"type"`
	OrderID         int                `json:"orderId"`
	ResellerID      int                `json:"resellerId"`
	ClientID        int                `json:"clientId"`
	ProductID       int                `json:"productId"`
	Status          models.OrderStatus `json:"status"`
	UserProductID   int                `json:"userProductId,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	ActorID         int                `json:"actorId"`
	Timestamp       time.Time          `json:"timestamp"`
}

// NewOrderEvent builds an event describing order's current state.
func NewOrderEvent(t EventType, order *models.ProductOrder, actorID int) *OrderEvent {
	ev := &OrderEvent{
		EventID:    uuid.NewString(),
		Type:       t,
		OrderID:    order.ID,
		ResellerID: order.ResellerID,
		ClientID:   order.ClientID,
		ProductID:  order.ProductID,
		Status:     order.Status,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
	}
	if order.RejectionReason != nil {
		ev.RejectionReason = *order.RejectionReason
	}
	return ev
}

// Key is the partition key, so all events of one order stay ordered.
func (e *OrderEvent) Key() string {
	return "order-" + strconv.Itoa(e.OrderID)
}
