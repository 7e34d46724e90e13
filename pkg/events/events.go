package events

import (
	"context"
	"time"
)

type Type string

const (
	RequestCreated   Type = "request.created"
	RequestCancelled Type = "request.cancelled"
	RequestAccepted  Type = "request.accepted"
	RequestDeclined  Type = "request.declined"
	RequestRejected  Type = "request.rejected"
	RequestEnRoute   Type = "request.en_route"
	RequestCompleted Type = "request.completed"
)

// Event describes one help request lifecycle change.
type Event struct {
	Type       Type      `json:"type"`
	RequestID  int64     `json:"request_id"`
	CustomerID int64     `json:"customer_id"`
	MechanicID *int64    `json:"mechanic_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
