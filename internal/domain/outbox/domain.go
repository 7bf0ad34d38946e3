package outbox

import (
	"context"
	"time"
)

type Status string

type Kind int

const (
	KindFollowEvent Kind = 1
)

type Message struct {
	IdempotencyKey string
	Kind           Kind
	Data           []byte
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Tracestate     string
	Traceparent    string
	Baggage        string
}

// TraceCarrier adapts a message's trace headers to the text-map
// carrier shape propagators expect, so the producing request's trace
// context survives the outbox table.
type TraceCarrier struct{ M *Message }

func (c TraceCarrier) Get(key string) string {
	switch key {
	case "traceparent":
		return c.M.Traceparent
	case "tracestate":
		return c.M.Tracestate
	case "baggage":
		return c.M.Baggage
	}
	return ""
}

func (c TraceCarrier) Set(key, value string) {
	switch key {
	case "traceparent":
		c.M.Traceparent = value
	case "tracestate":
		c.M.Tracestate = value
	case "baggage":
		c.M.Baggage = value
	}
}

func (c TraceCarrier) Keys() []string {
	return []string{"traceparent", "tracestate", "baggage"}
}

type Repository interface {
	Enqueue(ctx context.Context, key string, kind Kind, data []byte) error

	PickBatch(ctx context.Context, batch int, inProgressTTL time.Duration) ([]Message, error)

	MarkSuccess(ctx context.Context, keys []string) error
}

type KindHandler func(ctx context.Context, data []byte) error

type GlobalHandler func(kind Kind) (KindHandler, error)
