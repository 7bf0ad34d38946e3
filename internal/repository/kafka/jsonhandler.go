package kafka

import (
	"context"
	"encoding/json"
)

// JSONHandler decodes the message value into T before invoking handle.
// A payload that does not decode is returned as an error so the consumer
// logs it and moves on without committing a retry loop.
func JSONHandler[T any](handle func(ctx context.Context, key []byte, ev *T) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var ev T
		if err := json.Unmarshal(value, &ev); err != nil {
			return err
		}
		return handle(ctx, key, &ev)
	}
}
