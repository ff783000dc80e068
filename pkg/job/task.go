package job

import (
	"context"
	"encoding/json"
	"errors"
)

type executor func(ctx context.Context, payload json.RawMessage) error

// typed adapts a handler of a concrete payload type to an executor.
func typed[P any](fn func(context.Context, P) error) executor {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return fn(ctx, p)
	}
}

// taskArgs is the single River job kind; the registered task is picked by Task.
type taskArgs struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "examdesk:task" }
