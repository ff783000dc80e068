package job

import (
	"context"
	"encoding/json"
	"log/slog"
)

type periodic struct {
	name string
	spec string
}

type config struct {
	logger     *slog.Logger
	tasks      map[string]executor
	periodic   []periodic
	maxWorkers int
}

// Option configures a Manager.
type Option func(*config)

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers caps concurrent jobs on the default queue. Defaults to 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithTask registers fn under name. The payload is JSON-decoded into P.
func WithTask[P any](name string, fn func(context.Context, P) error) Option {
	return func(c *config) {
		c.tasks[name] = typed(fn)
	}
}

// WithPeriodicTask registers fn under name and runs it on the cron spec.
func WithPeriodicTask(name, spec string, fn func(context.Context) error) Option {
	return func(c *config) {
		c.tasks[name] = func(ctx context.Context, _ json.RawMessage) error { return fn(ctx) }
		c.periodic = append(c.periodic, periodic{name: name, spec: spec})
	}
}
