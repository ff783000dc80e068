package redis

import (
	"context"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"
)

var (
	ErrEmptyConnectionURL = errors.New("redis: connection url is empty")
	ErrFailedToParseURL   = errors.New("redis: connection url is not redis:// or rediss://")
	ErrConnectionFailed   = errors.New("redis: server did not answer")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)

// Healthcheck is a readiness probe pinging the server.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown is a shutdown hook closing the client.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error { return client.Close() }
}
