// Package redis opens go-redis clients from a Config with startup retries,
// and provides a readiness check and a shutdown hook.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0"})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// The client backs the Redis session store and the Redis cache.
package redis
