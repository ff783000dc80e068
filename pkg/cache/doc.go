// Package cache provides a small generic key-value cache with in-memory and
// Redis backends, plus a Loader that fills misses through singleflight so
// concurrent requests for the same key compute the value once.
//
//	subjects := cache.NewLoader[[]Summary](cache.NewMemory[[]Summary](), 5*time.Minute)
//	list, err := subjects.Load(ctx, "subjects", func(ctx context.Context) ([]Summary, error) {
//		return repo.SubjectSummaries(ctx)
//	})
package cache
