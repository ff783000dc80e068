// Package job runs background tasks on River, a Postgres-backed queue.
//
// Tasks are registered by name with a typed payload handler and enqueued with
// a JSON-encodable payload. EnqueueTx inserts the job inside a caller's
// transaction so it becomes visible only when that transaction commits.
// Periodic tasks take a five-field cron expression.
//
//	m, err := job.NewManager(pool,
//		job.WithLogger(log),
//		job.WithTask("notify_clearance", notifier.Handle),
//		job.WithPeriodicTask("purge_sessions", "0 * * * *", purger.Run),
//	)
//	_ = m.Start(ctx)
//	defer m.Stop(ctx)
package job
