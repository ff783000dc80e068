// Package tasks holds the background jobs run by the job manager.
package tasks

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/pkg/job"
	"github.com/dmitrymomot/examdesk/pkg/logger"
	"github.com/dmitrymomot/examdesk/pkg/mailer"
)

const (
	TaskPurgeSessions = "purge_sessions"
	// PurgeSchedule runs the session purge at the start of every hour.
	PurgeSchedule = "0 * * * *"

	clearanceTemplate = "clearance.md"
)

//go:embed templates
var templates embed.FS

// Templates returns the mail templates, layout.html included.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// SessionPurger is satisfied by every session store.
type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Tasks struct {
	mail     Mailer
	sessions SessionPurger
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Tasks)

func WithLogger(l *slog.Logger) Option {
	return func(t *Tasks) {
		if l != nil {
			t.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tasks) { t.now = now }
}

func New(mail Mailer, sessions SessionPurger, opts ...Option) *Tasks {
	t := &Tasks{mail: mail, sessions: sessions, logger: logger.NewNope(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Options registers the tasks with a job manager.
func (t *Tasks) Options() []job.Option {
	return []job.Option{
		job.WithTask(keyquestion.TaskNotifyClearance, t.NotifyClearance),
		job.WithPeriodicTask(TaskPurgeSessions, PurgeSchedule, t.PurgeSessions),
	}
}

// NotifyClearance mails the claimant that the key question waits for
// clearance. Users without an email address are skipped.
func (t *Tasks) NotifyClearance(ctx context.Context, n keyquestion.Notification) error {
	if n.Email == "" {
		t.logger.WarnContext(ctx, "clearance notification skipped, no email",
			slog.String("username", n.Username),
			slog.Int64("claim_id", n.ClaimID),
		)
		return nil
	}
	return t.mail.Send(ctx, mailer.Message{
		To:       n.Email,
		Template: clearanceTemplate,
		Data:     n,
	})
}

func (t *Tasks) PurgeSessions(ctx context.Context) error {
	n, err := t.sessions.DeleteExpired(ctx, t.now())
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.InfoContext(ctx, "expired sessions purged", slog.Int64("count", n))
	}
	return nil
}
