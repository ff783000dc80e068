package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/examdesk/internal/keyquestion"
	"github.com/dmitrymomot/examdesk/internal/tasks"
	"github.com/dmitrymomot/examdesk/pkg/mailer"
)

type recordingSender struct {
	sent []*mailer.Email
}

func (s *recordingSender) Send(_ context.Context, e *mailer.Email) error {
	s.sent = append(s.sent, e)
	return nil
}

type purger struct {
	at  time.Time
	n   int64
	err error
}

func (p *purger) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	p.at = now
	return p.n, p.err
}

func TestNotifyClearance(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := mailer.New(sender, mailer.NewRenderer(tasks.Templates()), "examdesk")
	tk := tasks.New(m, &purger{})

	err := tk.NotifyClearance(context.Background(), keyquestion.Notification{
		Username:    "mueller",
		Email:       "mueller@example.org",
		Topic:       "Klimawandel",
		KeyQuestion: "Wie schnell steigt der Meeresspiegel?",
		ClaimID:     12,
		ExamID:      3,
		Year:        2019,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	e := sender.sent[0]
	assert.Equal(t, []string{"mueller@example.org"}, e.To)
	assert.Equal(t, "Leitfrage zur Freigabe: Klimawandel", e.Subject)
	assert.Contains(t, e.HTML, "<strong>Klimawandel</strong>")
	assert.Contains(t, e.HTML, "<blockquote>")
	assert.Contains(t, e.Text, "Hallo mueller,")
	assert.Contains(t, e.Text, "Antrag Nr. 12")
}

func TestNotifyClearance_NoEmail(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	tk := tasks.New(mailer.New(sender, mailer.NewRenderer(tasks.Templates()), ""), &purger{})

	require.NoError(t, tk.NotifyClearance(context.Background(), keyquestion.Notification{Username: "mueller"}))
	assert.Empty(t, sender.sent)
}

func TestPurgeSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("deletes before now", func(t *testing.T) {
		p := &purger{n: 4}
		tk := tasks.New(nil, p, tasks.WithClock(func() time.Time { return now }))
		require.NoError(t, tk.PurgeSessions(context.Background()))
		assert.Equal(t, now, p.at)
	})

	t.Run("store error", func(t *testing.T) {
		boom := errors.New("boom")
		tk := tasks.New(nil, &purger{err: boom})
		assert.ErrorIs(t, tk.PurgeSessions(context.Background()), boom)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()
	assert.Len(t, tasks.New(nil, &purger{}).Options(), 2)
}
