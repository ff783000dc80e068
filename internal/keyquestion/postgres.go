package keyquestion

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/internal/repository"
	"github.com/dmitrymomot/examdesk/pkg/job"
)

// Enqueuer inserts jobs inside a transaction. *job.Manager satisfies it.
type Enqueuer interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

var errNoTx = errors.New("keyquestion: jobs can only be enqueued inside a transaction")

// Postgres is the Database backed by the repository store.
type Postgres struct {
	store *repository.Store
	tx    *repository.Transactor
	jobs  Enqueuer
}

func NewPostgres(store *repository.Store, tx *repository.Transactor, jobs Enqueuer) *Postgres {
	return &Postgres{store: store, tx: tx, jobs: jobs}
}

func (p *Postgres) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return p.tx.InTx(ctx, func(ctx context.Context, s *repository.Store) error {
		return fn(ctx, &Postgres{store: s, jobs: p.jobs})
	})
}

func (p *Postgres) Exam(ctx context.Context, id int64) (*entity.Exam, error) {
	return p.store.Exams.Find(ctx, id)
}

func (p *Postgres) LockExam(ctx context.Context, id int64) (*entity.Exam, error) {
	return p.store.Exams.FindForUpdate(ctx, id)
}

func (p *Postgres) UserByName(ctx context.Context, username string) (*entity.User, error) {
	return p.store.Users.FindOneBy(ctx, repository.By("username", username))
}

func (p *Postgres) TopicByTitle(ctx context.Context, title string) (*entity.Topic, error) {
	return p.store.Topics.FindOneBy(ctx, repository.By("title", title))
}

func (p *Postgres) SubjectByLabel(ctx context.Context, label string) (*entity.SchoolSubject, error) {
	return p.store.Subjects.FindOneBy(ctx, repository.By("label", label))
}

func (p *Postgres) StatusByLabel(ctx context.Context, label string) (*entity.ExamStatus, error) {
	return p.store.Statuses.FindOneBy(ctx, repository.By("label", label))
}

func (p *Postgres) ExamSubjects(ctx context.Context, examID int64) ([]*entity.ExamHasSchoolSubject, error) {
	return p.store.ExamSubjects.FindBy(ctx, repository.By("exam_id", examID))
}

func (p *Postgres) Persist(ctx context.Context, e entity.Entity) (int64, error) {
	return p.store.Manager.Persist(ctx, e)
}

func (p *Postgres) Enqueue(ctx context.Context, task string, payload any) error {
	tx := p.store.Tx()
	if tx == nil {
		return errNoTx
	}
	if p.jobs == nil {
		return nil
	}
	return p.jobs.EnqueueTx(ctx, tx, task, payload)
}
