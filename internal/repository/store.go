package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/examdesk/internal/entity"
	"github.com/dmitrymomot/examdesk/pkg/db"
)

// Store bundles the repositories bound to one Querier, either the pool or
// a transaction.
type Store struct {
	tx pgx.Tx

	Users        *Repository[entity.User, *entity.User]
	Roles        *RoleRepository
	Permissions  *Repository[entity.RolePermission, *entity.RolePermission]
	Grants       *Repository[entity.UserRoleHasRolePermission, *entity.UserRoleHasRolePermission]
	Subjects     *Repository[entity.SchoolSubject, *entity.SchoolSubject]
	Topics       *Repository[entity.Topic, *entity.Topic]
	Exams        *ExamRepository
	ExamSubjects *Repository[entity.ExamHasSchoolSubject, *entity.ExamHasSchoolSubject]
	Statuses     *Repository[entity.ExamStatus, *entity.ExamStatus]
	History      *Repository[entity.ExamHasExamStatus, *entity.ExamHasExamStatus]
	Claims       *Repository[entity.UserHasExam, *entity.UserHasExam]
	Manager      *EntityManager
}

func NewStore(q Querier) *Store {
	s := &Store{
		Users:        New[entity.User](q),
		Roles:        NewRoleRepository(q),
		Permissions:  New[entity.RolePermission](q),
		Grants:       New[entity.UserRoleHasRolePermission](q),
		Subjects:     New[entity.SchoolSubject](q),
		Topics:       New[entity.Topic](q),
		Exams:        NewExamRepository(q),
		ExamSubjects: New[entity.ExamHasSchoolSubject](q),
		Statuses:     New[entity.ExamStatus](q),
		History:      New[entity.ExamHasExamStatus](q),
		Claims:       New[entity.UserHasExam](q),
		Manager:      NewEntityManager(q),
	}
	if tx, ok := q.(pgx.Tx); ok {
		s.tx = tx
	}
	return s
}

// Tx returns the transaction the store is bound to, or nil.
func (s *Store) Tx() pgx.Tx { return s.tx }

// Transactor runs workflows in a single transaction.
type Transactor struct {
	db db.TxBeginner
}

func NewTransactor(b db.TxBeginner) *Transactor {
	return &Transactor{db: b}
}

// InTx commits when fn returns nil and rolls back on error or panic.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context, s *Store) error) error {
	return db.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		return fn(ctx, NewStore(tx))
	})
}
