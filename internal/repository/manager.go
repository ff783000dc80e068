package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrymomot/examdesk/internal/entity"
)

// EntityManager writes entities of any type.
type EntityManager struct {
	q Querier
}

func NewEntityManager(q Querier) *EntityManager {
	return &EntityManager{q: q}
}

// Persist inserts e when it has no id yet, setting the generated id on e,
// and updates every column otherwise.
func (m *EntityManager) Persist(ctx context.Context, e entity.Entity) (int64, error) {
	if e.GetID() == 0 {
		return m.insert(ctx, e)
	}
	return e.GetID(), m.update(ctx, e)
}

func (m *EntityManager) insert(ctx context.Context, e entity.Entity) (int64, error) {
	cols := e.Columns()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	query := "INSERT INTO " + e.Table() + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") RETURNING id"

	var id int64
	if err := m.q.QueryRow(ctx, query, e.Values()...).Scan(&id); err != nil {
		return 0, wrap("insert", e.Table(), err)
	}
	e.SetID(id)
	return id, nil
}

func (m *EntityManager) update(ctx context.Context, e entity.Entity) error {
	cols := e.Columns()
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args := append(e.Values(), e.GetID())
	query := "UPDATE " + e.Table() + " SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(" WHERE id = $%d", len(args))

	tag, err := m.q.Exec(ctx, query, args...)
	if err != nil {
		return wrap("update", e.Table(), err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound("update", e.Table())
	}
	return nil
}

// Remove deletes e by id.
func (m *EntityManager) Remove(ctx context.Context, e entity.Entity) error {
	if _, err := m.q.Exec(ctx, "DELETE FROM "+e.Table()+" WHERE id = $1", e.GetID()); err != nil {
		return wrap("remove", e.Table(), err)
	}
	return nil
}
