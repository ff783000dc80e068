// Package repository maps entity rows to PostgreSQL through pgx. A generic
// Repository covers lookups by id and by exact-match criteria; the
// EntityManager writes rows; specialised repositories add joins.
package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/examdesk/internal/entity"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record constrains P to be *T implementing entity.Entity.
type Record[T any] interface {
	*T
	entity.Entity
}

// Condition is one "field = value" term. A nil value matches NULL.
type Condition struct {
	Value any
	Field string
}

// Criteria is a conjunction of conditions, rendered in order.
type Criteria []Condition

// By starts a Criteria.
func By(field string, value any) Criteria {
	return Criteria{{Field: field, Value: value}}
}

// And appends a condition.
func (c Criteria) And(field string, value any) Criteria {
	return append(c, Condition{Field: field, Value: value})
}

// Sort orders results by Field.
type Sort struct {
	Field string
	Desc  bool
}

func Asc(field string) Sort  { return Sort{Field: field} }
func Desc(field string) Sort { return Sort{Field: field, Desc: true} }

// Repository reads rows of one entity type.
type Repository[T any, P Record[T]] struct {
	q Querier
}

func New[T any, P Record[T]](q Querier) *Repository[T, P] {
	return &Repository[T, P]{q: q}
}

func (r *Repository[T, P]) proto() P { return P(new(T)) }

func (r *Repository[T, P]) Find(ctx context.Context, id int64) (P, error) {
	rec := r.proto()
	query := selectSQL(rec) + " WHERE id = $1"
	if err := r.q.QueryRow(ctx, query, id).Scan(rec.ScanTargets()...); err != nil {
		return nil, wrap("find", rec.Table(), err)
	}
	return rec, nil
}

// FindForUpdate is Find with a row lock held until the surrounding
// transaction ends.
func (r *Repository[T, P]) FindForUpdate(ctx context.Context, id int64) (P, error) {
	rec := r.proto()
	query := selectSQL(rec) + " WHERE id = $1 FOR UPDATE"
	if err := r.q.QueryRow(ctx, query, id).Scan(rec.ScanTargets()...); err != nil {
		return nil, wrap("find for update", rec.Table(), err)
	}
	return rec, nil
}

func (r *Repository[T, P]) FindAll(ctx context.Context, sort ...Sort) ([]P, error) {
	return r.FindBy(ctx, nil, sort...)
}

func (r *Repository[T, P]) FindBy(ctx context.Context, c Criteria, sort ...Sort) ([]P, error) {
	rec := r.proto()
	where, args, err := whereSQL(rec, c)
	if err != nil {
		return nil, wrapField("find by", rec.Table(), err)
	}
	order, err := orderSQL(rec, sort)
	if err != nil {
		return nil, wrapField("find by", rec.Table(), err)
	}

	rows, err := r.q.Query(ctx, selectSQL(rec)+where+order, args...)
	if err != nil {
		return nil, wrap("find by", rec.Table(), err)
	}
	defer rows.Close()

	var out []P
	for rows.Next() {
		row := r.proto()
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, wrap("find by", rec.Table(), err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("find by", rec.Table(), err)
	}
	return out, nil
}

// FindOneBy returns the first match ordered by id.
func (r *Repository[T, P]) FindOneBy(ctx context.Context, c Criteria) (P, error) {
	rec := r.proto()
	where, args, err := whereSQL(rec, c)
	if err != nil {
		return nil, wrapField("find one by", rec.Table(), err)
	}
	query := selectSQL(rec) + where + " ORDER BY id LIMIT 1"
	if err := r.q.QueryRow(ctx, query, args...).Scan(rec.ScanTargets()...); err != nil {
		return nil, wrap("find one by", rec.Table(), err)
	}
	return rec, nil
}

func (r *Repository[T, P]) Count(ctx context.Context, c Criteria) (int, error) {
	rec := r.proto()
	where, args, err := whereSQL(rec, c)
	if err != nil {
		return 0, wrapField("count", rec.Table(), err)
	}
	var n int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM "+rec.Table()+where, args...).Scan(&n); err != nil {
		return 0, wrap("count", rec.Table(), err)
	}
	return n, nil
}

// IsUnique reports whether no row has field = value.
func (r *Repository[T, P]) IsUnique(ctx context.Context, field string, value any) (bool, error) {
	n, err := r.Count(ctx, By(field, value))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *Repository[T, P]) Remove(ctx context.Context, id int64) error {
	rec := r.proto()
	if _, err := r.q.Exec(ctx, "DELETE FROM "+rec.Table()+" WHERE id = $1", id); err != nil {
		return wrap("remove", rec.Table(), err)
	}
	return nil
}

// RemoveBy deletes every row matching c and returns how many were deleted.
// An empty Criteria is rejected.
func (r *Repository[T, P]) RemoveBy(ctx context.Context, c Criteria) (int64, error) {
	rec := r.proto()
	if len(c) == 0 {
		return 0, Invalid("remove by", rec.Table(), "", errEmptyCriteria)
	}
	where, args, err := whereSQL(rec, c)
	if err != nil {
		return 0, wrapField("remove by", rec.Table(), err)
	}
	tag, err := r.q.Exec(ctx, "DELETE FROM "+rec.Table()+where, args...)
	if err != nil {
		return 0, wrap("remove by", rec.Table(), err)
	}
	return tag.RowsAffected(), nil
}

func selectSQL(e entity.Entity) string {
	return "SELECT id, " + strings.Join(e.Columns(), ", ") + " FROM " + e.Table()
}

var errEmptyCriteria = errors.New("empty criteria")

// fieldError carries the rejected field out of the SQL builders.
type fieldError struct{ field string }

func (e fieldError) Error() string { return "unknown field " + e.field }

func wrapField(op, table string, err error) error {
	var fe fieldError
	if errors.As(err, &fe) {
		return unknownField(op, table, fe.field)
	}
	return wrap(op, table, err)
}

func known(e entity.Entity, field string) bool {
	return field == "id" || slices.Contains(e.Columns(), field)
}

func whereSQL(e entity.Entity, c Criteria) (string, []any, error) {
	if len(c) == 0 {
		return "", nil, nil
	}
	terms := make([]string, 0, len(c))
	args := make([]any, 0, len(c))
	for _, cond := range c {
		if !known(e, cond.Field) {
			return "", nil, fieldError{cond.Field}
		}
		if cond.Value == nil {
			terms = append(terms, cond.Field+" IS NULL")
			continue
		}
		args = append(args, cond.Value)
		terms = append(terms, fmt.Sprintf("%s = $%d", cond.Field, len(args)))
	}
	return " WHERE " + strings.Join(terms, " AND "), args, nil
}

func orderSQL(e entity.Entity, sort []Sort) (string, error) {
	if len(sort) == 0 {
		return " ORDER BY id", nil
	}
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		if !known(e, s.Field) {
			return "", fieldError{s.Field}
		}
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		parts = append(parts, s.Field+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
