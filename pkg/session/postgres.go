package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps sessions in the "sessions" table.
//
// Schema (see migrations):
//
//	CREATE TABLE sessions (
//	    id         UUID PRIMARY KEY,
//	    token      TEXT NOT NULL UNIQUE,
//	    user_id    TEXT NOT NULL DEFAULT '',
//	    data       JSONB NOT NULL DEFAULT '{}',
//	    created_at TIMESTAMPTZ NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db  DB
	now func() time.Time
}

// NewPostgresStore creates a session store backed by PostgreSQL.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("session: encode values: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO sessions (id, token, user_id, data, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.Token, sess.UserID, data, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("session: create: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var (
		sess Session
		data []byte
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, token, user_id, data, created_at, expires_at
		 FROM sessions WHERE token = $1`,
		token,
	).Scan(&sess.ID, &sess.Token, &sess.UserID, &data, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}

	if err := json.Unmarshal(data, &sess.Values); err != nil {
		return nil, errors.Join(ErrCorrupted, err)
	}
	if sess.Values == nil {
		sess.Values = make(map[string]string)
	}
	if sess.IsExpired(s.now()) {
		return nil, ErrExpired
	}
	return &sess, nil
}

func (s *PostgresStore) Update(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("session: encode values: %w", err)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET token = $2, user_id = $3, data = $4, expires_at = $5
		 WHERE id = $1`,
		sess.ID, sess.Token, sess.UserID, data, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("session: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("session: delete by user: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	return tag.RowsAffected(), nil
}
