package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps sessions in the shop_sessions table.
type PostgresStore struct {
	db querier
}

func NewPostgresStore(db querier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, shop string) (*Session, error) {
	const q = `
SELECT shop_domain, access_token, COALESCE(scope,''), installed_at
FROM shop_sessions
WHERE shop_domain = $1
`
	s := &Session{}
	if err := p.db.QueryRow(ctx, q, shop).Scan(&s.Shop, &s.AccessToken, &s.Scope, &s.InstalledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session shop=%s: %w", shop, err)
	}
	return s, nil
}

func (p *PostgresStore) Set(ctx context.Context, s *Session) error {
	const q = `
INSERT INTO shop_sessions (shop_domain, access_token, scope, installed_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (shop_domain) DO UPDATE SET
  access_token = EXCLUDED.access_token,
  scope = EXCLUDED.scope,
  installed_at = EXCLUDED.installed_at
`
	if _, err := p.db.Exec(ctx, q, s.Shop, s.AccessToken, s.Scope, s.InstalledAt); err != nil {
		return fmt.Errorf("save session shop=%s: %w", s.Shop, err)
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, shop string) error {
	const q = `DELETE FROM shop_sessions WHERE shop_domain = $1`
	if _, err := p.db.Exec(ctx, q, shop); err != nil {
		return fmt.Errorf("delete session shop=%s: %w", shop, err)
	}
	return nil
}
