package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is an installed shop. Its presence in a Store means the shop is
// authenticated; absence means it has to go through OAuth again.
type Session struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"accessToken"`
	Scope       string    `json:"scope,omitempty"`
	InstalledAt time.Time `json:"installedAt"`
}

// Store keeps sessions keyed by shop domain. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns ErrNotFound when the shop has no session.
	Get(ctx context.Context, shop string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	// Delete is a no-op for unknown shops.
	Delete(ctx context.Context, shop string) error
}

// Exists reports whether shop currently has a session.
func Exists(ctx context.Context, st Store, shop string) (bool, error) {
	_, err := st.Get(ctx, shop)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
