package repositories

import (
	"context"
	"database/sql"
)

// CookieKey is the settings key holding the cookie string.
const CookieKey = "yt_cookies"

// CookieStore persists the cookie string. The value is opaque and replaced wholesale.
type CookieStore struct {
	settings *SettingsRepository
}

// NewCookieStore creates a [CookieStore] backed by the settings table.
func NewCookieStore(db *sql.DB) *CookieStore {
	return &CookieStore{settings: NewSettingsRepository(db)}
}

// Get returns the stored cookies, or "" when none are saved.
func (s *CookieStore) Get(ctx context.Context) (string, error) {
	value, _, err := s.settings.Get(ctx, CookieKey)
	return value, err
}

// Set saves value. An empty value removes the stored cookies.
func (s *CookieStore) Set(ctx context.Context, value string) error {
	if value == "" {
		return s.settings.Delete(ctx, CookieKey)
	}
	return s.settings.Set(ctx, CookieKey, value)
}

// Has reports whether cookies are saved.
func (s *CookieStore) Has(ctx context.Context) (bool, error) {
	return s.settings.Has(ctx, CookieKey)
}
