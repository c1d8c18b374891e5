// Package store keeps the theme preference somewhere that outlives a page.
//
// Cookie keeps it in the browser, which is the default and needs nothing on
// the server. Memory and Redis keep it on the server, keyed by the client ID
// that ClientIDs hands out in a signed cookie.
package store

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/lib/view"
)

var (
	ErrNoClientID = errors.New("store: no client ID")
)

// CookieOptions are shared by every cookie this package sets.
type CookieOptions struct {
	Domain      string
	Partitioned bool
	Path        string
	TTL         time.Duration
}

func (co CookieOptions) cookie(name, value string) *http.Cookie {
	path := co.Path
	if path == "" {
		path = "/"
	}

	ttl := co.TTL
	if ttl == 0 {
		ttl = hasher.PreferenceTTL
	}

	return &http.Cookie{
		Name:        name,
		Value:       value,
		Expires:     time.Now().Add(ttl),
		MaxAge:      int(ttl.Seconds()),
		SameSite:    http.SameSiteLaxMode,
		HttpOnly:    true,
		Domain:      co.Domain,
		Partitioned: co.Partitioned,
		Path:        path,
	}
}

// Backend is a server-side preference store shared by all clients.
type Backend interface {
	Get(ctx context.Context, clientID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, clientID, key, value string) error
}

type scoped struct {
	backend  Backend
	clientID string
}

// Scope narrows a Backend down to the preferences of one client.
func Scope(backend Backend, clientID string) view.Storage {
	return scoped{backend: backend, clientID: clientID}
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	if s.clientID == "" {
		return "", false, ErrNoClientID
	}

	return s.backend.Get(ctx, s.clientID, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	if s.clientID == "" {
		return ErrNoClientID
	}

	return s.backend.Set(ctx, s.clientID, key, value)
}
