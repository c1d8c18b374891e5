package store

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/TecharoHQ/hasher"
)

// ClientIDs hands every browser a random ID inside an EdDSA-signed JWT
// cookie, so a client can't pick someone else's ID to read their
// preferences.
type ClientIDs struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	opts CookieOptions
}

func NewClientIDs(priv ed25519.PrivateKey, opts CookieOptions) (*ClientIDs, error) {
	if priv == nil {
		slog.Debug("no private key for client IDs, generating a new one")
		_, key, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("store: can't generate private key: %w", err)
		}
		priv = key
	}

	if opts.TTL == 0 {
		opts.TTL = hasher.PreferenceTTL
	}

	return &ClientIDs{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
		opts: opts,
	}, nil
}

// Identify returns the client ID carried by r, minting and setting a new
// one when the cookie is missing, expired or not signed by us.
func (c *ClientIDs) Identify(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := c.verify(r); ok {
		return id, nil
	}

	id := uuid.NewString()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.opts.TTL)),
	})

	tokenString, err := token.SignedString(c.priv)
	if err != nil {
		return "", fmt.Errorf("store: can't sign client ID: %w", err)
	}

	http.SetCookie(w, c.opts.cookie(hasher.ClientCookieName, tokenString))
	slog.Debug("issued client ID", "client_id", id)

	return id, nil
}

func (c *ClientIDs) verify(r *http.Request) (string, bool) {
	ckie, err := r.Cookie(hasher.ClientCookieName)
	if err != nil {
		return "", false
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(ckie.Value, &claims, func(token *jwt.Token) (interface{}, error) {
		return c.pub, nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))
	if err != nil || !token.Valid {
		slog.Debug("invalid client ID token", "err", err)
		return "", false
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		slog.Debug("client ID is not a UUID", "err", err)
		return "", false
	}

	return claims.Subject, true
}
