package store

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/TecharoHQ/hasher"
)

// Cookie stores preferences in browser cookies for the lifetime of one
// request. Values set during the request are visible to later Gets.
type Cookie struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	written map[string]string
}

func NewCookie(w http.ResponseWriter, r *http.Request, opts CookieOptions) *Cookie {
	return &Cookie{
		w:       w,
		r:       r,
		opts:    opts,
		written: map[string]string{},
	}
}

func cookieName(key string) string {
	return hasher.PreferenceCookiePrefix + key
}

func (c *Cookie) Get(_ context.Context, key string) (string, bool, error) {
	if val, ok := c.written[key]; ok {
		return val, true, nil
	}

	ckie, err := c.r.Cookie(cookieName(key))
	if err != nil {
		return "", false, nil
	}

	val, err := url.QueryUnescape(ckie.Value)
	if err != nil {
		slog.Debug("preference cookie is not escaped, using it raw", "key", key, "err", err)
		return ckie.Value, true, nil
	}

	return val, true, nil
}

func (c *Cookie) Set(_ context.Context, key, value string) error {
	http.SetCookie(c.w, c.opts.cookie(cookieName(key), url.QueryEscape(value)))
	c.written[key] = value

	return nil
}
