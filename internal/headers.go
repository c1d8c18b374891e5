package internal

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/TecharoHQ/hasher"
	"github.com/sebest/xff"
	"github.com/yl2chen/cidranger"
)

// UnchangingCache sets the Cache-Control header to cache a response for 1 year if
// and only if the application is compiled in "release" mode by Docker.
func UnchangingCache(next http.Handler) http.Handler {
	if hasher.Version == "devel" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000")
		next.ServeHTTP(w, r)
	})
}

// NoStoreCache sets the Cache-Control header to no-store, so rendered pages
// (which may carry the user's input and digest) never land in a cache.
func NoStoreCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// NoBrowsing returns 404 for directory paths so the static file server
// never renders a listing.
func NoBrowsing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RemoteXRealIP sets the X-Real-Ip header to the request's remote address
// when useRemoteAddress is set. Unix sockets have no meaningful remote
// address, so they get the loopback address instead.
func RemoteXRealIP(useRemoteAddress bool, bindNetwork string, next http.Handler) http.Handler {
	if !useRemoteAddress {
		slog.Debug("skipping middleware, useRemoteAddress is false")
		return next
	}

	if bindNetwork == "unix" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Set("X-Real-Ip", "127.0.0.1")
			next.ServeHTTP(w, r)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			slog.Debug("can't split remote address", "remote_addr", r.RemoteAddr, "err", err)
			next.ServeHTTP(w, r)
			return
		}

		r.Header.Set("X-Real-Ip", host)
		next.ServeHTTP(w, r)
	})
}

// TrustedProxies builds a ranger out of a list of CIDRs. An empty list
// yields a nil ranger, meaning every peer is trusted.
func TrustedProxies(cidrs []string) (cidranger.Ranger, error) {
	if len(cidrs) == 0 {
		return nil, nil
	}

	ranger := cidranger.NewPCTrieRanger()
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		_, rng, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("internal: can't parse trusted proxy range %q: %w", cidr, err)
		}

		if err := ranger.Insert(cidranger.NewBasicRangerEntry(*rng)); err != nil {
			return nil, fmt.Errorf("internal: can't insert trusted proxy range %q: %w", cidr, err)
		}
	}

	return ranger, nil
}

// XForwardedForToXRealIP sets the X-Real-Ip header based on the contents
// of the X-Forwarded-For header. If trusted is non-nil, the header is only
// honoured when the direct peer is inside one of the trusted ranges.
func XForwardedForToXRealIP(trusted cidranger.Ranger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xffHeader := r.Header.Get("X-Forwarded-For")
		if r.Header.Get("X-Real-Ip") != "" || xffHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		if trusted != nil && !peerTrusted(trusted, r.RemoteAddr) {
			slog.Debug("ignoring x-forwarded-for from untrusted peer", "remote_addr", r.RemoteAddr)
			next.ServeHTTP(w, r)
			return
		}

		if ip := xff.Parse(xffHeader); ip != "" {
			slog.Debug("setting x-real-ip", "val", ip)
			r.Header.Set("X-Real-Ip", ip)
		}

		next.ServeHTTP(w, r)
	})
}

func peerTrusted(trusted cidranger.Ranger, remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	ok, err := trusted.Contains(ip)
	if err != nil {
		slog.Debug("can't check trusted proxy ranges", "ip", host, "err", err)
		return false
	}

	return ok
}
