package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func realIPRecorder(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = r.Header.Get("X-Real-Ip")
		w.WriteHeader(http.StatusOK)
	})
}

func TestXForwardedForToXRealIP(t *testing.T) {
	trusted, err := TrustedProxies([]string{"10.0.0.0/8", " "})
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		trusted    bool
		want       string
	}{
		{
			name:       "trust-everyone",
			remoteAddr: "192.0.2.1:1234",
			xff:        "1.1.1.1,10.20.30.40",
			want:       "1.1.1.1",
		},
		{
			name:       "trusted-peer",
			remoteAddr: "10.1.2.3:1234",
			xff:        "1.1.1.1",
			trusted:    true,
			want:       "1.1.1.1",
		},
		{
			name:       "untrusted-peer",
			remoteAddr: "192.0.2.1:1234",
			xff:        "1.1.1.1",
			trusted:    true,
			want:       "",
		},
		{
			name:       "real-ip-already-set",
			remoteAddr: "10.1.2.3:1234",
			xff:        "1.1.1.1",
			realIP:     "8.8.8.8",
			want:       "8.8.8.8",
		},
		{
			name:       "no-xff",
			remoteAddr: "10.1.2.3:1234",
			want:       "",
		},
		{
			name:       "unix-peer",
			remoteAddr: "@",
			xff:        "1.1.1.1",
			trusted:    true,
			want:       "",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var got string

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-Ip", tt.realIP)
			}

			h := XForwardedForToXRealIP(nil, realIPRecorder(&got))
			if tt.trusted {
				h = XForwardedForToXRealIP(trusted, realIPRecorder(&got))
			}

			h.ServeHTTP(httptest.NewRecorder(), r)

			if got != tt.want {
				t.Errorf("wanted X-Real-Ip %q, got: %q", tt.want, got)
			}
		})
	}
}

func TestTrustedProxiesInvalid(t *testing.T) {
	if _, err := TrustedProxies([]string{"not-a-cidr"}); err == nil {
		t.Error("wanted an error for an invalid CIDR")
	}

	rng, err := TrustedProxies(nil)
	if err != nil {
		t.Fatal(err)
	}

	if rng != nil {
		t.Error("wanted a nil ranger for an empty list")
	}
}

func TestRemoteXRealIP(t *testing.T) {
	for _, tt := range []struct {
		name        string
		use         bool
		bindNetwork string
		want        string
	}{
		{name: "disabled", use: false, bindNetwork: "tcp", want: ""},
		{name: "tcp", use: true, bindNetwork: "tcp", want: "192.0.2.1"},
		{name: "unix", use: true, bindNetwork: "unix", want: "127.0.0.1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var got string

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "192.0.2.1:4242"

			RemoteXRealIP(tt.use, tt.bindNetwork, realIPRecorder(&got)).ServeHTTP(httptest.NewRecorder(), r)

			if got != tt.want {
				t.Errorf("wanted X-Real-Ip %q, got: %q", tt.want, got)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	NoStoreCache(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("wanted no-store, got: %q", got)
	}

	w = httptest.NewRecorder()
	NoBrowsing(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("wanted directory listing to 404, got: %d", w.Code)
	}

	w = httptest.NewRecorder()
	NoBrowsing(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/js/main.mjs", nil))
	if w.Code != http.StatusOK {
		t.Errorf("wanted file to be served, got: %d", w.Code)
	}
}
