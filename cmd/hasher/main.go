package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/facebookgo/flagenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/internal"
	libhasher "github.com/TecharoHQ/hasher/lib"
)

var (
	basePrefix        = flag.String("base-prefix", "", "path the hasher page is mounted under, e.g. /tools/hasher")
	bind              = flag.String("bind", ":8923", "address the hasher page listens on")
	bindNetwork       = flag.String("bind-network", "tcp", "listener network for the hasher page: tcp or unix")
	cookieDomain      = flag.String("cookie-domain", "", "domain to scope preference and client ID cookies to")
	cookiePartitioned = flag.Bool("cookie-partitioned", false, "mark preference cookies as Partitioned (CHIPS)")
	signingKeyHex     = flag.String("ed25519-private-key-hex", "", "hex-encoded ed25519 seed that signs client IDs; a throwaway key is used when empty")
	signingKeyFile    = flag.String("ed25519-private-key-hex-file", "", "file holding the hex-encoded ed25519 seed that signs client IDs")
	metricsBind       = flag.String("metrics-bind", ":9090", "address Prometheus metrics are served on, empty to disable")
	metricsNetwork    = flag.String("metrics-bind-network", "tcp", "listener network for metrics: tcp or unix")
	socketMode        = flag.String("socket-mode", "0770", "octal permissions applied to unix sockets")
	robotsTxt         = flag.Bool("serve-robots-txt", false, "answer /robots.txt with a disallow-everything policy")
	toastConfig       = flag.String("notifications-fname", "", "YAML or JSON file overriding the built-in toast settings")
	preferenceStore   = flag.String("preference-store", string(PreferenceStoreCookie), "where to keep theme preferences: cookie, memory or redis")
	preferenceTTL     = flag.Duration("preference-ttl", hasher.PreferenceTTL, "how long a theme preference is remembered")
	redisURL          = flag.String("redis-url", "", "redis:// URL of the server to keep preferences in when preference-store is redis")
	slogLevel         = flag.String("slog-level", "INFO", "minimum log level: DEBUG, INFO, WARN or ERROR")
	healthcheck       = flag.Bool("healthcheck", false, "check the metrics endpoint of a running hasher and exit")
	trustedProxies    = flag.String("trusted-proxies", "", "comma-separated CIDRs allowed to set X-Forwarded-For, if unset every peer is trusted")
	useRemoteAddress  = flag.Bool("use-remote-address", false, "take the client IP from the TCP peer instead of X-Real-IP")
	cleanupEvery      = flag.Duration("cleanup-interval", time.Hour, "how often expired in-memory preferences are swept")
)

func keyFromHex(value string) (ed25519.PrivateKey, error) {
	seed, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("signing key must be hex: %w", err)
	}

	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key must be a %d byte seed, got %d bytes", ed25519.SeedSize, len(seed))
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

func signingKey() (ed25519.PrivateKey, error) {
	switch {
	case *signingKeyHex != "" && *signingKeyFile != "":
		return nil, errors.New("set either ED25519_PRIVATE_KEY_HEX or ED25519_PRIVATE_KEY_HEX_FILE, not both")
	case *signingKeyHex != "":
		return keyFromHex(*signingKeyHex)
	case *signingKeyFile != "":
		raw, err := os.ReadFile(*signingKeyFile)
		if err != nil {
			return nil, fmt.Errorf("can't read signing key file: %w", err)
		}
		return keyFromHex(string(bytes.TrimSpace(raw)))
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("can't generate signing key: %w", err)
	}

	slog.Warn("using a throwaway signing key, server-side preferences are lost on restart and are not shared between replicas")
	return priv, nil
}

func checkHealth() error {
	resp, err := http.Get("http://localhost" + *metricsBind + "/metrics")
	if err != nil {
		return fmt.Errorf("metrics endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metrics endpoint answered %s", resp.Status)
	}

	return nil
}

// displayAddress turns a listener address into something clickable in logs.
func displayAddress(network, address string) string {
	switch network {
	case "unix":
		return "unix:" + address
	case "tcp":
		if strings.HasPrefix(address, ":") {
			return "http://localhost" + address
		}
		return "http://" + address
	default:
		return network + "!" + address
	}
}

func listen(network, address string) (net.Listener, error) {
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("can't listen on %s: %w", displayAddress(network, address), err)
	}

	if network != "unix" {
		return ln, nil
	}

	mode, err := strconv.ParseUint(*socketMode, 8, 32)
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("socket mode %q is not octal: %w", *socketMode, err)
	}

	if err := os.Chmod(address, os.FileMode(mode)); err != nil {
		ln.Close()
		return nil, fmt.Errorf("can't chmod socket %s: %w", address, err)
	}

	return ln, nil
}

// serve runs h on ln until ctx is done, then drains it for up to five seconds.
func serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h}

	go func() {
		<-ctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			slog.Error("shutdown did not drain cleanly", "err", err)
		}
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func sweepPreferences(ctx context.Context, s *libhasher.Server, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if left := s.CleanupDecayMap(); left >= 0 {
				slog.Debug("swept expired preferences", "remaining", left)
			}
		}
	}
}

func main() {
	flagenv.Parse()
	flag.Parse()

	internal.InitSlog(*slogLevel)

	if *healthcheck {
		if err := checkHealth(); err != nil {
			log.Fatalf("unhealthy: %v", err)
		}
		return
	}

	notifications, err := libhasher.LoadNotificationsOrDefault(*toastConfig)
	if err != nil {
		log.Fatalf("toast settings: %v", err)
	}

	var cidrs []string
	if *trustedProxies != "" {
		cidrs = strings.Split(*trustedProxies, ",")
	}

	trusted, err := internal.TrustedProxies(cidrs)
	if err != nil {
		log.Fatalf("trusted proxies: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	preferences, err := makePreferences(dialCtx, PreferenceStore(*preferenceStore), *preferenceTTL, *redisURL)
	cancel()
	if err != nil {
		log.Fatalf("preference store: %v", err)
	}

	// client IDs are only handed out when preferences live server-side
	var priv ed25519.PrivateKey
	if preferences != nil {
		if priv, err = signingKey(); err != nil {
			log.Fatalf("signing key: %v", err)
		}
	}

	s, err := libhasher.New(libhasher.Options{
		Notifications:     notifications,
		Preferences:       preferences,
		PrivateKey:        priv,
		PreferenceTTL:     *preferenceTTL,
		ServeRobotsTXT:    *robotsTxt,
		CookieDomain:      *cookieDomain,
		CookiePartitioned: *cookiePartitioned,
		BasePrefix:        *basePrefix,
	})
	if err != nil {
		log.Fatalf("hasher: %v", err)
	}

	var wg sync.WaitGroup
	if *metricsBind != "" {
		ln, err := listen(*metricsNetwork, *metricsBind)
		if err != nil {
			log.Fatal(err)
		}
		slog.Debug("serving metrics", "url", displayAddress(*metricsNetwork, *metricsBind))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serve(ctx, ln, mux); err != nil {
				log.Fatalf("metrics: %v", err)
			}
		}()
	}

	if *cleanupEvery > 0 {
		go sweepPreferences(ctx, s, *cleanupEvery)
	}

	var h http.Handler = s
	h = internal.RemoteXRealIP(*useRemoteAddress, *bindNetwork, h)
	h = internal.XForwardedForToXRealIP(trusted, h)

	ln, err := listen(*bindNetwork, *bind)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info(
		"hasher ready",
		"url", displayAddress(*bindNetwork, *bind),
		"base_prefix", *basePrefix,
		"preference_store", *preferenceStore,
		"robots_txt", *robotsTxt,
		"toast_position", notifications.Toasts.Position,
		"toast_auto_close", notifications.AutoClose(),
		"remote_address", *useRemoteAddress,
		"version", hasher.Version,
	)

	if err := serve(ctx, ln, h); err != nil {
		log.Fatal(err)
	}
	wg.Wait()
}
