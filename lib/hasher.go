package lib

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/data"
	"github.com/TecharoHQ/hasher/internal"
	"github.com/TecharoHQ/hasher/lib/notify"
	"github.com/TecharoHQ/hasher/lib/store"
	"github.com/TecharoHQ/hasher/lib/view"
	"github.com/TecharoHQ/hasher/web"
	"github.com/TecharoHQ/hasher/xess"
)

var (
	digestsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hasher_digests_computed",
		Help: "The total number of digests computed",
	})

	emptySubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hasher_empty_submissions",
		Help: "The total number of submissions rejected for being empty",
	})

	clipboardCopies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hasher_clipboard_copies",
		Help: "The total number of digests copied to the clipboard",
	})

	outputDismissals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hasher_output_dismissals",
		Help: "The total number of times a digest was dismissed",
	})

	themeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hasher_theme_toggles",
		Help: "The total number of theme toggles, by resulting theme",
	}, []string{"theme"})

	actionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hasher_action_requests",
		Help: "The total number of form actions handled",
	}, []string{"action"})

	preferencesHeld = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hasher_preferences_held",
		Help: "The number of preferences kept in memory after the last cleanup",
	})
)

// maxFormBytes bounds how much text a single request may ask us to hash.
const maxFormBytes = 1 << 20

type Options struct {
	Notifications *notify.ParsedConfig

	// Preferences keeps the theme on the server. If nil, the theme is kept
	// in a browser cookie.
	Preferences store.Backend
	PrivateKey  ed25519.PrivateKey

	// PreferenceTTL is how long preference and client ID cookies live.
	// Defaults to hasher.PreferenceTTL.
	PreferenceTTL time.Duration

	ServeRobotsTXT bool

	CookieDomain      string
	CookiePartitioned bool

	BasePrefix string

	// Hash defaults to SHA-256.
	Hash view.HashFunc

	// CheckDigest validates digests carried back by the form. See
	// view.Options for the defaults.
	CheckDigest view.DigestCheck
}

func LoadNotificationsOrDefault(fname string) (*notify.ParsedConfig, error) {
	var fin io.ReadCloser
	var err error

	if fname != "" {
		fin, err = os.Open(fname)
		if err != nil {
			return nil, fmt.Errorf("can't parse notification file %s: %w", fname, err)
		}
	} else {
		fname = "(data)/notifications.yaml"
		fin, err = data.Notifications.Open("notifications.yaml")
		if err != nil {
			return nil, fmt.Errorf("[unexpected] can't parse builtin notification file %s: %w", fname, err)
		}
	}

	defer func(fin io.ReadCloser) {
		err := fin.Close()
		if err != nil {
			slog.Error("failed to close notification file", "file", fname, "err", err)
		}
	}(fin)

	return notify.ParseConfig(fin, fname)
}

func New(opts Options) (*Server, error) {
	if opts.Notifications == nil {
		nc, err := LoadNotificationsOrDefault("")
		if err != nil {
			return nil, fmt.Errorf("lib: can't load default notifications: %w", err)
		}
		opts.Notifications = nc
	}

	hasher.BasePrefix = strings.TrimSuffix(opts.BasePrefix, "/")

	cookiePath := "/"
	if hasher.BasePrefix != "" {
		cookiePath = hasher.BasePrefix + "/"
	}

	result := &Server{
		opts: opts,
		cookies: store.CookieOptions{
			Domain:      opts.CookieDomain,
			Partitioned: opts.CookiePartitioned,
			Path:        cookiePath,
			TTL:         opts.PreferenceTTL,
		},
	}

	if opts.Preferences != nil {
		ids, err := store.NewClientIDs(opts.PrivateKey, result.cookies)
		if err != nil {
			return nil, fmt.Errorf("lib: can't set up client IDs: %w", err)
		}
		result.ids = ids
	}

	mux := http.NewServeMux()
	xess.Mount(mux)

	// Helper to add global prefix
	registerWithPrefix := func(pattern string, handler http.Handler, method string) {
		if method != "" {
			method = method + " " // methods must end with a space to register with them
		}

		// If pattern doesn't start with a slash, add one
		if !strings.HasPrefix(pattern, "/") {
			pattern = "/" + pattern
		}

		mux.Handle(method+hasher.BasePrefix+pattern, handler)
	}

	stripPrefix := hasher.BasePrefix + hasher.StaticPath
	registerWithPrefix(hasher.StaticPath, internal.UnchangingCache(internal.NoBrowsing(http.StripPrefix(stripPrefix, http.FileServerFS(web.Static)))), "")

	if opts.ServeRobotsTXT {
		registerWithPrefix("/robots.txt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, web.Static, "static/robots.txt")
		}), "GET")
		registerWithPrefix("/.well-known/robots.txt", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFileFS(w, r, web.Static, "static/robots.txt")
		}), "GET")
	}

	registerWithPrefix(hasher.APIPrefix+"hash", http.HandlerFunc(result.APIHash), "POST")
	registerWithPrefix("/{$}", http.HandlerFunc(result.RenderIndex), "GET")
	registerWithPrefix("/{$}", http.HandlerFunc(result.HandleAction), "POST")

	result.mux = mux

	return result, nil
}

type Server struct {
	mux     *http.ServeMux
	opts    Options
	cookies store.CookieOptions
	ids     *store.ClientIDs
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func requestLogger(r *http.Request) *slog.Logger {
	return slog.With(
		"user_agent", r.UserAgent(),
		"accept_language", r.Header.Get("Accept-Language"),
		"x-forwarded-for", r.Header.Get("X-Forwarded-For"),
		"x-real-ip", r.Header.Get("X-Real-Ip"),
	)
}

// storageFor picks where the theme preference of the client behind r lives.
func (s *Server) storageFor(w http.ResponseWriter, r *http.Request) (view.Storage, error) {
	if s.opts.Preferences == nil {
		return store.NewCookie(w, r, s.cookies), nil
	}

	id, err := s.ids.Identify(w, r)
	if err != nil {
		return nil, err
	}

	return store.Scope(s.opts.Preferences, id), nil
}

// requestView is a HasherView wired up for one request, along with the
// capabilities whose effects end up in the rendered page.
type requestView struct {
	*view.HasherView
	toasts    *notify.Collector
	clipboard *pageClipboard
	lg        *slog.Logger
}

func (s *Server) newView(w http.ResponseWriter, r *http.Request) (*requestView, error) {
	lg := requestLogger(r)

	storage, err := s.storageFor(w, r)
	if err != nil {
		return nil, err
	}

	rv := &requestView{
		toasts:    notify.NewCollector(s.opts.Notifications.Toasts),
		clipboard: &pageClipboard{},
		lg:        lg,
	}

	rv.HasherView = view.New(view.Options{
		Storage:     storage,
		Clipboard:   rv.clipboard,
		Notifier:    rv.toasts,
		Hash:        s.opts.Hash,
		CheckDigest: s.opts.CheckDigest,
		Messages:    s.opts.Notifications.Messages,
		Logger:      lg,
	})
	rv.Initialize(r.Context())

	return rv, nil
}

func (s *Server) RenderIndex(w http.ResponseWriter, r *http.Request) {
	rv, err := s.newView(w, r)
	if err != nil {
		requestLogger(r).Error("can't set up view", "err", err)
		s.renderError(w, r, "Could not load your preferences, please try again later.", http.StatusInternalServerError)
		return
	}

	s.render(w, r, rv, http.StatusOK)
}

// HandleAction applies one form action to the state the form carried and
// renders the result.
func (s *Server) HandleAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		requestLogger(r).Debug("can't parse form", "err", err)
		s.renderError(w, r, "Your request could not be read.", http.StatusBadRequest)
		return
	}

	rv, err := s.newView(w, r)
	if err != nil {
		requestLogger(r).Error("can't set up view", "err", err)
		s.renderError(w, r, "Could not load your preferences, please try again later.", http.StatusInternalServerError)
		return
	}

	rv.SetInput(r.PostFormValue("text"))
	rv.Resume(r.PostFormValue("hashed"))

	action := Action(r.PostFormValue("action"))
	if action == ActionUnknown {
		// pressing enter in the text field without a script submits no button
		action = ActionHash
	}

	lg := rv.lg.With("action", action)
	ctx := r.Context()

	switch action {
	case ActionHash:
		res := rv.Submit(ctx)
		lg.Debug("submitted", "result", res)
		if res.Accepted {
			digestsComputed.Inc()
		} else {
			emptySubmissions.Inc()
		}
	case ActionCopy:
		if err := rv.CopyToClipboard(ctx); err != nil {
			lg.Debug("nothing to copy", "err", err)
			s.renderError(w, r, "There is no digest to copy.", http.StatusBadRequest)
			return
		}
		clipboardCopies.Inc()
	case ActionDismiss:
		rv.DismissOutput()
		outputDismissals.Inc()
	case ActionTheme:
		theme, err := rv.ToggleTheme(ctx)
		if err != nil {
			lg.Error("can't store theme", "err", err)
			s.renderError(w, r, "Could not save your theme, please try again later.", http.StatusInternalServerError)
			return
		}
		themeToggles.WithLabelValues(theme.String()).Inc()
	default:
		lg.Debug("unknown action")
		s.renderError(w, r, fmt.Sprintf("Unknown action %q.", action), http.StatusBadRequest)
		return
	}

	actionRequests.WithLabelValues(string(action)).Inc()
	s.render(w, r, rv, http.StatusOK)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, rv *requestView, status int) {
	state := rv.State()

	page := web.Page{
		Theme:      state.Theme,
		Input:      state.Input,
		Hashed:     state.Hashed,
		Toasts:     rv.toasts.Toasts(),
		ToastRules: s.opts.Notifications.Toasts,
		Clipboard:  rv.clipboard.pending,
		ActionURL:  hasher.BasePrefix + "/",
	}

	internal.NoStoreCache(
		templ.Handler(web.Base("SHA-256 Hasher", state.Theme, web.Index(page)), templ.WithStatus(status)),
	).ServeHTTP(w, r)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, msg string, status int) {
	internal.NoStoreCache(
		templ.Handler(web.Base("Oh noes!", view.ThemeLight, web.ErrorPage(msg)), templ.WithStatus(status)),
	).ServeHTTP(w, r)
}

type hashRequest struct {
	Text string `json:"text"`
}

type hashResponse struct {
	Digest string `json:"digest,omitempty"`
	Error  string `json:"error,omitempty"`
}

// APIHash hashes text without rendering a page. It accepts a JSON body or a
// form.
func (s *Server) APIHash(w http.ResponseWriter, r *http.Request) {
	lg := requestLogger(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var req hashRequest
	var maxBytesErr *http.MaxBytesError
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			lg.Debug("can't decode hash request", "err", err)
			if errors.As(err, &maxBytesErr) {
				writeJSON(w, lg, http.StatusRequestEntityTooLarge, hashResponse{Error: "request body is too large"})
				return
			}
			writeJSON(w, lg, http.StatusBadRequest, hashResponse{Error: "request body is not valid JSON"})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			if errors.As(err, &maxBytesErr) {
				writeJSON(w, lg, http.StatusRequestEntityTooLarge, hashResponse{Error: "request body is too large"})
				return
			}
			writeJSON(w, lg, http.StatusBadRequest, hashResponse{Error: "request body is not a valid form"})
			return
		}
		req.Text = r.PostFormValue("text")
	}

	toasts := notify.NewCollector(s.opts.Notifications.Toasts)
	v := view.New(view.Options{
		Notifier:    toasts,
		Hash:        s.opts.Hash,
		CheckDigest: s.opts.CheckDigest,
		Messages:    s.opts.Notifications.Messages,
		Logger:      lg,
	})

	v.SetInput(req.Text)
	res := v.Submit(r.Context())
	if !res.Accepted {
		emptySubmissions.Inc()
		msg := s.opts.Notifications.Messages.EmptyInput
		if t := toasts.Toasts(); len(t) != 0 {
			msg = t[len(t)-1].Message
		}
		writeJSON(w, lg, http.StatusBadRequest, hashResponse{Error: msg})
		return
	}

	digestsComputed.Inc()
	writeJSON(w, lg, http.StatusOK, hashResponse{Digest: res.Digest})
}

func writeJSON(w http.ResponseWriter, lg *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		lg.Error("failed to encode response", "err", err)
	}
}
