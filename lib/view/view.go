// Package view holds the state machine behind the hasher page.
//
// A HasherView owns four pieces of state: the theme, the text being typed,
// the last digest and (implicitly, through its Notifier) the toasts on
// screen. Everything it touches outside of that goes through the Storage,
// Clipboard, Notifier and HashFunc capabilities handed to New. A view is not
// safe for concurrent use; the HTTP layer builds one per request.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/internal"
)

var (
	ErrNoOutput = errors.New("view: there is no digest to copy")
)

// Phase is the position of a view in its session state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseShowingOutput
)

func (p Phase) String() string {
	if p == PhaseShowingOutput {
		return "showing-output"
	}

	return "idle"
}

// Messages are the texts of the toasts a view can emit.
type Messages struct {
	EmptyInput string
	Copied     string
}

var DefaultMessages = Messages{
	EmptyInput: "You must type a password or words to hash",
	Copied:     "Copied to clipboard!",
}

type Options struct {
	Storage   Storage
	Clipboard Clipboard
	Notifier  Notifier
	Hash      HashFunc
	Messages  Messages

	// CheckDigest validates resumed digests. It defaults to accepting
	// SHA-256 hex when Hash is unset and to accepting anything otherwise.
	CheckDigest DigestCheck

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// State is a snapshot of a view.
type State struct {
	Theme  Theme
	Input  string
	Hashed string
}

func (s State) Phase() Phase {
	if s.Hashed != "" {
		return PhaseShowingOutput
	}

	return PhaseIdle
}

// SubmitResult describes what a Submit did.
type SubmitResult struct {
	Accepted bool
	Digest   string
}

func (sr SubmitResult) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("accepted", sr.Accepted),
		slog.String("digest", sr.Digest),
	)
}

type HasherView struct {
	storage   Storage
	clipboard Clipboard
	notifier  Notifier
	hash      HashFunc
	check     DigestCheck
	messages  Messages
	lg        *slog.Logger

	theme  Theme
	input  string
	hashed string
}

func New(opts Options) *HasherView {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}

	if opts.Clipboard == nil {
		opts.Clipboard = nopClipboard{}
	}

	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	if opts.CheckDigest == nil {
		if opts.Hash == nil {
			opts.CheckDigest = internal.IsSHA256Hex
		} else {
			opts.CheckDigest = anyDigest
		}
	}

	if opts.Hash == nil {
		opts.Hash = internal.SHA256sum
	}

	if opts.Messages.EmptyInput == "" {
		opts.Messages.EmptyInput = DefaultMessages.EmptyInput
	}

	if opts.Messages.Copied == "" {
		opts.Messages.Copied = DefaultMessages.Copied
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &HasherView{
		storage:   opts.Storage,
		clipboard: opts.Clipboard,
		notifier:  opts.Notifier,
		hash:      opts.Hash,
		check:     opts.CheckDigest,
		messages:  opts.Messages,
		lg:        opts.Logger,
	}
}

// Initialize loads the theme preference. Missing, unreadable or garbled
// values all mean light.
func (v *HasherView) Initialize(ctx context.Context) {
	stored, ok, err := v.storage.Get(ctx, hasher.ThemeKey)
	if err != nil {
		v.lg.Error("can't read theme preference, using light", "err", err)
		v.theme = ThemeLight
		return
	}

	if !ok {
		v.theme = ThemeLight
		return
	}

	v.theme = ParseTheme(stored)
}

// SetInput replaces the text being typed.
func (v *HasherView) SetInput(text string) {
	v.input = text
}

// Resume restores a digest shown by an earlier render of the same session.
// Anything the digest check rejects is dropped.
func (v *HasherView) Resume(hashed string) {
	if hashed != "" && !v.check(hashed) {
		v.lg.Debug("dropping resumed output that is not a digest", "len", len(hashed))
		hashed = ""
	}

	v.hashed = hashed
}

// Submit hashes the current input. Only the exact empty string is
// rejected; whitespace is hashed like anything else.
func (v *HasherView) Submit(ctx context.Context) SubmitResult {
	if v.input == "" {
		// reported with a success-styled toast, not an error
		v.notify(ctx, v.messages.EmptyInput, KindSuccess)
		return SubmitResult{}
	}

	v.hashed = v.hash(v.input)
	v.input = ""

	return SubmitResult{Accepted: true, Digest: v.hashed}
}

// CopyToClipboard writes the digest to the clipboard and confirms it. The
// confirmation is shown whether or not the clipboard write succeeded.
func (v *HasherView) CopyToClipboard(ctx context.Context) error {
	if v.hashed == "" {
		return ErrNoOutput
	}

	if err := v.clipboard.WriteText(ctx, v.hashed); err != nil {
		v.lg.Debug("clipboard write failed", "err", err)
	}

	v.notify(ctx, v.messages.Copied, KindSuccess)
	return nil
}

// DismissOutput hides the digest. Dismissing nothing is fine.
func (v *HasherView) DismissOutput() {
	v.hashed = ""
}

// ToggleTheme flips the theme. Storage is written first; if that fails the
// in-memory theme is left alone so both sides keep agreeing.
func (v *HasherView) ToggleTheme(ctx context.Context) (Theme, error) {
	next := v.theme.Toggle()

	if err := v.storage.Set(ctx, hasher.ThemeKey, next.Encode()); err != nil {
		return v.theme, fmt.Errorf("view: can't store theme %s: %w", next, err)
	}

	v.theme = next
	return v.theme, nil
}

func (v *HasherView) Theme() Theme {
	return v.theme
}

func (v *HasherView) State() State {
	return State{
		Theme:  v.theme,
		Input:  v.input,
		Hashed: v.hashed,
	}
}

func (v *HasherView) notify(ctx context.Context, msg string, kind Kind) {
	n := Notification{
		Message: msg,
		Kind:    kind,
		Theme:   v.theme,
	}

	v.lg.Debug("notifying", "notification", n)
	v.notifier.Notify(ctx, n)
}
