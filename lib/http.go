package lib

import (
	"context"
	"log/slog"
)

// Action is what a form post asks the page to do.
type Action string

const (
	ActionUnknown Action = ""
	ActionHash    Action = "hash"
	ActionCopy    Action = "copy"
	ActionDismiss Action = "dismiss"
	ActionTheme   Action = "theme"
)

func (a Action) LogValue() slog.Value {
	if a == ActionUnknown {
		return slog.StringValue("(none)")
	}

	return slog.StringValue(string(a))
}

// pageClipboard hands a clipboard write to the browser: the rendered page
// carries the pending value and the page script writes it. The outcome of
// that write never comes back to the server.
type pageClipboard struct {
	pending string
}

func (pc *pageClipboard) WriteText(_ context.Context, value string) error {
	pc.pending = value
	return nil
}

type cleaner interface {
	Cleanup()
	Len() int
}

// CleanupDecayMap drops expired preferences from in-memory backends and
// returns how many are left. Other backends report -1.
func (s *Server) CleanupDecayMap() int {
	c, ok := s.opts.Preferences.(cleaner)
	if !ok {
		return -1
	}

	c.Cleanup()
	remaining := c.Len()
	preferencesHeld.Set(float64(remaining))

	return remaining
}
