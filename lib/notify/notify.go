// Package notify turns view notifications into toasts for the browser.
package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"k8s.io/apimachinery/pkg/util/yaml"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/lib/notify/config"
	"github.com/TecharoHQ/hasher/lib/view"
)

var (
	Emitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hasher_notifications_emitted",
		Help: "The total number of toasts emitted, by message kind",
	}, []string{"kind"})
)

type ParsedConfig struct {
	Toasts   config.ToastOptions
	Messages view.Messages
}

// ParseConfig reads a YAML or JSON notification config.
func ParseConfig(fin io.Reader, fname string) (*ParsedConfig, error) {
	var c config.Config
	if err := yaml.NewYAMLOrJSONDecoder(fin, 4096).Decode(&c); err != nil {
		return nil, fmt.Errorf("can't parse notification config %s: %w", fname, err)
	}

	if err := c.Valid(); err != nil {
		return nil, fmt.Errorf("notification config %s: %w", fname, err)
	}

	return &ParsedConfig{
		Toasts: c.Toasts,
		Messages: view.Messages{
			EmptyInput: c.Messages.EmptyInput,
			Copied:     c.Messages.Copied,
		},
	}, nil
}

// AutoClose is how long a toast stays up before it expires by itself.
func (pc *ParsedConfig) AutoClose() time.Duration {
	if pc.Toasts.AutoCloseMS <= 0 {
		return hasher.DefaultNotificationTimeout
	}

	return time.Duration(pc.Toasts.AutoCloseMS) * time.Millisecond
}

// Toast is a notification ready to be rendered.
type Toast struct {
	Message string `json:"message"`
	Kind    string `json:"type"`
	Theme   string `json:"theme"`
}

// Collector gathers the toasts emitted while handling one request. It
// implements view.Notifier.
type Collector struct {
	maxVisible int
	toasts     []Toast
}

func NewCollector(opts config.ToastOptions) *Collector {
	return &Collector{maxVisible: opts.MaxVisible}
}

func (c *Collector) Notify(_ context.Context, n view.Notification) {
	Emitted.WithLabelValues(string(n.Kind)).Inc()

	c.toasts = append(c.toasts, Toast{
		Message: n.Message,
		Kind:    string(n.Kind),
		Theme:   n.Theme.String(),
	})

	// oldest toasts make room for new ones
	if c.maxVisible > 0 && len(c.toasts) > c.maxVisible {
		c.toasts = c.toasts[len(c.toasts)-c.maxVisible:]
	}
}

// Toasts returns the collected toasts, oldest first.
func (c *Collector) Toasts() []Toast {
	return c.toasts
}
