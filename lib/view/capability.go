package view

import (
	"context"
	"log/slog"
	"sync"
)

// Storage is a persistent key-value store that survives across sessions of
// the same client.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Clipboard writes text to the user's clipboard. Callers treat the write as
// fire-and-forget: the returned error is only ever logged.
type Clipboard interface {
	WriteText(ctx context.Context, value string) error
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// HashFunc turns input text into a digest.
type HashFunc func(string) string

// DigestCheck reports whether a value could have come out of the HashFunc in
// use. It guards digests coming back from the client.
type DigestCheck func(string) bool

func anyDigest(string) bool { return true }

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a single toast.
type Notification struct {
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
	Theme   Theme  `json:"theme"`
}

func (n Notification) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("message", n.Message),
		slog.String("kind", string(n.Kind)),
		slog.String("theme", n.Theme.String()),
	)
}

// MemoryStorage is a Storage that lives as long as the value does.
type MemoryStorage struct {
	lock sync.Mutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	val, ok := m.data[key]
	return val, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.data[key] = value
	return nil
}

type nopClipboard struct{}

func (nopClipboard) WriteText(context.Context, string) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}
