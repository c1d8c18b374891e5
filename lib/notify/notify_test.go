package notify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TecharoHQ/hasher/data"
	"github.com/TecharoHQ/hasher/lib/notify/config"
	"github.com/TecharoHQ/hasher/lib/view"
)

func TestDefaultConfigMustParse(t *testing.T) {
	fin, err := data.Notifications.Open("notifications.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer fin.Close()

	pc, err := ParseConfig(fin, "notifications.yaml")
	if err != nil {
		t.Fatalf("can't parse config: %v", err)
	}

	if pc.AutoClose() != 5*time.Second {
		t.Errorf("wanted the default toast to last 5s, got: %s", pc.AutoClose())
	}

	if pc.Toasts.Position != config.PositionTopRight {
		t.Errorf("wanted toasts in the top right, got: %s", pc.Toasts.Position)
	}

	if pc.Messages != view.DefaultMessages {
		t.Errorf("wanted built-in messages to match the view defaults, got: %+v", pc.Messages)
	}
}

func TestGoodConfigs(t *testing.T) {
	finfos, err := os.ReadDir("config/testdata/good")
	if err != nil {
		t.Fatal(err)
	}

	for _, st := range finfos {
		st := st
		t.Run(st.Name(), func(t *testing.T) {
			fin, err := os.Open(filepath.Join("config", "testdata", "good", st.Name()))
			if err != nil {
				t.Fatal(err)
			}
			defer fin.Close()

			if _, err := ParseConfig(fin, fin.Name()); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestBadConfigs(t *testing.T) {
	finfos, err := os.ReadDir("config/testdata/bad")
	if err != nil {
		t.Fatal(err)
	}

	for _, st := range finfos {
		st := st
		t.Run(st.Name(), func(t *testing.T) {
			fin, err := os.Open(filepath.Join("config", "testdata", "bad", st.Name()))
			if err != nil {
				t.Fatal(err)
			}
			defer fin.Close()

			if _, err := ParseConfig(fin, fin.Name()); err == nil {
				t.Fatal("config should not have parsed")
			} else {
				t.Log(err)
			}
		})
	}
}

func TestParseConfigGarbage(t *testing.T) {
	if _, err := ParseConfig(strings.NewReader("{{{"), "garbage"); err == nil {
		t.Fatal("garbage should not parse")
	}
}

func TestCollector(t *testing.T) {
	ctx := context.Background()

	c := NewCollector(config.ToastOptions{})
	c.Notify(ctx, view.Notification{Message: "one", Kind: view.KindSuccess, Theme: view.ThemeDark})
	c.Notify(ctx, view.Notification{Message: "two", Kind: view.KindError})

	toasts := c.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("wanted 2 toasts, got: %d", len(toasts))
	}

	want := Toast{Message: "one", Kind: "success", Theme: "dark"}
	if toasts[0] != want {
		t.Errorf("wanted %+v, got: %+v", want, toasts[0])
	}

	if toasts[1].Theme != "light" || toasts[1].Kind != "error" {
		t.Errorf("unexpected second toast: %+v", toasts[1])
	}
}

func TestCollectorMaxVisible(t *testing.T) {
	ctx := context.Background()

	c := NewCollector(config.ToastOptions{MaxVisible: 2})
	for _, msg := range []string{"one", "two", "three"} {
		c.Notify(ctx, view.Notification{Message: msg, Kind: view.KindSuccess})
	}

	toasts := c.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("wanted 2 toasts, got: %d", len(toasts))
	}

	if toasts[0].Message != "two" || toasts[1].Message != "three" {
		t.Errorf("wanted the newest toasts to survive, got: %+v", toasts)
	}
}

func TestAutoCloseFallback(t *testing.T) {
	pc := &ParsedConfig{}
	if pc.AutoClose() != 5*time.Second {
		t.Errorf("unset auto close should fall back to 5s, got: %s", pc.AutoClose())
	}
}
