//go:build integration

// Integration tests for the hasher page, using Playwright.
//
// The test suite serves the hasher itself; only a Playwright server is needed.
// The bind address of the hasher can be specified using the `-bind` flag.
//
// Playwright must be started in server mode using `npx playwright@1.50.1 run-server --port 3000`.
// The version must match the minor used by the playwright-go package.
//
// On unsupported systems you may be able to use a container instead: https://playwright.dev/docs/docker#remote-connection
//
// In that case you may need to set the `-playwright` flag to the container's URL, and specify the `--host` the run-server command listens on.
package test

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TecharoHQ/hasher/internal"
	libhasher "github.com/TecharoHQ/hasher/lib"
	"github.com/TecharoHQ/hasher/lib/view"
)

var (
	serverBindAddr    = flag.String("bind", "localhost:8923", "hasher bind address")
	playwrightServer  = flag.String("playwright", "ws://localhost:3000", "Playwright server URL")
	playwrightMaxTime = flag.Duration("playwright-max-time", 5*time.Second, "maximum time for Playwright requests")
)

func TestPlaywrightBrowser(t *testing.T) {
	pw := setupPlaywright(t)
	spawnHasher(t)
	browsers := []playwright.BrowserType{pw.Chromium, pw.Firefox, pw.WebKit}

	for _, typ := range browsers {
		t.Run(typ.Name(), func(t *testing.T) {
			executeSession(t, typ)
		})
	}
}

func buildBrowserConnect(name string) string {
	u, _ := url.Parse(*playwrightServer)

	q := u.Query()
	q.Set("browser", name)
	u.RawQuery = q.Encode()

	return u.String()
}

// executeSession walks through one session on the page: an empty
// submission, a hash, a copy, a dismissal and a theme toggle that survives
// a reload.
func executeSession(t *testing.T, typ playwright.BrowserType) {
	deadline, _ := t.Deadline()

	browser, err := typ.Connect(buildBrowserConnect(typ.Name()), playwright.BrowserTypeConnectOptions{
		ExposeNetwork: playwright.String("<loopback>"),
	})
	if err != nil {
		t.Fatalf("could not connect to remote browser: %v", err)
	}
	defer browser.Close()

	ctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(false),
	})
	if err != nil {
		t.Fatalf("could not create context: %v", err)
	}
	defer ctx.Close()

	// only chromium lets us read the clipboard back
	canReadClipboard := typ.Name() == "chromium"
	if canReadClipboard {
		if err := ctx.GrantPermissions([]string{"clipboard-read", "clipboard-write"}); err != nil {
			t.Fatalf("could not grant clipboard permissions: %v", err)
		}
	}

	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("could not create page: %v", err)
	}
	defer page.Close()

	if _, err = page.Goto("http://"+*serverBindAddr+"/", playwright.PageGotoOptions{
		Timeout: pwTimeout(deadline),
	}); err != nil {
		pwFail(t, page, "could not navigate to hasher: %v", err)
	}

	waitFor(t, page, deadline, "html[data-theme=light]")

	// Empty submission only raises a toast.

	click(t, page, deadline, "#hash")
	toast := waitFor(t, page, deadline, ".toast")
	expectText(t, page, deadline, toast, view.DefaultMessages.EmptyInput)

	if n, _ := page.Locator("#output").Count(); n != 0 {
		pwFail(t, page, "output shown after empty submission")
	}

	// Hashing shows the digest and clears the input.

	if err := page.Locator("#text").Fill("hello"); err != nil {
		pwFail(t, page, "could not type: %v", err)
	}
	click(t, page, deadline, "#hash")
	digest := waitFor(t, page, deadline, "#digest")
	expectText(t, page, deadline, digest, internal.SHA256sum("hello"))

	if val, err := page.Locator("#text").InputValue(); err != nil || val != "" {
		pwFail(t, page, "input not cleared after hashing: %q (%v)", val, err)
	}

	// Copying confirms with a toast.

	click(t, page, deadline, "#copy")
	copied := waitFor(t, page, deadline, ".toast:has-text('"+view.DefaultMessages.Copied+"')")
	expectText(t, page, deadline, copied, view.DefaultMessages.Copied)

	if canReadClipboard {
		got, err := page.Evaluate("() => navigator.clipboard.readText()")
		if err != nil {
			pwFail(t, page, "could not read clipboard: %v", err)
		}

		if got != internal.SHA256sum("hello") {
			pwFail(t, page, "unexpected clipboard content: %v", got)
		}
	}

	// Dismissing hides the output.

	click(t, page, deadline, "#dismiss")
	if err := page.Locator("#output").WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateDetached,
		Timeout: pwTimeout(deadline),
	}); err != nil {
		pwFail(t, page, "output still shown after dismissal: %v", err)
	}

	// The theme survives a reload.

	click(t, page, deadline, "#theme-toggle")
	waitFor(t, page, deadline, "html[data-theme=dark]")

	if _, err := page.Reload(); err != nil {
		pwFail(t, page, "could not reload: %v", err)
	}
	waitFor(t, page, deadline, "html[data-theme=dark]")
}

func click(t *testing.T, page playwright.Page, deadline time.Time, selector string) {
	t.Helper()

	if err := page.Locator(selector).Click(playwright.LocatorClickOptions{
		Timeout: pwTimeout(deadline),
	}); err != nil {
		pwFail(t, page, "could not click %s: %v", selector, err)
	}
}

func waitFor(t *testing.T, page playwright.Page, deadline time.Time, selector string) playwright.Locator {
	t.Helper()

	loc := page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		Timeout: pwTimeout(deadline),
	}); err != nil {
		pwFail(t, page, "could not wait for %s: %v", selector, err)
	}

	return loc
}

func expectText(t *testing.T, page playwright.Page, deadline time.Time, loc playwright.Locator, want string) {
	t.Helper()

	got, err := loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: pwTimeout(deadline),
	})
	if err != nil {
		pwFail(t, page, "could not get text content: %v", err)
	}

	if !strings.Contains(got, want) {
		pwFail(t, page, "wanted text %q, got: %q", want, got)
	}
}

func pwFail(t *testing.T, page playwright.Page, format string, args ...any) {
	t.Helper()

	saveScreenshot(t, page)
	t.Fatalf(format, args...)
}

func pwTimeout(deadline time.Time) *float64 {
	max := *playwrightMaxTime

	d := deadline.Sub(time.Now())
	if d <= 0 || d > max {
		return playwright.Float(float64(max.Milliseconds()))
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func saveScreenshot(t *testing.T, page playwright.Page) {
	t.Helper()

	data, err := page.Screenshot()
	if err != nil {
		t.Logf("could not take screenshot: %v", err)
		return
	}

	f, err := os.CreateTemp("", "hasher-test-fail-*.png")
	if err != nil {
		t.Logf("could not create temporary file: %v", err)
		return
	}
	defer f.Close()

	_, err = f.Write(data)
	if err != nil {
		t.Logf("could not write screenshot: %v", err)
		return
	}

	t.Logf("screenshot saved to %s", f.Name())
}

func setupPlaywright(t *testing.T) *playwright.Playwright {
	err := playwright.Install(&playwright.RunOptions{
		SkipInstallBrowsers: true,
	})
	if err != nil {
		t.Fatalf("could not install Playwright: %v", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("could not start Playwright: %v", err)
	}
	return pw
}

func spawnHasher(t *testing.T) {
	t.Helper()

	srv, err := libhasher.New(libhasher.Options{})
	if err != nil {
		t.Fatalf("can't construct libhasher.Server: %v", err)
	}

	s := new(http.Server)
	s.Addr = *serverBindAddr
	s.Handler = srv

	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("hasher terminated unexpectedly: %v", err)
		}
	}()

	t.Cleanup(func() {
		if err := s.Shutdown(context.Background()); err != nil {
			t.Fatalf("could not shutdown hasher: %v", err)
		}
	})
}
