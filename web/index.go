package web

import (
	"github.com/a-h/templ"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/lib/notify"
	"github.com/TecharoHQ/hasher/lib/notify/config"
	"github.com/TecharoHQ/hasher/lib/view"
	"github.com/TecharoHQ/hasher/xess"
)

// Page is everything the index page shows.
type Page struct {
	Theme      view.Theme
	Input      string
	Hashed     string
	Toasts     []notify.Toast
	ToastRules config.ToastOptions
	// Clipboard is a value the page script should write to the clipboard
	// as soon as the page loads.
	Clipboard string
	ActionURL string
}

func Base(title string, theme view.Theme, body templ.Component) templ.Component {
	return base(title, theme, body)
}

func Index(page Page) templ.Component {
	return index(page)
}

func ErrorPage(msg string) templ.Component {
	return errorPage(msg)
}

func stylesheetURL() string {
	return hasher.BasePrefix + xess.URL
}

func scriptURL() string {
	return hasher.BasePrefix + hasher.StaticPath + "static/js/main.mjs?cachebuster=" + hasher.Version
}

func homeURL() string {
	return hasher.BasePrefix + "/"
}

func themeToggleLabel(theme view.Theme) string {
	return "Switch to " + theme.Toggle().String() + " theme"
}
