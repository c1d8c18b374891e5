package hasher

import "time"

// Version is the current version of the hasher.
//
// This variable is set at build time using the -X linker flag. If not set,
// it defaults to "devel".
var Version = "devel"

// BasePrefix is a global prefix for all hasher endpoints. Can be emptied to remove the prefix entirely.
var BasePrefix = ""

// StaticPath is the location where all static hasher assets are located.
const StaticPath = "/.within.website/x/cmd/hasher/"

// APIPrefix is the location where all hasher API endpoints are located.
const APIPrefix = "/.within.website/x/cmd/hasher/api/"

// ThemeKey is the preference key the theme is stored under.
const ThemeKey = "theme"

// PreferenceCookiePrefix is prepended to a preference key to form the name
// of the cookie that stores it in the browser.
const PreferenceCookiePrefix = "hasher-pref-"

// ClientCookieName is the name of the signed cookie that identifies a
// browser to server-side preference stores.
const ClientCookieName = "within.website-x-cmd-hasher-client"

// PreferenceTTL is how long a stored preference survives without being
// written again.
const PreferenceTTL = 400 * 24 * time.Hour

// DefaultNotificationTimeout is how long a toast stays on screen unless
// configured otherwise.
const DefaultNotificationTimeout = 5 * time.Second
