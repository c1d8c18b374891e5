// Package xess vendors a light/dark stylesheet and makes it available at /.within.website/x/xess/xess.css
package xess

import (
	"embed"
	"net/http"

	"github.com/TecharoHQ/hasher"
	"github.com/TecharoHQ/hasher/internal"
)

var (
	//go:embed *.css
	Static embed.FS

	// URL is relative to hasher.BasePrefix.
	URL = "/.within.website/x/xess/xess.css"
)

func init() {
	URL = URL + "?cachebuster=" + hasher.Version
}

// Mount registers the xess static file handlers on the given mux
func Mount(mux *http.ServeMux) {
	prefix := hasher.BasePrefix + "/.within.website/x/xess/"

	mux.Handle(prefix, internal.UnchangingCache(http.StripPrefix(prefix, http.FileServerFS(Static))))
}
