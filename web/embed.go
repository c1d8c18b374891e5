package web

import "embed"

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.833 generate

var (
	//go:embed static
	Static embed.FS
)
