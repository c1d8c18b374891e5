package data

import "embed"

var (
	//go:embed notifications.yaml
	Notifications embed.FS
)
