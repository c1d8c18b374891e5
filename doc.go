// Package hasher serves a single page that hashes text with SHA-256.
//
// The page keeps a light/dark theme preference across visits and shows
// toasts for empty submissions and clipboard copies. See cmd/hasher for the
// server binary and lib for the embeddable http.Handler.
package hasher
