package main

import (
	"os"
	"path/filepath"
	"testing"
)

const zeroSeed = "0000000000000000000000000000000000000000000000000000000000000000"

func TestKeyFromHex(t *testing.T) {
	for _, tt := range []struct {
		name  string
		input string
		err   bool
	}{
		{name: "valid", input: zeroSeed},
		{name: "not hex", input: "zz", err: true},
		{name: "too short", input: "00", err: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keyFromHex(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("wanted error: %v, got: %v", tt.err, err)
			}
		})
	}
}

func TestSigningKey(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "key.hex")
	if err := os.WriteFile(fname, []byte(zeroSeed+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	want, err := keyFromHex(zeroSeed)
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name     string
		hex      string
		file     string
		err      bool
		matchKey bool
	}{
		{name: "generated"},
		{name: "from flag", hex: zeroSeed, matchKey: true},
		{name: "from file", file: fname, matchKey: true},
		{name: "both", hex: zeroSeed, file: fname, err: true},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope"), err: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			oldHex, oldFile := *signingKeyHex, *signingKeyFile
			t.Cleanup(func() {
				*signingKeyHex, *signingKeyFile = oldHex, oldFile
			})
			*signingKeyHex, *signingKeyFile = tt.hex, tt.file

			priv, err := signingKey()
			if (err != nil) != tt.err {
				t.Fatalf("wanted error: %v, got: %v", tt.err, err)
			}

			if tt.err {
				return
			}

			if len(priv) == 0 {
				t.Fatal("no key returned")
			}

			if tt.matchKey && !priv.Equal(want) {
				t.Error("key does not match the configured seed")
			}
		})
	}
}

func TestDisplayAddress(t *testing.T) {
	for _, tt := range []struct {
		network, address, want string
	}{
		{"tcp", ":8923", "http://localhost:8923"},
		{"tcp", "127.0.0.1:8923", "http://127.0.0.1:8923"},
		{"unix", "/run/hasher.sock", "unix:/run/hasher.sock"},
		{"tcp6", "[::1]:80", "tcp6![::1]:80"},
	} {
		if got := displayAddress(tt.network, tt.address); got != tt.want {
			t.Errorf("displayAddress(%q, %q) = %q, want %q", tt.network, tt.address, got, tt.want)
		}
	}
}
