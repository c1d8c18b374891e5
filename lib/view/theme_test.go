package view

import "testing"

func TestParseTheme(t *testing.T) {
	for _, tt := range []struct {
		stored string
		want   Theme
	}{
		{"", ThemeLight},
		{"0", ThemeLight},
		{"1", ThemeDark},
		{" 1 ", ThemeDark},
		{"2", ThemeDark},
		{"-1", ThemeDark},
		{"0.0", ThemeLight},
		{"NaN", ThemeLight},
		{"dark", ThemeLight},
		{"null", ThemeLight},
		{"1e999", ThemeDark},
		{"-1e999", ThemeDark},
		{"1e-999", ThemeLight},
		{"0x1", ThemeDark},
		{"0X0", ThemeLight},
		{"0o1", ThemeDark},
		{"0b1", ThemeDark},
		{"0b2", ThemeLight},
		{"0x", ThemeLight},
		{"0xffffffffffffffffffff", ThemeDark},
		{"-0x1", ThemeLight},
		{"Infinity", ThemeDark},
		{"+Infinity", ThemeDark},
		{"-Infinity", ThemeDark},
		{"inf", ThemeLight},
		{"Inf", ThemeLight},
		{"1_0", ThemeLight},
		{".5", ThemeDark},
		{"1.", ThemeDark},
		{".", ThemeLight},
		{"-0", ThemeLight},
		{"\t1\n", ThemeDark},
	} {
		if got := ParseTheme(tt.stored); got != tt.want {
			t.Errorf("ParseTheme(%q) = %s, want %s", tt.stored, got, tt.want)
		}
	}
}

func TestThemeEncodeRoundTrip(t *testing.T) {
	for _, theme := range []Theme{ThemeLight, ThemeDark} {
		if got := ParseTheme(theme.Encode()); got != theme {
			t.Errorf("ParseTheme(%q) = %s, want %s", theme.Encode(), got, theme)
		}

		if theme.Toggle().Toggle() != theme {
			t.Errorf("toggling %s twice did not return to it", theme)
		}
	}

	if ThemeLight.Encode() != "0" || ThemeDark.Encode() != "1" {
		t.Errorf("unexpected encodings: %q, %q", ThemeLight.Encode(), ThemeDark.Encode())
	}
}
