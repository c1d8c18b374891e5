package view

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Theme is the two-valued visual appearance of the page.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// ParseTheme coerces a stored preference into a Theme the way a numeric
// cast would: blank, missing or non-numeric values and zero are light,
// any other number is dark. Numbers follow JavaScript literal rules, so
// "0x1" and "Infinity" are dark while "inf" and "1_0" are not numbers.
func ParseTheme(stored string) Theme {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return ThemeLight
	}

	switch stored {
	case "Infinity", "+Infinity", "-Infinity":
		return ThemeDark
	}

	if len(stored) > 2 && stored[0] == '0' {
		base := 0
		switch stored[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 0 {
			n, err := strconv.ParseUint(stored[2:], base, 64)
			return themeFromNumber(float64(n), err)
		}
	}

	if !decimalLiteral.MatchString(stored) {
		return ThemeLight
	}

	return themeFromNumber(strconv.ParseFloat(stored, 64))
}

func themeFromNumber(n float64, err error) Theme {
	if errors.Is(err, strconv.ErrRange) {
		// overflow is a huge number, underflow is zero
		if n == 0 {
			return ThemeLight
		}
		return ThemeDark
	}

	if err != nil || math.IsNaN(n) || n == 0 {
		return ThemeLight
	}

	return ThemeDark
}

// Encode returns the value written to storage: "0" for light, "1" for dark.
func (t Theme) Encode() string {
	if t == ThemeDark {
		return "1"
	}

	return "0"
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}

	return ThemeDark
}

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}

	return "light"
}
