package normalization

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRe   = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)
	numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)
	hexRe    = regexp.MustCompile(`^(?:\$|0x)[0-9a-f]+$`)
	decRe    = regexp.MustCompile(`^\d+$`)
)

// ExtractYearTokens returns four-digit values in [1600, 2099] found in s.
func ExtractYearTokens(s string) []int {
	matches := yearRe.FindAllString(s, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		if y, err := strconv.Atoi(m); err == nil {
			out = append(out, y)
		}
	}
	return out
}

// ExtractNumberTokens returns integers and decimals in s, sign preserved.
func ExtractNumberTokens(s string) []string {
	matches := numberRe.FindAllString(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m))
	}
	return out
}

// HexDecimalEqual is true when both sides parse to the same integer. A "$" or
// "0x" prefix means hex and all digits means decimal. Unprefixed tokens such
// as "1f" never parse.
func HexDecimalEqual(a, b string) bool {
	va, okA := parseHexOrDecimal(a)
	vb, okB := parseHexOrDecimal(b)
	return okA && okB && va == vb
}

func parseHexOrDecimal(s string) (uint64, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return 0, false
	}
	switch {
	case hexRe.MatchString(t):
		t = strings.TrimPrefix(strings.TrimPrefix(t, "$"), "0x")
		v, err := strconv.ParseUint(t, 16, 64)
		return v, err == nil
	case decRe.MatchString(t):
		v, err := strconv.ParseUint(t, 10, 64)
		return v, err == nil
	default:
		return 0, false
	}
}
