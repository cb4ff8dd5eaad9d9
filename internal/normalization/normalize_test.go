package normalization

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  The Quick,  Brown Fox! ": "quick brown fox",
		"Café Crème":                "cafe creme",
		"an apple a day":            "apple day",
		"Theory of the atom":        "theory of atom",
		"0x1F":                      "0x1f",
		"rock-n-roll":               "rocknroll",
		"tab\tand\nnewline":         "tab and newline",
		"":                          "",
		"!!!":                       "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q): got %q want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Beatles — Abbey Road (1969)",
		"Ångström   units",
		"a the an",
		"What's the BPM? 120 bpm",
		"Ünïcödé   çhars, and  SPACES ",
		"$FF / 0xff",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestExtractYearTokens(t *testing.T) {
	got := ExtractYearTokens("Between 1599, 1600 and 2099 or 2100; also 1969.")
	want := []int{1600, 2099, 1969}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractYearTokens: got %v want %v", got, want)
	}
	if got := ExtractYearTokens("no years 12345"); len(got) != 0 {
		t.Fatalf("expected no years, got %v", got)
	}
}

func TestExtractNumberTokens(t *testing.T) {
	got := ExtractNumberTokens("-3 degrees, 4.5 volts and 120bpm")
	want := []string{"-3", "4.5", "120"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractNumberTokens: got %v want %v", got, want)
	}
}

func TestHexDecimalEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"0x1F", "31", true},
		{"$1F", "0x1f", true},
		{"1f", "31", false},
		{"0a", "10", false},
		{"1e", "30", false},
		{"31", "31", true},
		{"31", "49", false},
		{"face", "64206", false},
		{"0xZZ", "1", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := HexDecimalEqual(tc.a, tc.b); got != tc.want {
			t.Fatalf("HexDecimalEqual(%q, %q): got %v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
