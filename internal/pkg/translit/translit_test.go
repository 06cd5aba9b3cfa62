package translit_test

import (
	"regexp"
	"testing"

	"github.com/lurraldea/geopoint/internal/pkg/translit"
)

func TestNeedsTransliteration(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Bilbao", false},
		{"Donostia-San Sebastian", false},
		{"St. Petersburg", false},
		{"Area 51", false},
		{"Москва", true},
		{"São Paulo", true},
		{"München", true},
		{"東京", true},
		{"Nuku'alofa", true}, // apostrophe is outside the basic set
	}

	for _, tc := range cases {
		if got := translit.NeedsTransliteration(tc.name); got != tc.want {
			t.Errorf("NeedsTransliteration(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLatin_ProducesLatinOutput(t *testing.T) {
	latinOnly := regexp.MustCompile(`^[A-Za-z0-9 .\-]*$`)

	var tr translit.Latin
	for _, name := range []string{"Москва", "São Paulo", "München", "Θεσσαλονίκη"} {
		got := tr.Transliterate(name)
		if got == "" {
			t.Errorf("Transliterate(%q) returned empty", name)
			continue
		}
		if !latinOnly.MatchString(got) {
			t.Errorf("Transliterate(%q) = %q, contains non-Latin output", name, got)
		}
	}
}

func TestLatin_OutputLeavesSelectionSet(t *testing.T) {
	// Names whose transliteration carries residual ASCII punctuation must not
	// match the selection regex again, or they would be rewritten every run.
	var tr translit.Latin
	cases := []struct {
		name string
		want string
	}{
		{"Усть-Каменогорск", "Ust-Kamenogorsk"},
		{"Nuku'alofa", "Nukualofa"},
		{"Korçë", "Korce"},
	}
	for _, tc := range cases {
		got := tr.Transliterate(tc.name)
		if got != tc.want {
			t.Errorf("Transliterate(%q) = %q, want %q", tc.name, got, tc.want)
		}
		if translit.NeedsTransliteration(got) {
			t.Errorf("Transliterate(%q) = %q still matches the selection set", tc.name, got)
		}
	}
}

func TestLatin_TrimsWhitespace(t *testing.T) {
	var tr translit.Latin
	if got := tr.Transliterate("  Madrid  "); got != "Madrid" {
		t.Errorf("expected trimmed output, got %q", got)
	}
}
