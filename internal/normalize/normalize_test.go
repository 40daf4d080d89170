package normalize

import (
	"math"
	"testing"
)

func TestDOI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "10.1590/S0001-37652015000201234", "10.1590/s0001-37652015000201234"},
		{"https prefix", "https://doi.org/10.1590/abc", "10.1590/abc"},
		{"http prefix", "http://doi.org/10.1590/ABC", "10.1590/abc"},
		{"dx prefix", "https://dx.doi.org/10.1590/abc", "10.1590/abc"},
		{"doi scheme", "doi:10.1590/abc", "10.1590/abc"},
		{"surrounding whitespace", "  10.1590/abc  ", "10.1590/abc"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOI(tt.input); got != tt.want {
				t.Errorf("DOI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "A Study Of Things", "a study of things"},
		{"diacritics", "Avaliação da Educação Física", "avaliacao da educacao fisica"},
		{"punctuation", "Health, wealth & time: a review!", "health wealth time a review"},
		{"collapsed whitespace", "two   spaced \t words", "two spaced words"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.input); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSquashTitle(t *testing.T) {
	if got := SquashTitle("Educação física: uma revisão"); got != "educacaofisicaumarevisao" {
		t.Errorf("SquashTitle = %q", got)
	}

	// Spacing variants must collide on the same key.
	a := SquashTitle("heart failure in adults")
	b := SquashTitle("Heart  Failure in Adults.")
	if a != b {
		t.Errorf("spacing variants should squash equally: %q vs %q", a, b)
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "heart failure in adults", "heart failure in adults", 1.0},
		{"disjoint", "heart failure", "soil chemistry", 0.0},
		{"partial", "heart failure in adults", "heart failure in children", 3.0 / 5.0},
		{"case and accents", "Educação Física", "educacao fisica", 1.0},
		{"empty left", "", "heart failure", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenOverlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TokenOverlap(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestYear(t *testing.T) {
	if got := Year("2021"); got != 2021 {
		t.Errorf("Year(\"2021\") = %d", got)
	}
	if got := Year(" 1999 "); got != 1999 {
		t.Errorf("Year with whitespace = %d", got)
	}
	if got := Year("n/a"); got != 0 {
		t.Errorf("Year(\"n/a\") = %d, want 0", got)
	}
	if got := Year(""); got != 0 {
		t.Errorf("Year(\"\") = %d, want 0", got)
	}
}
