package slug

import (
	"strings"
	"testing"
)

// TestGenerate covers club post titles, punctuation, whitespace and the
// degenerate inputs that collapse to an empty slug.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"greeting", "Hello, World!", "hello-world"},
		{"club title", "Spring Fly-In 2026", "spring-fly-in-2026"},
		{"category name", "Aircraft Spotlight", "aircraft-spotlight"},
		{"apostrophe splits word", "Pilot's Corner", "pilot-s-corner"},
		{"ampersand dropped", "Wings & Wheels", "wings-wheels"},
		{"brackets and dots", "Cessna 172 (Skyhawk) v2.1", "cessna-172-skyhawk-v2-1"},
		{"slashes", "VFR/IFR Basics", "vfr-ifr-basics"},
		{"accented letters dropped", "Café Météo", "caf-m-t-o"},
		{"emoji dropped", "Solo day ✈️ done", "solo-day-done"},
		{"only unicode", "飞行", ""},
		{"leading and trailing spaces", "  ground school  ", "ground-school"},
		{"tabs and newlines", "night\tflying\nrules", "night-flying-rules"},
		{"repeated separators", "hangar   --- party", "hangar-party"},
		{"existing hyphen kept", "fly-in", "fly-in"},
		{"surrounding hyphens", "--checkride--", "checkride"},
		{"date", "2026-02-25", "2026-02-25"},
		{"digits only", "737", "737"},
		{"single letter", "A", "a"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"punctuation only", "!@#$%^&*()", ""},
		{"hyphens only", "-----", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"my-blog-post-2026",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			got := Generate(s)
			if got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// TestGenerate_ConsistentCase verifies that slugs are always lowercase
// regardless of input casing.
func TestGenerate_ConsistentCase(t *testing.T) {
	inputs := []string{
		"HELLO WORLD",
		"Hello World",
		"hElLo WoRlD",
		"hello world",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := Generate(input)
			if got != "hello-world" {
				t.Errorf("Generate(%q) = %q, want %q", input, got, "hello-world")
			}
		})
	}
}

// TestGenerate_NonASCII verifies that letters outside [a-z0-9] act as
// separators rather than being transliterated.
func TestGenerate_NonASCII(t *testing.T) {
	tests := map[string]string{
		"Café Crème":       "caf-cr-me",
		"Hello, World!":    "hello-world",
		"Über die Brücke":  "ber-die-br-cke",
		"日本語 Aviation":     "aviation",
		"Wings 🛩 & Props": "wings-props",
	}
	for input, want := range tests {
		if got := Generate(input); got != want {
			t.Errorf("Generate(%q) = %q, want %q", input, got, want)
		}
	}
}

// TestGenerate_Properties checks the output alphabet and hyphen placement
// for a spread of awkward inputs.
func TestGenerate_Properties(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"  --Leading and trailing--  ",
		"a__b..c//d",
		"Mixed CASE 123 !!! ---",
		"\t\n",
		"ÀÉÎÕÜ ñ ç",
		"The Future of Aviation: Electric Aircraft",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := Generate(input)
			if got != Generate(input) {
				t.Fatalf("Generate(%q) is not deterministic", input)
			}
			for _, r := range got {
				if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
					t.Errorf("Generate(%q) = %q contains %q", input, got, r)
				}
			}
			if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
				t.Errorf("Generate(%q) = %q has an edge hyphen", input, got)
			}
			if strings.Contains(got, "--") {
				t.Errorf("Generate(%q) = %q has a hyphen run", input, got)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		param  string
		isID   bool
		id     int64
		wantSl string
	}{
		{param: "42", isID: true, id: 42},
		{param: "0", isID: true, id: 0},
		{param: "007", isID: true, id: 7},
		{param: "999999", isID: true, id: 999999},
		{param: "99999999999999999999999", isID: true, id: 0},
		{param: "hello-world", wantSl: "hello-world"},
		{param: "2026-recap", wantSl: "2026-recap"},
		{param: "42a", wantSl: "42a"},
		{param: "-42", wantSl: "-42"},
		{param: "4 2", wantSl: "4 2"},
		{param: "١٢٣", wantSl: "١٢٣"}, // non-ASCII digits are not ids
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got := Classify(tt.param)
			if got.IsID != tt.isID {
				t.Fatalf("Classify(%q).IsID = %v, want %v", tt.param, got.IsID, tt.isID)
			}
			if tt.isID {
				if got.ID != tt.id {
					t.Errorf("Classify(%q).ID = %d, want %d", tt.param, got.ID, tt.id)
				}
				if got.Slug != "" {
					t.Errorf("Classify(%q).Slug = %q, want empty", tt.param, got.Slug)
				}
				return
			}
			if got.Slug != tt.wantSl {
				t.Errorf("Classify(%q).Slug = %q, want %q", tt.param, got.Slug, tt.wantSl)
			}
		})
	}
}

func TestIdentifierString(t *testing.T) {
	if got := Classify("12").String(); got != "id:12" {
		t.Errorf("got %q", got)
	}
	if got := Classify("hello").String(); got != "slug:hello" {
		t.Errorf("got %q", got)
	}
}
