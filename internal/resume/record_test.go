package resume

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClampTruncatesByRunes(t *testing.T) {
	t.Parallel()

	entry := strings.Repeat("a", 199) + "über ambitious engineer"
	summary := strings.Repeat("ü", 350)

	r := Record{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "555-000-1111",
		Skills:     []string{"Go"},
		Experience: []string{entry},
		Education:  []string{"BS Computer Science"},
		Summary:    summary,
	}
	r.Clamp()

	got := r.Experience[0]
	if !utf8.ValidString(got) {
		t.Fatalf("clamped entry is not valid utf-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Fatalf("expected 200 runes, got %d", n)
	}
	if !strings.HasSuffix(got, "ü") {
		t.Fatalf("expected entry to end on a whole rune, got %q", got)
	}

	if !utf8.ValidString(r.Summary) {
		t.Fatalf("clamped summary is not valid utf-8: %q", r.Summary)
	}
	if n := utf8.RuneCountInString(r.Summary); n != 300 {
		t.Fatalf("expected 300 runes in summary, got %d", n)
	}
}

func TestClampKeepsShortFieldsUntouched(t *testing.T) {
	t.Parallel()

	r := Record{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "555-000-1111",
		Skills:     []string{"Go"},
		Experience: []string{"Engineer at Acme"},
		Education:  []string{"BS"},
		Summary:    "Backend engineer.",
	}
	r.Clamp()

	if r.Experience[0] != "Engineer at Acme" {
		t.Fatalf("short entry must pass through, got %q", r.Experience[0])
	}
	if r.Summary != "Backend engineer." {
		t.Fatalf("short summary must pass through, got %q", r.Summary)
	}
}
