package validators

import "testing"

func TestSanitizeNotes(t *testing.T) {
	if got := SanitizeNotes(nil, 10); got != nil {
		t.Fatalf("expected nil for nil input, got %q", *got)
	}
	blank := "   "
	if got := SanitizeNotes(&blank, 10); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}
	note := "  costura lista  "
	if got := SanitizeNotes(&note, 0); got == nil || *got != "costura lista" {
		t.Fatalf("unexpected trim result %v", got)
	}
	long := "ñandú ñandú"
	got := SanitizeNotes(&long, 5)
	if got == nil || *got != "ñandú" {
		t.Fatalf("expected rune-safe cut, got %v", got)
	}
}
