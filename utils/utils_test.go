package utils

import "testing"

func TestStr(t *testing.T) {
	if got := Str(nil); got != "" {
		t.Fatalf("Str(nil) = %q", got)
	}
	if got := Str("x"); got != "x" {
		t.Fatalf("Str(string) = %q", got)
	}
	if got := Str(42); got != "42" {
		t.Fatalf("Str(int) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("Truncate below limit = %q", got)
	}
	got := Truncate("這是一段很長的中文評論內容", 5)
	if runes := []rune(got); len(runes) != 6 || runes[5] != '…' {
		t.Fatalf("Truncate = %q, want 5 runes plus ellipsis", got)
	}
	if got := Truncate("  padded  ", 20); got != "padded" {
		t.Fatalf("Truncate should trim, got %q", got)
	}
}
