package util

import "testing"

func TestQuoteArgForShell(t *testing.T) {
	tests := map[string]string{
		"cv":          "cv",
		"--format":    "--format",
		"":            "''",
		"two words":   "'two words'",
		"it's":        `'it'\''s'`,
		"~/bin/cv":    "~/'bin/cv'",
		"$(rm -rf /)": "'$(rm -rf /)'",
	}
	for in, want := range tests {
		if got := QuoteArgForShell(in); got != want {
			t.Errorf("QuoteArgForShell(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestShellJoin(t *testing.T) {
	got := ShellJoin("cv", "-c", "my cmd", "-W", "2")
	if want := "cv -c 'my cmd' -W 2"; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
