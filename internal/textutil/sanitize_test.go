package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"colon becomes dash", "Chapter 5: The Return", "Chapter 5 - The Return"},
		{"question mark dropped", "Who Goes There?", "Who Goes There"},
		{"exclamation dropped", "Run!", "Run"},
		{"slashes become dashes", "a/b\\c", "a-b-c"},
		{"trailing dots trimmed", "Epilogue...", "Epilogue"},
		{"whitespace trimmed", "  Prologue  ", "Prologue"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.input); got != tc.expected {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := SanitizeToken("Agatha Christie - Poirot #1"); got != "agatha_christie_-_poirot__1" {
		t.Fatalf("unexpected token: %q", got)
	}
	if got := SanitizeToken("   "); got != "unknown" {
		t.Fatalf("expected fallback token, got %q", got)
	}
	if got := SanitizeToken("___"); got != "unknown" {
		t.Fatalf("expected fallback for separator-only input, got %q", got)
	}
}

func TestTitleFromFileName(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"/books/the_wind-up.bird.Part03.mp3", "The Wind Up Bird Part03"},
		{"my audiobook part 1.mp3", "My Audiobook Part 1"},
		{"....mp3", ""},
	}
	for _, tc := range cases {
		if got := TitleFromFileName(tc.input); got != tc.expected {
			t.Fatalf("TitleFromFileName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
