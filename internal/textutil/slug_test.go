package textutil_test

import (
	"strings"
	"testing"

	"distill/internal/textutil"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  The  Go   Programming Language!  ", "the-go-programming-language"},
		{"Résumé & Notes", "resume-notes"},
		{"", "untitled"},
		{"!!!", "untitled"},
		{"already-slugged", "already-slugged"},
	}
	for _, tc := range cases {
		if got := textutil.Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSlugifyTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("word ", 40)
	slug := textutil.Slugify(long)
	if len(slug) > 60 {
		t.Fatalf("slug too long: %d chars", len(slug))
	}
	if strings.HasSuffix(slug, "-") || strings.HasPrefix(slug, "-") {
		t.Fatalf("slug has dangling hyphen: %q", slug)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := textutil.SanitizeFileName(`a/b\c:d*e?f"g<h>i|j`); got != "a-b-c-d-efghij" {
		t.Fatalf("unexpected sanitized name: %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := textutil.WordCount("one two  three\nfour"); got != 4 {
		t.Fatalf("WordCount = %d, want 4", got)
	}
	if got := textutil.WordCount(""); got != 0 {
		t.Fatalf("WordCount empty = %d, want 0", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := textutil.FirstLine("\n\n# Heading One\nbody"); got != "Heading One" {
		t.Fatalf("FirstLine = %q", got)
	}
	if got := textutil.FirstLine("plain text first"); got != "plain text first" {
		t.Fatalf("FirstLine = %q", got)
	}
}

func TestSectionHeadings(t *testing.T) {
	text := "# One\nbody\n## Two\nmore\nnot a heading"
	got := textutil.SectionHeadings(text)
	if len(got) != 2 || got[0] != "One" || got[1] != "Two" {
		t.Fatalf("SectionHeadings = %v", got)
	}
}
