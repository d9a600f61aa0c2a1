// Package store provides tests for search excerpt construction.
package store

import (
	"strings"
	"testing"
)

func TestCIPattern(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		re, err := ciPattern("malaria")
		if err != nil {
			t.Fatalf("ciPattern failed: %v", err)
		}
		if !re.MatchString("MALARIA outbreak") {
			t.Error("expected case-insensitive match")
		}
	})

	t.Run("treats the term literally", func(t *testing.T) {
		re, err := ciPattern("c++ (lang)")
		if err != nil {
			t.Fatalf("ciPattern failed on special characters: %v", err)
		}
		if !re.MatchString("about c++ (lang) here") {
			t.Error("expected literal match")
		}
		if re.MatchString("about cpp lang here") {
			t.Error("metacharacters should not act as a pattern")
		}
	})
}

func TestBuildExcerpt(t *testing.T) {
	t.Run("wraps the matched term", func(t *testing.T) {
		re, _ := ciPattern("mala")
		got := buildExcerpt("malaria", re)
		if got != "**mala**ria" {
			t.Errorf("expected '**mala**ria', got '%s'", got)
		}
	})

	t.Run("keeps the source casing", func(t *testing.T) {
		re, _ := ciPattern("malaria")
		got := buildExcerpt("Malaria kills", re)
		if got != "**Malaria** kills" {
			t.Errorf("expected '**Malaria** kills', got '%s'", got)
		}
	})

	t.Run("highlights every occurrence in the excerpt", func(t *testing.T) {
		re, _ := ciPattern("malaria")
		got := buildExcerpt("malaria and Malaria", re)
		if got != "**malaria** and **Malaria**" {
			t.Errorf("unexpected excerpt: %s", got)
		}
	})

	t.Run("pads around a match deep in the text", func(t *testing.T) {
		text := strings.Repeat("a ", 100) + "needle" + strings.Repeat(" b", 100)
		re, _ := ciPattern("needle")

		got := buildExcerpt(text, re)
		if !strings.HasPrefix(got, "...") {
			t.Errorf("expected a leading ellipsis: %s", got)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected a trailing ellipsis: %s", got)
		}
		if !strings.Contains(got, "**needle**") {
			t.Errorf("expected the highlighted term: %s", got)
		}
	})

	t.Run("counts context in characters not bytes", func(t *testing.T) {
		text := strings.Repeat("é", 100) + "needle"
		re, _ := ciPattern("needle")

		got := buildExcerpt(text, re)
		if !strings.HasPrefix(got, "...") {
			t.Errorf("expected a leading ellipsis: %s", got)
		}
		// 75 characters of context plus the 6-character term, an ellipsis,
		// and the highlight markers.
		if n := len([]rune(got)); n != 88 {
			t.Errorf("expected 88 characters, got %d", n)
		}
	})

	t.Run("falls back to a prefix when the term is absent", func(t *testing.T) {
		re, _ := ciPattern("zebra")
		long := strings.Repeat("x", 200)

		got := buildExcerpt(long, re)
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected an elided prefix: %s", got)
		}
		if n := len([]rune(got)); n != 153 {
			t.Errorf("expected 150 characters plus ellipsis, got %d", n)
		}
	})

	t.Run("returns short text unchanged when the term is absent", func(t *testing.T) {
		re, _ := ciPattern("zebra")
		got := buildExcerpt("short text", re)
		if got != "short text" {
			t.Errorf("expected unchanged text, got '%s'", got)
		}
	})
}
