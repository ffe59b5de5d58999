package service

import (
	"testing"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

func TestNormalize(t *testing.T) {
	n := NewTextNormalizer(DefaultCorrections, []domain.Language{domain.LanguageLatvian})

	tests := []struct {
		name     string
		text     string
		language domain.Language
		want     string
	}{
		{"single word", "pievieno tajota Corolla", domain.LanguageLatvian, "pievieno Toyota Corolla"},
		{"case insensitive", "TAJOTA Corolla", domain.LanguageLatvian, "Toyota Corolla"},
		{"phrase", "divi bremzha diski tajota", domain.LanguageLatvian, "divi bremžu disks Toyota"},
		{"punctuation boundary", "tajota, Corolla", domain.LanguageLatvian, "Toyota, Corolla"},
		{"inside word untouched", "tajotas Corolla", domain.LanguageLatvian, "tajotas Corolla"},
		{"no lowercasing", "Pievieno Divus BMW", domain.LanguageLatvian, "Pievieno Divus BMW"},
		{"other language untouched", "tajota Corolla", domain.LanguageRussian, "tajota Corolla"},
		{"empty", "", domain.LanguageLatvian, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.text, tt.language); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalize_LongestFirst(t *testing.T) {
	n := NewTextNormalizer(map[string]string{
		"bremzha":       "bremze",
		"bremzha diski": "bremžu disks",
	}, []domain.Language{domain.LanguageLatvian})

	got := n.Normalize("bremzha diski un bremzha", domain.LanguageLatvian)
	if got != "bremžu disks un bremze" {
		t.Errorf("unexpected result %q", got)
	}
}

func TestNormalize_UnicodeBoundary(t *testing.T) {
	n := NewTextNormalizer(map[string]string{"disk": "disks"}, []domain.Language{domain.LanguageLatvian})

	if got := n.Normalize("diskā", domain.LanguageLatvian); got != "diskā" {
		t.Errorf("expected match inside word to be skipped, got %q", got)
	}
	if got := n.Normalize("ā disk", domain.LanguageLatvian); got != "ā disks" {
		t.Errorf("expected whole word replaced, got %q", got)
	}
}

func TestNormalize_OverlappingCandidates(t *testing.T) {
	n := NewTextNormalizer(map[string]string{"ab ab": "X"}, []domain.Language{domain.LanguageLatvian})

	if got := n.Normalize("xab ab ab", domain.LanguageLatvian); got != "xab X" {
		t.Errorf("expected the whole-word match after a rejected one, got %q", got)
	}
	if got := n.Normalize("ab ab ab ab", domain.LanguageLatvian); got != "X X" {
		t.Errorf("unexpected result %q", got)
	}
}
