package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

// DefaultCorrections maps frequent Latvian mis-transcriptions to their intended spelling.
var DefaultCorrections = map[string]string{
	"tajota":        "Toyota",
	"bremzha diski": "bremžu disks",
}

type correction struct {
	pattern *regexp.Regexp
	replace string
}

// TextNormalizer rewrites known mis-transcribed words. Matching is whole-word and
// case-insensitive; longer patterns are applied first so phrases win over their parts.
type TextNormalizer struct {
	corrections []correction
	languages   map[domain.Language]bool
}

func NewTextNormalizer(corrections map[string]string, languages []domain.Language) *TextNormalizer {
	keys := make([]string, 0, len(corrections))
	for k := range corrections {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	n := &TextNormalizer{languages: make(map[domain.Language]bool, len(languages))}
	for _, k := range keys {
		n.corrections = append(n.corrections, correction{
			pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(k))),
			replace: corrections[k],
		})
	}
	for _, l := range languages {
		n.languages[l] = true
	}
	return n
}

func (n *TextNormalizer) Normalize(text string, language domain.Language) string {
	if !n.languages[language] {
		return text
	}
	for _, c := range n.corrections {
		text = replaceWholeWords(text, c.pattern, c.replace)
	}
	return text
}

// replaceWholeWords scans left to right. A match that is not a whole word is
// skipped one rune at a time, so an overlapping whole-word match after it is
// still found.
func replaceWholeWords(text string, pattern *regexp.Regexp, replace string) string {
	var sb strings.Builder
	last, pos := 0, 0
	for pos < len(text) {
		m := pattern.FindStringIndex(text[pos:])
		if m == nil || m[0] == m[1] {
			break
		}
		start, end := pos+m[0], pos+m[1]
		if !isBoundary(text, start, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}
		sb.WriteString(text[last:start])
		sb.WriteString(replace)
		last, pos = end, end
	}
	if last == 0 {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
