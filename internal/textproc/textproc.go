// Package textproc prepares raw input text for translation: Unicode
// normalization, language direction detection and sentence splitting.
package textproc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrUnknownForm is returned for an unsupported normalization form.
var ErrUnknownForm = errors.New("unknown normalization form")

// Normalization forms accepted by Config.Form.
const (
	FormNFC  = "NFC"
	FormNFKC = "NFKC"
	FormNone = "none"
)

// Config controls input preparation.
type Config struct {
	// Form is the Unicode normalization form applied to input.
	Form string `yaml:"form"`

	// NoSplit keeps every input text as a single sentence.
	NoSplit bool `yaml:"no_split"`
}

// DefaultConfig composes to NFC and splits sentences.
func DefaultConfig() Config {
	return Config{Form: FormNFC}
}

// Validate checks the normalization form.
func (c Config) Validate() error {
	switch c.Form {
	case FormNFC, FormNFKC, FormNone:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownForm, c.Form)
	}
}

// Normalize applies the configured normalization form and folds every run of
// whitespace into a single blank. Decomposed Hangul jamo are composed into
// syllables under NFC and NFKC.
func (c Config) Normalize(text string) string {
	switch c.Form {
	case FormNFC:
		text = norm.NFC.String(text)
	case FormNFKC:
		text = norm.NFKC.String(text)
	}
	return strings.Join(strings.Fields(text), " ")
}

// Split breaks text into sentences, or returns the normalized text whole
// when NoSplit is set. Empty input yields no sentences.
func (c Config) Split(text string) []string {
	if c.NoSplit {
		if t := c.Normalize(text); t != "" {
			return []string{t}
		}
		return nil
	}
	var out []string
	for _, s := range SplitSentences(text) {
		if t := c.Normalize(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// LatinScore counts the non-blank characters of text in the ASCII range
// 'A'..'z' as +1 and every other non-blank character as -1.
func LatinScore(text string) int {
	score := 0
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
		case r >= 'A' && r <= 'z':
			score++
		default:
			score--
		}
	}
	return score
}

// DetectDirection picks the translation direction of text: latin -> other
// when LatinScore is positive, other -> latin otherwise.
func DetectDirection(text, latin, other string) (src, tgt string) {
	if LatinScore(text) > 0 {
		return latin, other
	}
	return other, latin
}

// isTerminal reports whether r ends a sentence.
func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// SplitSentences splits text at line breaks and after runs of sentence-final
// punctuation followed by whitespace. Sentences keep their punctuation;
// blank sentences are dropped.
func SplitSentences(text string) []string {
	var out []string
	flush := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' }) {
		runes := []rune(line)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !isTerminal(runes[i]) {
				continue
			}
			j := i + 1
			for j < len(runes) && isTerminal(runes[j]) {
				j++
			}
			if j == len(runes) || unicode.IsSpace(runes[j]) {
				flush(string(runes[start:j]))
				start = j
			}
			i = j - 1
		}
		flush(string(runes[start:]))
	}
	return out
}
