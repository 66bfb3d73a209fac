package tokenizer

import (
	"strings"
	"unicode"

	"github.com/born-ml/segnmt/internal/segment"
)

// DefaultMaxPieceRunes bounds the sub-word pieces tried by the greedy split.
const DefaultMaxPieceRunes = 16

// WordTokenizer turns surface text into marker-annotated tokens.
//
// Rules, applied per whitespace separated word:
//   - the word opens with the Space marker symbol
//   - punctuation and symbol runes become tokens of their own (no marker)
//   - digit runs are split into single digits (no marker)
//   - letter runs are split greedily into the longest pieces known to the
//     vocabulary (no marker between pieces)
//   - a letter run after punctuation inside a word opens with the Attach marker
//   - an apostrophe between letters becomes the Quote marker
type WordTokenizer struct {
	vocab    *Vocab
	markers  segment.MarkerSet
	maxPiece int
}

// WordTokenizerOption configures a WordTokenizer.
type WordTokenizerOption func(*WordTokenizer)

// WithMaxPieceRunes sets the longest sub-word piece tried, in runes.
func WithMaxPieceRunes(n int) WordTokenizerOption {
	return func(t *WordTokenizer) {
		if n > 0 {
			t.maxPiece = n
		}
	}
}

// NewWordTokenizer creates a tokenizer over vocab.
func NewWordTokenizer(vocab *Vocab, opts ...WordTokenizerOption) *WordTokenizer {
	t := &WordTokenizer{
		vocab:    vocab,
		markers:  vocab.Markers(),
		maxPiece: DefaultMaxPieceRunes,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Vocab returns the underlying vocabulary.
func (t *WordTokenizer) Vocab() *Vocab {
	return t.vocab
}

type runeClass int

const (
	classLetter runeClass = iota
	classDigit
	classApostrophe
	classPunct
)

func classify(r rune) runeClass {
	switch {
	case r == '\'' || r == '’':
		return classApostrophe
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsLetter(r) || unicode.IsMark(r):
		return classLetter
	default:
		return classPunct
	}
}

// Tokenize converts text to marker-annotated tokens.
func (t *WordTokenizer) Tokenize(text string) []string {
	var out []string
	for _, word := range strings.Fields(text) {
		out = append(out, t.markers.Symbol(segment.Space))
		out = t.appendWord(out, []rune(word))
	}
	return out
}

func (t *WordTokenizer) appendWord(out []string, word []rune) []string {
	prev := classLetter
	for i := 0; i < len(word); {
		c := classify(word[i])
		switch c {
		case classDigit:
			out = append(out, string(word[i]))
			i++
		case classApostrophe:
			if i > 0 && i+1 < len(word) && classify(word[i-1]) == classLetter && classify(word[i+1]) == classLetter {
				out = append(out, t.markers.Symbol(segment.Quote))
				i++
				// The quote opens the next segment; no Attach needed.
				prev = classLetter
				continue
			}
			out = append(out, string(word[i]))
			i++
		case classPunct:
			out = append(out, string(word[i]))
			i++
		case classLetter:
			j := i
			for j < len(word) && classify(word[j]) == classLetter {
				j++
			}
			if i > 0 && (prev == classPunct || prev == classApostrophe) {
				out = append(out, t.markers.Symbol(segment.Attach))
			}
			out = t.appendPieces(out, word[i:j])
			i = j
		}
		prev = c
	}
	return out
}

// appendPieces splits a letter run into the longest known pieces. A rune with
// no known piece is emitted on its own and later maps to the unknown id.
func (t *WordTokenizer) appendPieces(out []string, run []rune) []string {
	for i := 0; i < len(run); {
		end := i + t.maxPiece
		if end > len(run) {
			end = len(run)
		}
		j := end
		for ; j > i+1; j-- {
			if t.vocab.Contains(string(run[i:j])) {
				break
			}
		}
		out = append(out, string(run[i:j]))
		i = j
	}
	return out
}

// Encode converts tokens to ids. Unknown tokens map to UnkID.
func (t *WordTokenizer) Encode(tokens []string) []int {
	return t.vocab.IDs(tokens)
}

// Decode converts ids back to tokens.
func (t *WordTokenizer) Decode(ids []int) []string {
	return t.vocab.Words(ids)
}

// VocabSize returns the total vocabulary size.
func (t *WordTokenizer) VocabSize() int {
	return t.vocab.Len()
}

// BosToken returns the start sentinel id.
func (t *WordTokenizer) BosToken() int {
	return StartID
}

// EosToken returns the end sentinel id.
func (t *WordTokenizer) EosToken() int {
	return EndID
}

// PadToken returns the padding id.
func (t *WordTokenizer) PadToken() int {
	return PadID
}

// UnkToken returns the unknown id.
func (t *WordTokenizer) UnkToken() int {
	return UnkID
}

// IsSpecialToken checks if a token ID is one of the four special tokens.
func (t *WordTokenizer) IsSpecialToken(token int) bool {
	return token >= PadID && token <= UnkID
}

var _ Tokenizer = (*WordTokenizer)(nil)
