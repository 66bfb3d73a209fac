// Package tokenizer provides the vocabulary and the marker-annotating
// pre-tokenizer of segnmt.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Marker tokens describe how a token joins the one before it:
//   - "_": a blank precedes the token
//   - "^": the token attaches to punctuation inside a word
//   - "`": an apostrophe joins the token to the previous one
//
// Example usage:
//
//	import "github.com/born-ml/segnmt/tokenizer"
//
//	vocab, err := tokenizer.LoadVocab("vocab.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tok := tokenizer.NewWordTokenizer(vocab)
//
//	tokens := tok.Tokenize("Hello, world!") // [_ Hello , _ world !]
//	ids := tok.Encode(tokens)
package tokenizer

import (
	"github.com/born-ml/segnmt/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// Vocab maps words and sub-words to ids and back.
type Vocab = tokenizer.Vocab

// WordTokenizer splits text into marker-annotated vocabulary pieces.
type WordTokenizer = tokenizer.WordTokenizer

// WordTokenizerOption configures a WordTokenizer.
type WordTokenizerOption = tokenizer.WordTokenizerOption

// Special tokens and their ids.
const (
	PadToken   = tokenizer.PadToken
	StartToken = tokenizer.StartToken
	EndToken   = tokenizer.EndToken
	UnkToken   = tokenizer.UnkToken

	PadID   = tokenizer.PadID
	StartID = tokenizer.StartID
	EndID   = tokenizer.EndID
	UnkID   = tokenizer.UnkID
)

// ErrInvalidVocab is returned when a vocabulary file breaks the reserved id layout.
var ErrInvalidVocab = tokenizer.ErrInvalidVocab

// NewVocab creates a vocabulary from words. Reserved tokens are placed first.
func NewVocab(words []string) *Vocab {
	return tokenizer.NewVocab(words)
}

// LoadVocab reads a {"word2id": {...}} vocabulary file.
func LoadVocab(path string) (*Vocab, error) {
	return tokenizer.LoadVocab(path)
}

// NewWordTokenizer creates a pre-tokenizer over vocab.
func NewWordTokenizer(vocab *Vocab, opts ...WordTokenizerOption) *WordTokenizer {
	return tokenizer.NewWordTokenizer(vocab, opts...)
}

// WithMaxPieceRunes bounds the length of sub-word pieces tried against the
// vocabulary.
func WithMaxPieceRunes(n int) WordTokenizerOption {
	return tokenizer.WithMaxPieceRunes(n)
}
