package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/born-ml/segnmt/internal/segment"
)

// Special tokens.
const (
	PadToken   = "<pad>"
	StartToken = "<s>"
	EndToken   = "</s>"
	UnkToken   = "<unk>"
)

// Special token ids.
const (
	PadID   = 0
	StartID = 1
	EndID   = 2
	UnkID   = 3
)

// ErrInvalidVocab is returned when a vocabulary file breaks the reserved id layout.
var ErrInvalidVocab = errors.New("invalid vocabulary")

// Vocab maps words and sub-words to ids and back.
//
// The first ids are reserved: the four special tokens, then the marker
// symbols of the Space, Attach and Quote markers.
type Vocab struct {
	word2id map[string]int
	id2word []string
	markers segment.MarkerSet
}

// NewVocab creates a vocabulary from words.
//
// Reserved tokens are placed first; duplicates and reserved words in words
// are skipped. Ids follow the order of words.
func NewVocab(words []string) *Vocab {
	v := &Vocab{
		word2id: make(map[string]int, len(words)+7),
		markers: segment.DefaultMarkers,
	}
	for _, w := range reserved(v.markers) {
		v.add(w)
	}
	for _, w := range words {
		v.add(w)
	}
	return v
}

func reserved(m segment.MarkerSet) []string {
	return []string{PadToken, StartToken, EndToken, UnkToken, m[0], m[1], m[2]}
}

func (v *Vocab) add(w string) {
	if _, ok := v.word2id[w]; ok {
		return
	}
	v.word2id[w] = len(v.id2word)
	v.id2word = append(v.id2word, w)
}

// IDOf returns the id of w, or UnkID for unknown words.
func (v *Vocab) IDOf(w string) int {
	if id, ok := v.word2id[w]; ok {
		return id
	}
	return UnkID
}

// WordOf returns the word of id, or UnkToken for ids out of range.
func (v *Vocab) WordOf(id int) string {
	if id < 0 || id >= len(v.id2word) {
		return UnkToken
	}
	return v.id2word[id]
}

// Contains reports whether w is in the vocabulary.
func (v *Vocab) Contains(w string) bool {
	_, ok := v.word2id[w]
	return ok
}

// Len returns the vocabulary size.
func (v *Vocab) Len() int {
	return len(v.id2word)
}

// Markers returns the marker symbol set of the vocabulary.
func (v *Vocab) Markers() segment.MarkerSet {
	return v.markers
}

// MarkerID returns the id of the marker symbol for m, or -1 for None.
func (v *Vocab) MarkerID(m segment.Marker) int {
	sym := v.markers.Symbol(m)
	if sym == "" {
		return -1
	}
	return v.word2id[sym]
}

// IDs maps tokens to ids.
func (v *Vocab) IDs(tokens []string) []int {
	out := make([]int, len(tokens))
	for i, t := range tokens {
		out[i] = v.IDOf(t)
	}
	return out
}

// Words maps ids to tokens.
func (v *Vocab) Words(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = v.WordOf(id)
	}
	return out
}

type vocabFile struct {
	Word2ID map[string]int `json:"word2id"`
}

// LoadVocab reads a vocabulary from a JSON file.
func LoadVocab(path string) (*Vocab, error) {
	//nolint:gosec // Loading vocabulary from user-specified path is intentional.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return ParseVocab(data)
}

// ParseVocab decodes a {"word2id": {...}} document.
//
// Ids must be dense from 0 and the reserved tokens must sit at their
// reserved ids.
func ParseVocab(data []byte) (*Vocab, error) {
	var f vocabFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	id2word := make([]string, len(f.Word2ID))
	seen := make([]bool, len(f.Word2ID))
	for w, id := range f.Word2ID {
		if id < 0 || id >= len(id2word) || seen[id] {
			return nil, fmt.Errorf("%w: id %d of %q is not dense", ErrInvalidVocab, id, w)
		}
		id2word[id] = w
		seen[id] = true
	}

	v := &Vocab{word2id: f.Word2ID, id2word: id2word, markers: segment.DefaultMarkers}
	for want, w := range reserved(v.markers) {
		if got, ok := f.Word2ID[w]; !ok || got != want {
			return nil, fmt.Errorf("%w: %q must have id %d", ErrInvalidVocab, w, want)
		}
	}
	return v, nil
}

// Save writes the vocabulary as JSON.
func (v *Vocab) Save(path string) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	return nil
}

// MarshalJSON encodes the vocabulary as {"word2id": {...}}.
func (v *Vocab) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabFile{Word2ID: v.word2id})
}
