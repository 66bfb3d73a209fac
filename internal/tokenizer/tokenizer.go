package tokenizer

// Tokenizer is the core interface for text tokenization.
//
// Tokenize produces a marker-annotated token stream: marker symbols appear as
// tokens of their own in front of the content token they attach.
type Tokenizer interface {
	// Tokenize converts text to marker-annotated tokens.
	Tokenize(text string) []string

	// Encode converts tokens to ids. Unknown tokens map to UnkToken.
	Encode(tokens []string) []int

	// Decode converts ids back to tokens.
	Decode(ids []int) []string

	// VocabSize returns the total vocabulary size.
	VocabSize() int

	// BosToken returns the beginning-of-sequence token ID.
	BosToken() int

	// EosToken returns the end-of-sequence token ID.
	EosToken() int

	// PadToken returns the padding token ID.
	PadToken() int

	// UnkToken returns the unknown token ID.
	UnkToken() int

	// IsSpecialToken checks if a token ID is a special token.
	IsSpecialToken(token int) bool
}
