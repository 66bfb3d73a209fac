package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTokenizer() *WordTokenizer {
	return NewWordTokenizer(NewVocab([]string{
		"Hello", "world", "don", "t", "e", "mail", "un", "break", "able", "unbreak",
	}))
}

func TestWordTokenizer_Tokenize(t *testing.T) {
	tok := testTokenizer()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"punctuation", "Hello, world!", []string{"_", "Hello", ",", "_", "world", "!"}},
		{"apostrophe", "don't", []string{"_", "don", "`", "t"}},
		{"hyphen", "e-mail", []string{"_", "e", "-", "^", "mail"}},
		{"digits", "x42", []string{"_", "x", "4", "2"}},
		{"greedy pieces", "unbreakable", []string{"_", "unbreak", "able"}},
		{"unknown runes", "qq", []string{"_", "q", "q"}},
		{"leading quote", "'Hello'", []string{"_", "'", "^", "Hello", "'"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokenize(tt.text))
		})
	}
}

func TestWordTokenizer_MaxPiece(t *testing.T) {
	tok := NewWordTokenizer(NewVocab([]string{"un", "unbreak", "break"}), WithMaxPieceRunes(5))
	assert.Equal(t, []string{"_", "un", "break"}, tok.Tokenize("unbreak"))
}

func TestWordTokenizer_EncodeDecode(t *testing.T) {
	tok := testTokenizer()
	ids := tok.Encode([]string{"_", "Hello", "zzz"})

	assert.Equal(t, []int{4, tok.Vocab().IDOf("Hello"), UnkID}, ids)
	assert.Equal(t, []string{"_", "Hello", "<unk>"}, tok.Decode(ids))
}

func TestWordTokenizer_SpecialTokens(t *testing.T) {
	tok := testTokenizer()

	assert.Equal(t, StartID, tok.BosToken())
	assert.Equal(t, EndID, tok.EosToken())
	assert.Equal(t, PadID, tok.PadToken())
	assert.Equal(t, UnkID, tok.UnkToken())
	assert.True(t, tok.IsSpecialToken(EndID))
	assert.False(t, tok.IsSpecialToken(4))
	assert.Equal(t, 17, tok.VocabSize())
}
