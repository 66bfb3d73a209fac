package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()

	// U+D55C written as conjoining jamo.
	decomposed := "\u1112\u1161\u11ab"
	assert.Equal(t, "\ud55c", cfg.Normalize(decomposed))
	assert.Equal(t, "a b c", cfg.Normalize("  a \t b\n\nc "))

	nfkc := Config{Form: FormNFKC}
	assert.Equal(t, "fi 2", nfkc.Normalize("ﬁ ²"))

	none := Config{Form: FormNone}
	assert.Equal(t, decomposed, none.Normalize(decomposed))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.ErrorIs(t, Config{Form: "NFD"}.Validate(), ErrUnknownForm)
}

func TestLatinScore(t *testing.T) {
	assert.Equal(t, 10, LatinScore("Hello world"))
	assert.Equal(t, -5, LatinScore("안녕 하세요"))
	assert.Equal(t, 0, LatinScore("ABC 123 x!"))
	assert.Equal(t, 0, LatinScore(""))
}

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		text     string
		src, tgt string
	}{
		{"Hello world", "en", "ko"},
		{"안녕하세요, 세계", "ko", "en"},
		{"서울에서 KTX 타요", "ko", "en"},
		{"I live in 서울", "en", "ko"},
		{"", "ko", "en"},
	}
	for _, tt := range tests {
		src, tgt := DetectDirection(tt.text, "en", "ko")
		assert.Equal(t, tt.src, src, tt.text)
		assert.Equal(t, tt.tgt, tgt, tt.text)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"two sentences", "Hello world. How are you?", []string{"Hello world.", "How are you?"}},
		{"punctuation runs", "Really?! Yes...  Fine", []string{"Really?!", "Yes...", "Fine"}},
		{"decimal point", "Pi is 3.14 today.", []string{"Pi is 3.14 today."}},
		{"line breaks", "첫 줄\n\n둘째 줄입니다. 셋째", []string{"첫 줄", "둘째 줄입니다.", "셋째"}},
		{"blank", "  \n ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestConfig_Split(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"A b.", "C."}, cfg.Split("A   b. C."))

	cfg.NoSplit = true
	assert.Equal(t, []string{"A b. C."}, cfg.Split("A   b. C."))
	assert.Nil(t, cfg.Split("   "))
}
