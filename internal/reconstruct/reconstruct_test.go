package reconstruct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/segnmt/internal/segment"
)

const (
	none   = segment.None
	space  = segment.Space
	attach = segment.Attach
	quote  = segment.Quote
)

func TestRender(t *testing.T) {
	r := New()

	tests := []struct {
		name    string
		tokens  []string
		markers []segment.Marker
		want    string
	}{
		{"leading none forced to space", []string{"Hello", "world", "!"}, []segment.Marker{none, space, none}, "Hello world!"},
		{"leading space", []string{"Hello", "world"}, []segment.Marker{space, space}, "Hello world"},
		{"attach", []string{"e", "-", "mail"}, []segment.Marker{space, none, attach}, "e-mail"},
		{"quote", []string{"don", "t"}, []segment.Marker{space, quote}, "don't"},
		{"sub-word pieces", []string{"trans", "lation"}, []segment.Marker{space, none}, "translation"},
		{"blank token under marker", []string{"a", " ", "b"}, []segment.Marker{space, space, space}, "a b"},
		{"marker symbol token", []string{"a", "_", "b"}, []segment.Marker{space, space, none}, "ab"},
		{"empty", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.tokens, tt.markers))
		})
	}
}

func TestRender_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		New().Render([]string{"a"}, nil)
	})
}

func TestRender_CustomSurfaces(t *testing.T) {
	r := New(WithSurfaces(Surfaces{"", "|", "+", "~"}))
	got := r.Render([]string{"a", "b", "c", "d"}, []segment.Marker{space, space, attach, quote})
	assert.Equal(t, "a|b+c~d", got)
}

func TestFinalize(t *testing.T) {
	r := New()

	s := r.Finalize([]string{"Hello", "world"}, []segment.Marker{none, space}, -0.5)
	assert.Equal(t, "Hello world", s.Text)
	assert.Equal(t, -0.5, s.Score)
	assert.False(t, s.Degenerate)
	assert.Equal(t, []segment.Marker{space, space}, s.Markers)

	empty := r.Finalize(nil, nil, -1)
	assert.True(t, empty.Degenerate)
	assert.Equal(t, segment.DefaultPlaceholder, empty.Text)
	assert.Equal(t, DefaultPlaceholderScore, empty.Score)
	assert.Equal(t, []string{segment.DefaultPlaceholder}, empty.Tokens)
}

func TestFinalize_CustomPlaceholder(t *testing.T) {
	r := New(WithPlaceholder("?", -7))
	s := r.Finalize(nil, nil, 0)
	assert.Equal(t, "?", s.Text)
	assert.Equal(t, -7.0, s.Score)
}

func TestAnnotate_RoundTripsThroughSegmenter(t *testing.T) {
	r := New()
	s := r.Finalize([]string{"Hello", "world", "!"}, []segment.Marker{none, space, none}, 0)

	annotated := r.Annotate(s.Tokens, s.Markers)
	assert.Equal(t, []string{"_", "Hello", "_", "world", "!"}, annotated)

	layout := segment.New().Segment(annotated)
	require.False(t, layout.Degenerate)
	assert.Equal(t, s.Tokens, layout.Tokens)
	assert.Equal(t, s.Markers, layout.MarkerLookup)
}
