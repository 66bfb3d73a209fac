package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestSegment_Basic(t *testing.T) {
	seg := New()
	l := seg.Segment([]string{"_", "Hello", "_", "world", "!"})

	assert.Equal(t, []string{"Hello", "world", "!"}, l.Tokens)
	assert.Equal(t, []Marker{Space, Space, None}, l.MarkerLookup)
	assert.Equal(t, []int{1, 2, 3}, l.SpanLengths)
	assert.Equal(t, []int{0, 1, 2}, l.SubSegmentLengths)
	assert.Equal(t, []string{"<s>", "_", "_"}, l.Openers())
	assert.False(t, l.Degenerate)

	require.Len(t, l.Segments, 3)
	assert.Equal(t, None, l.Segments[0].Marker)
	assert.Empty(t, l.Segments[0].Tokens)
	assert.Equal(t, []string{"world", "!"}, l.Segments[2].Tokens)
}

func TestSegment_ContentBeforeFirstMarker(t *testing.T) {
	l := New().Segment([]string{"a", "b", "^", "c"})

	assert.Equal(t, []int{3, 2}, l.SpanLengths)
	assert.Equal(t, []int{2, 1}, l.SubSegmentLengths)
	assert.Equal(t, []Marker{None, None, Attach}, l.MarkerLookup)
}

func TestSegment_LengthInvariants(t *testing.T) {
	cases := [][]string{
		{"_", "x"},
		{"x", "y", "z"},
		{"_", "a", "`", "b", "_", "c", "d", "^", "e"},
		{"_", "_", "a"},
		{"a", "_"},
	}
	seg := New()
	for _, sent := range cases {
		l := seg.Segment(sent)
		markers := len(sent) - seg.ContentLength(sent)

		assert.Equal(t, l.ContentLength(), sum(l.SubSegmentLengths), "%v", sent)
		assert.Equal(t, len(sent)+1, sum(l.SpanLengths), "%v", sent)
		assert.Len(t, l.MarkerLookup, l.ContentLength(), "%v", sent)
		assert.Len(t, l.Segments, markers+1, "%v", sent)
		assert.Len(t, l.SpanLengths, markers+1, "%v", sent)
	}
}

func TestSegment_Degenerate(t *testing.T) {
	l := New(WithPlaceholder("<unk>")).Segment([]string{"_", "^"})

	assert.True(t, l.Degenerate)
	assert.Equal(t, []string{"<unk>"}, l.Tokens)
	assert.Equal(t, []Marker{Attach}, l.MarkerLookup)
	assert.Equal(t, []int{0, 0, 1}, l.SubSegmentLengths)

	empty := New().Segment(nil)
	assert.True(t, empty.Degenerate)
	assert.Equal(t, 1, empty.ContentLength())
}

func TestSegment_StackedMarkersLastWins(t *testing.T) {
	l := New().Segment([]string{"_", "^", "x"})
	assert.Equal(t, []Marker{Attach}, l.MarkerLookup)
	assert.Equal(t, []int{0, 0, 1}, l.SubSegmentLengths)
}

func TestSegment_RoundTrip(t *testing.T) {
	cases := [][]string{
		{"_", "Hello", "_", "world", "!"},
		{"_", "don", "`", "t", "_", "stop"},
		{"x", "_", "e", "-", "^", "mail"},
	}
	seg := New()
	for _, sent := range cases {
		l := seg.Segment(sent)
		assert.Equal(t, sent, seg.Markers().Annotate(l.Tokens, l.MarkerLookup))
	}
}

func TestSegment_CustomMarkers(t *testing.T) {
	seg := New(WithMarkers(MarkerSet{"|", "+", "~"}), WithStartToken("BOS"))
	l := seg.Segment([]string{"|", "a", "~", "b"})

	assert.Equal(t, []Marker{Space, Quote}, l.MarkerLookup)
	assert.Equal(t, "BOS", l.Segments[0].Opener)
	assert.Equal(t, "BOS", seg.Start())
}

func TestMarkerSet(t *testing.T) {
	assert.Equal(t, Space, DefaultMarkers.Code("_"))
	assert.Equal(t, Attach, DefaultMarkers.Code("^"))
	assert.Equal(t, Quote, DefaultMarkers.Code("`"))
	assert.Equal(t, None, DefaultMarkers.Code("word"))
	assert.Equal(t, "", DefaultMarkers.Symbol(None))
	assert.Equal(t, "`", DefaultMarkers.Symbol(Quote))
	assert.Equal(t, "SPACE", Space.String())
	assert.False(t, Marker(7).Valid())
}

func TestAnnotate_LengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		DefaultMarkers.Annotate([]string{"a"}, nil)
	})
}
