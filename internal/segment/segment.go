package segment

// Default sentinel and placeholder tokens.
const (
	DefaultStart       = "<s>"
	DefaultPlaceholder = "<unk>"
)

// Segmenter splits marker-annotated sentences into segments.
//
// Example:
//
//	seg := segment.New()
//	layout := seg.Segment([]string{"_", "Hello", "_", "world", "!"})
//	// layout.Tokens            = [Hello world !]
//	// layout.MarkerLookup      = [SPACE SPACE NONE]
//	// layout.SpanLengths       = [1 2 3]
//	// layout.SubSegmentLengths = [0 1 2]
type Segmenter struct {
	markers     MarkerSet
	start       string
	placeholder string
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithMarkers sets the marker symbol set.
func WithMarkers(m MarkerSet) Option {
	return func(s *Segmenter) {
		s.markers = m
	}
}

// WithStartToken sets the start sentinel that opens the first segment.
func WithStartToken(tok string) Option {
	return func(s *Segmenter) {
		s.start = tok
	}
}

// WithPlaceholder sets the token substituted into content-free sentences.
func WithPlaceholder(tok string) Option {
	return func(s *Segmenter) {
		s.placeholder = tok
	}
}

// New creates a Segmenter with the default marker set, start sentinel and
// placeholder.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		markers:     DefaultMarkers,
		start:       DefaultStart,
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Markers returns the marker symbol set.
func (s *Segmenter) Markers() MarkerSet {
	return s.markers
}

// Start returns the start sentinel token.
func (s *Segmenter) Start() string {
	return s.start
}

// Segment is one opener token followed by the content tokens up to the next
// marker.
type Segment struct {
	Opener string   // start sentinel or marker symbol
	Marker Marker   // None for the segment opened by the start sentinel
	Tokens []string // content tokens, possibly empty
}

// Layout is the segmentation of one sentence.
type Layout struct {
	Segments []Segment

	// Tokens are the content tokens in order.
	Tokens []string

	// MarkerLookup holds, for every content token, the code of the marker
	// immediately before it (None when another content token precedes it).
	MarkerLookup []Marker

	// SpanLengths are the segment lengths in the sentinel-prefixed stream,
	// each counting its opener.
	SpanLengths []int

	// SubSegmentLengths are SpanLengths without the opener: the number of
	// content tokens in each segment.
	SubSegmentLengths []int

	// Degenerate is set when the sentence had no content tokens and the
	// placeholder was substituted.
	Degenerate bool
}

// ContentLength returns the number of content tokens.
func (l *Layout) ContentLength() int {
	return len(l.Tokens)
}

// Openers returns the opener token of every segment.
func (l *Layout) Openers() []string {
	out := make([]string, len(l.Segments))
	for i, seg := range l.Segments {
		out[i] = seg.Opener
	}
	return out
}

// Segment splits one sentence.
//
// Positions are taken over the stream [start, sentence...]: the sentinel sits
// at position 0 and acts as an implicit marker. Marker positions plus a final
// position equal to the stream length are differenced into SpanLengths.
//
// A sentence without content tokens gets the placeholder appended and is
// flagged Degenerate.
func (s *Segmenter) Segment(sentence []string) *Layout {
	if s.ContentLength(sentence) == 0 {
		padded := make([]string, len(sentence), len(sentence)+1)
		copy(padded, sentence)
		l := s.split(append(padded, s.placeholder))
		l.Degenerate = true
		return l
	}
	return s.split(sentence)
}

// SegmentBatch splits every sentence of a batch.
func (s *Segmenter) SegmentBatch(sentences [][]string) []*Layout {
	out := make([]*Layout, len(sentences))
	for i, sent := range sentences {
		out[i] = s.Segment(sent)
	}
	return out
}

// ContentLength counts the non-marker tokens of a sentence.
func (s *Segmenter) ContentLength(sentence []string) int {
	n := 0
	for _, tok := range sentence {
		if !s.markers.IsMarker(tok) {
			n++
		}
	}
	return n
}

func (s *Segmenter) split(sentence []string) *Layout {
	// Marker positions in the sentinel-prefixed stream.
	positions := []int{0}
	for i, tok := range sentence {
		if s.markers.IsMarker(tok) {
			positions = append(positions, i+1)
		}
	}
	positions = append(positions, len(sentence)+1)

	l := &Layout{
		SpanLengths:       make([]int, 0, len(positions)-1),
		SubSegmentLengths: make([]int, 0, len(positions)-1),
	}
	for i := 1; i < len(positions); i++ {
		span := positions[i] - positions[i-1]
		sub := span - 1
		if sub < 0 {
			sub = 0
		}
		l.SpanLengths = append(l.SpanLengths, span)
		l.SubSegmentLengths = append(l.SubSegmentLengths, sub)
	}

	cur := Segment{Opener: s.start, Marker: None}
	prev := None
	for _, tok := range sentence {
		if code := s.markers.Code(tok); code != None {
			l.Segments = append(l.Segments, cur)
			cur = Segment{Opener: tok, Marker: code}
			prev = code
			continue
		}
		cur.Tokens = append(cur.Tokens, tok)
		l.Tokens = append(l.Tokens, tok)
		l.MarkerLookup = append(l.MarkerLookup, prev)
		prev = None
	}
	l.Segments = append(l.Segments, cur)

	return l
}

// Annotate re-inserts marker symbols in front of the tokens whose code is
// not None, producing a marker-annotated token stream.
//
// Panics if tokens and markers differ in length.
func (s MarkerSet) Annotate(tokens []string, markers []Marker) []string {
	if len(tokens) != len(markers) {
		panic("segment.Annotate: tokens and markers differ in length")
	}
	out := make([]string, 0, 2*len(tokens))
	for i, tok := range tokens {
		if sym := s.Symbol(markers[i]); sym != "" {
			out = append(out, sym)
		}
		out = append(out, tok)
	}
	return out
}
