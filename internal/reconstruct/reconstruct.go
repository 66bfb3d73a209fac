// Package reconstruct turns decoded token and marker sequences back into
// surface text.
package reconstruct

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/born-ml/segnmt/internal/segment"
)

// DefaultPlaceholderScore is the score given to a sentence that decoded to
// nothing.
const DefaultPlaceholderScore = -100.0

// Surfaces holds the text emitted before a token for every marker. The entry
// for segment.None is never used.
type Surfaces [segment.NumMarkers]string

// DefaultSurfaces renders SPACE as a blank, ATTACH as nothing and QUOTE as an
// apostrophe.
var DefaultSurfaces = Surfaces{"", " ", "", "'"}

// Sentence is one rendered translation.
type Sentence struct {
	Tokens     []string
	Markers    []segment.Marker
	Text       string
	Score      float64
	Degenerate bool
}

// Reconstructor renders marker-annotated token sequences.
type Reconstructor struct {
	markers          segment.MarkerSet
	surfaces         Surfaces
	placeholder      string
	placeholderScore float64
	logger           *slog.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithMarkers sets the marker symbols that are never rendered as content.
func WithMarkers(m segment.MarkerSet) Option {
	return func(r *Reconstructor) {
		r.markers = m
	}
}

// WithSurfaces sets the boundary text of every marker.
func WithSurfaces(s Surfaces) Option {
	return func(r *Reconstructor) {
		r.surfaces = s
	}
}

// WithPlaceholder sets the token and score used for empty output.
func WithPlaceholder(tok string, score float64) Option {
	return func(r *Reconstructor) {
		r.placeholder = tok
		r.placeholderScore = score
	}
}

// WithLogger sets the logger for degenerate repairs.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconstructor) {
		r.logger = l
	}
}

// New creates a Reconstructor with the default markers and surfaces.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{
		markers:          segment.DefaultMarkers,
		surfaces:         DefaultSurfaces,
		placeholder:      segment.DefaultPlaceholder,
		placeholderScore: DefaultPlaceholderScore,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Render joins tokens into text. A token with marker None is appended
// directly; any other marker emits its surface before the token. The first
// token is treated as SPACE when its marker is None, so no surface is ever
// emitted at the start of the text.
//
// Blank tokens and marker symbols are never rendered, and neither is the
// boundary in front of them.
//
// Panics if tokens and markers differ in length.
func (r *Reconstructor) Render(tokens []string, markers []segment.Marker) string {
	if len(tokens) != len(markers) {
		panic(fmt.Sprintf("Reconstructor.Render: %d tokens with %d markers", len(tokens), len(markers)))
	}

	var b strings.Builder
	for i, tok := range tokens {
		if strings.TrimSpace(tok) == "" || r.markers.IsMarker(tok) {
			continue
		}
		m := markers[i]
		if i == 0 && m == segment.None {
			m = segment.Space
		}
		if b.Len() > 0 && m != segment.None && m.Valid() {
			b.WriteString(r.surfaces[m])
		}
		b.WriteString(tok)
	}
	return b.String()
}

// Finalize renders one decoded sentence. A leading None marker is recorded
// as SPACE. A sentence without tokens becomes the placeholder token with the
// placeholder score.
func (r *Reconstructor) Finalize(tokens []string, markers []segment.Marker, score float64) Sentence {
	if len(tokens) == 0 {
		r.logger.Debug("empty output replaced by placeholder", "placeholder", r.placeholder)
		return Sentence{
			Tokens:     []string{r.placeholder},
			Markers:    []segment.Marker{segment.Space},
			Text:       r.placeholder,
			Score:      r.placeholderScore,
			Degenerate: true,
		}
	}
	if markers[0] == segment.None {
		markers = append([]segment.Marker{segment.Space}, markers[1:]...)
	}
	return Sentence{
		Tokens:  tokens,
		Markers: markers,
		Text:    r.Render(tokens, markers),
		Score:   score,
	}
}

// Annotate interleaves marker symbols with the tokens, producing the
// marker-annotated form the segmenter consumes.
func (r *Reconstructor) Annotate(tokens []string, markers []segment.Marker) []string {
	return r.markers.Annotate(tokens, markers)
}
