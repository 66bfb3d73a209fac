// Package segment splits marker-annotated token sequences into segments.
//
// A sentence arrives as a flat token stream in which some tokens are boundary
// marker symbols. A marker states how the content token after it attaches to
// the surface text that precedes it. Segmentation turns the stream into:
//   - the content tokens (markers removed)
//   - the marker code of every content token (MarkerLookup)
//   - the span of every segment, opener included (SpanLengths)
//   - the content length of every segment (SubSegmentLengths)
//
// The start sentinel acts as the opener of the first segment, so a sentence
// with k markers always has k+1 segments.
package segment

import "fmt"

// Marker is a boundary marker code.
type Marker int

// Marker codes. The numeric values are part of the model contract: the marker
// head of a decoder predicts a distribution over exactly these four codes.
const (
	None   Marker = iota // token attaches directly to the previous one
	Space                // token starts a new space separated word
	Attach               // token starts a new segment glued to the previous text
	Quote                // token follows an apostrophe
)

// NumMarkers is the number of marker codes, None included.
const NumMarkers = 4

// String returns the marker name.
func (m Marker) String() string {
	switch m {
	case None:
		return "NONE"
	case Space:
		return "SPACE"
	case Attach:
		return "ATTACH"
	case Quote:
		return "QUOTE"
	default:
		return fmt.Sprintf("Marker(%d)", int(m))
	}
}

// Valid reports whether m is one of the four marker codes.
func (m Marker) Valid() bool {
	return m >= None && m < NumMarkers
}

// MarkerSet holds the token symbols of the Space, Attach and Quote markers.
type MarkerSet [3]string

// DefaultMarkers is the symbol set used by the vocabulary files.
var DefaultMarkers = MarkerSet{"_", "^", "`"}

// Code returns the marker code of tok, or None if tok is not a marker symbol.
func (s MarkerSet) Code(tok string) Marker {
	for i, sym := range s {
		if tok == sym {
			return Marker(i + 1)
		}
	}
	return None
}

// IsMarker reports whether tok is one of the marker symbols.
func (s MarkerSet) IsMarker(tok string) bool {
	return s.Code(tok) != None
}

// Symbol returns the token symbol for m. None has no symbol.
func (s MarkerSet) Symbol(m Marker) string {
	if m <= None || m >= NumMarkers {
		return ""
	}
	return s[m-1]
}
