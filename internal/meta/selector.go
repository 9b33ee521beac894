package meta

import (
	"sort"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/util"
)

// DefaultArtistWindow is how far below the top confidence a candidate that
// names an artist may sit and still beat an artist-less winner. It is a
// tuned approximation, not a measured threshold.
const DefaultArtistWindow = 0.1

// confidenceEpsilon absorbs float noise such as 0.9-0.1 != 0.8
const confidenceEpsilon = 1e-9

// Selector picks exactly one Candidate per file
type Selector struct {
	artistWindow float64
}

// NewSelector creates a Selector. A negative window disables the
// artist preference entirely.
func NewSelector(artistWindow float64) *Selector {
	return &Selector{artistWindow: artistWindow}
}

// ArtistWindow returns the configured soft preference window
func (s *Selector) ArtistWindow() float64 {
	return s.artistWindow
}

// Rank returns candidates with a non-empty title ordered by confidence
// (descending) then rule priority (ascending)
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) != "" {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if d := ranked[i].Confidence - ranked[j].Confidence; d > confidenceEpsilon || d < -confidenceEpsilon {
			return d > 0
		}
		return ranked[i].Priority < ranked[j].Priority
	})
	return ranked
}

// Select returns the winning candidate, or ErrAmbiguousName when no
// candidate carries a title
func (s *Selector) Select(candidates []Candidate) (Candidate, error) {
	ranked := Rank(candidates)
	if len(ranked) == 0 {
		return Candidate{}, util.ErrAmbiguousName
	}

	top := ranked[0]
	if top.HasArtist() || s.artistWindow < 0 {
		return top, nil
	}
	for _, c := range ranked[1:] {
		if top.Confidence-c.Confidence > s.artistWindow+confidenceEpsilon {
			break
		}
		if c.HasArtist() {
			return c, nil
		}
	}
	return top, nil
}
