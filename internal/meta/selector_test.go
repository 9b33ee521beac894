package meta

import (
	"errors"
	"testing"

	"github.com/franz/cloudbuccaneer/internal/util"
)

func TestRank(t *testing.T) {
	candidates := []Candidate{
		{Title: "fallback", Confidence: 0.3, Priority: 4},
		{Title: "later rule", Confidence: 0.75, Priority: 3},
		{Title: "   ", Artist: "Nobody", Confidence: 0.99, Priority: 0},
		{Title: "earlier rule", Confidence: 0.75, Priority: 1},
		{Title: "best", Confidence: 0.9, Priority: 2},
	}

	ranked := Rank(candidates)
	expected := []string{"best", "earlier rule", "later rule", "fallback"}
	if len(ranked) != len(expected) {
		t.Fatalf("Rank returned %d candidates, expected %d", len(ranked), len(expected))
	}
	for i, title := range expected {
		if ranked[i].Title != title {
			t.Errorf("ranked[%d] = %q, expected %q", i, ranked[i].Title, title)
		}
	}
}

func TestSelectorSelect(t *testing.T) {
	tests := []struct {
		name          string
		window        float64
		candidates    []Candidate
		expectedTitle string
	}{
		{
			name:   "clear winner with artist",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Artist: "The Weeknd", Title: "Blinding Lights", Confidence: 0.9, Priority: 0},
				{Title: "The Weeknd - Blinding Lights", Confidence: 0.3, Priority: 4},
			},
			expectedTitle: "Blinding Lights",
		},
		{
			// The 0.1 window approximates how rename tools weigh artist
			// presence; it is configurable rather than exact
			name:   "artist inside window beats artist-less top",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Title: "Untagged", Confidence: 0.8, Priority: 0},
				{Artist: "Someone", Title: "Tagged", Confidence: 0.72, Priority: 1},
			},
			expectedTitle: "Tagged",
		},
		{
			name:   "window edge is inclusive",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Title: "Untagged", Confidence: 0.9, Priority: 0},
				{Artist: "Someone", Title: "Tagged", Confidence: 0.8, Priority: 1},
			},
			expectedTitle: "Tagged",
		},
		{
			name:   "artist outside window does not override",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Title: "Untagged", Confidence: 0.8, Priority: 0},
				{Artist: "Someone", Title: "Tagged", Confidence: 0.65, Priority: 1},
			},
			expectedTitle: "Untagged",
		},
		{
			name:   "wider window",
			window: 0.2,
			candidates: []Candidate{
				{Title: "Untagged", Confidence: 0.8, Priority: 0},
				{Artist: "Someone", Title: "Tagged", Confidence: 0.65, Priority: 1},
			},
			expectedTitle: "Tagged",
		},
		{
			name:   "negative window disables preference",
			window: -1,
			candidates: []Candidate{
				{Title: "Untagged", Confidence: 0.8, Priority: 0},
				{Artist: "Someone", Title: "Tagged", Confidence: 0.79, Priority: 1},
			},
			expectedTitle: "Untagged",
		},
		{
			name:   "equal confidence falls back to rule order",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Artist: "B", Title: "Second", Confidence: 0.5, Priority: 2},
				{Artist: "A", Title: "First", Confidence: 0.5, Priority: 1},
			},
			expectedTitle: "First",
		},
		{
			name:   "empty titles are discarded",
			window: DefaultArtistWindow,
			candidates: []Candidate{
				{Artist: "Ghost", Title: "", Confidence: 0.9, Priority: 0},
				{Title: "Only", Confidence: 0.3, Priority: 4},
			},
			expectedTitle: "Only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSelector(tt.window).Select(tt.candidates)
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if got.Title != tt.expectedTitle {
				t.Errorf("Select chose %q, expected %q", got.Title, tt.expectedTitle)
			}
		})
	}
}

func TestSelectorAmbiguous(t *testing.T) {
	s := NewSelector(DefaultArtistWindow)

	inputs := [][]Candidate{
		nil,
		{{Title: "", Confidence: 0.3}},
		{{Artist: "x", Title: "  ", Confidence: 0.9}, {Title: "\t", Confidence: 0.3}},
	}
	for _, candidates := range inputs {
		if _, err := s.Select(candidates); !errors.Is(err, util.ErrAmbiguousName) {
			t.Errorf("Select(%+v) error = %v, expected ErrAmbiguousName", candidates, err)
		}
	}
}

func TestCandidateDisplayName(t *testing.T) {
	tests := []struct {
		c        Candidate
		expected string
	}{
		{Candidate{Artist: "Kid LAROI", Title: "Stay"}, "Kid LAROI - Stay"},
		{Candidate{Title: "track"}, "track"},
		{Candidate{Artist: "  ", Title: " Solo "}, "Solo"},
	}
	for _, tt := range tests {
		if got := tt.c.DisplayName(); got != tt.expected {
			t.Errorf("DisplayName(%+v) = %q, expected %q", tt.c, got, tt.expected)
		}
	}
}
