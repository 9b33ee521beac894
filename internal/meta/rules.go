package meta

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule names, in default precedence order
const (
	RuleSeparator      = "separator"
	RuleFeaturing      = "featuring"
	RuleMultiSeparator = "multi-separator"
	RuleMultiLoose     = "multi-separator-loose"
	RuleFallback       = "fallback"
)

// Candidate is one hypothesized artist/title reading of a filename.
// An empty Artist means the rule found none.
type Candidate struct {
	Artist     string
	Title      string
	Confidence float64
	Rule       string
	Priority   int // index of Rule in the matcher; lower wins ties
	Track      int // leading track index, 0 if none
}

// HasArtist reports whether the candidate names an artist
func (c Candidate) HasArtist() bool {
	return strings.TrimSpace(c.Artist) != ""
}

// DisplayName renders "Artist - Title", or the title alone
func (c Candidate) DisplayName() string {
	title := strings.TrimSpace(c.Title)
	if c.HasArtist() {
		return strings.TrimSpace(c.Artist) + " - " + title
	}
	return title
}

// Extractor maps a cleaned, index-stripped name to an artist/title pair
type Extractor func(name string) (artist, title string, ok bool)

// Rule is one structural shape the Matcher recognizes
type Rule struct {
	Name       string
	Confidence float64
	Extract    Extractor
}

// Matcher evaluates every rule against a name, in declaration order
type Matcher struct {
	rules []Rule
}

// NewMatcher creates a Matcher. With no rules it uses DefaultRules.
func NewMatcher(rules ...Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// DefaultRules returns the built-in rule set. The fallback rule is last and
// always matches, so Match never returns an empty slice.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleSeparator, Confidence: 0.9, Extract: extractSeparator},
		{Name: RuleFeaturing, Confidence: 0.75, Extract: extractFeaturing},
		{Name: RuleMultiSeparator, Confidence: 0.85, Extract: extractMultiSeparator},
		{Name: RuleMultiLoose, Confidence: 0.6, Extract: extractMultiLoose},
		{Name: RuleFallback, Confidence: 0.3, Extract: extractFallback},
	}
}

// Rules returns the rules in precedence order
func (m *Matcher) Rules() []Rule {
	return append([]Rule(nil), m.rules...)
}

// Match returns one Candidate per matching rule. A leading track index is
// stripped first and recorded on every candidate.
func (m *Matcher) Match(cleaned string) []Candidate {
	track, body := StripTrackIndex(cleaned)

	candidates := make([]Candidate, 0, len(m.rules))
	for i, rule := range m.rules {
		artist, title, ok := rule.Extract(body)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Artist:     strings.TrimSpace(artist),
			Title:      strings.TrimSpace(title),
			Confidence: rule.Confidence,
			Rule:       rule.Name,
			Priority:   i,
			Track:      track,
		})
	}
	return candidates
}

var (
	// "01. ", "01 - ", "01_", "Track 09 - "
	trackIndexPattern = regexp.MustCompile(`(?i)^(?:track\s*)?(\d{1,3})(\s*\.\s*|\s*-\s+|\s*_+\s*)(\S.*)$`)

	separatorPattern = regexp.MustCompile(`\s+-\s+`)

	featBracketed = regexp.MustCompile(`(?i)^(.*?)\s*[(\[]\s*(?:feat\.?|ft\.?|featuring)\s+([^)\]]+?)\s*[)\]]\s*(.*)$`)
	featBare      = regexp.MustCompile(`(?i)^(.+?)\s+(?:feat\.?|ft\.?|featuring)\s+(.+)$`)

	labelHint = regexp.MustCompile(`(?i)\b(?:records?|recordings|collective|label|music\s+group)\b`)
)

// StripTrackIndex removes a leading track number, returning it and the rest.
// Decimal-looking prefixes such as "2.0 Remix" are left alone. A bare number
// before " - " ("311 - Amber", "22 - Taylor Swift") is read as an index only
// when it is zero-padded, follows "Track", or the rest still names an artist.
func StripTrackIndex(name string) (int, string) {
	m := trackIndexPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, name
	}
	digits, sep, rest := m[1], m[2], m[3]
	if sep == "." && rest[0] >= '0' && rest[0] <= '9' {
		return 0, name
	}
	rest = strings.TrimSpace(rest)
	if !isIndexPrefix(name, digits, sep, rest) {
		return 0, name
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, name
	}
	return n, rest
}

func isIndexPrefix(name, digits, sep, rest string) bool {
	switch {
	case len(digits) > 1 && digits[0] == '0':
		return true
	case !strings.HasPrefix(name, digits):
		// "Track 9 - ..."
		return true
	case strings.TrimSpace(sep) == ".":
		return true
	}
	return separatorPattern.MatchString(rest) || featBracketed.MatchString(rest) || featBare.MatchString(rest)
}

// splitParts splits on spaced dashes and drops empty parts
func splitParts(name string) []string {
	var parts []string
	for _, p := range separatorPattern.Split(name, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Artist - Title, exactly one separator
func extractSeparator(name string) (string, string, bool) {
	raw := separatorPattern.Split(strings.TrimSpace(name), -1)
	if len(raw) != 2 {
		return "", "", false
	}
	artist, title := strings.TrimSpace(raw[0]), strings.TrimSpace(raw[1])
	if artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

// Title (feat. Artist) / Title ft. Artist
func extractFeaturing(name string) (string, string, bool) {
	name = strings.TrimSpace(name)
	var title, artist string
	if m := featBracketed.FindStringSubmatch(name); m != nil {
		title = strings.TrimSpace(m[1] + " " + m[3])
		artist = m[2]
	} else if m := featBare.FindStringSubmatch(name); m != nil {
		title, artist = m[1], m[2]
	} else {
		return "", "", false
	}
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return "", "", false
	}
	return artist, title, true
}

// reduceParts folds "Artist - ARTIST - Title" and drops trailing labels
// until neither applies, so a reduced name does not reduce again
func reduceParts(parts []string) []string {
	for len(parts) >= 3 {
		switch {
		case strings.EqualFold(parts[0], parts[1]):
			parts = append([]string{parts[0]}, parts[2:]...)
		case labelHint.MatchString(parts[len(parts)-1]):
			parts = parts[:len(parts)-1]
		default:
			return parts
		}
	}
	return parts
}

// Three or more parts that reduce to exactly Artist - Title
func extractMultiSeparator(name string) (string, string, bool) {
	parts := splitParts(name)
	if len(parts) < 3 {
		return "", "", false
	}
	parts = reduceParts(parts)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Three or more parts that stay ambiguous: first part is the artist
func extractMultiLoose(name string) (string, string, bool) {
	parts := reduceParts(splitParts(name))
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], " - "), true
}

func extractFallback(name string) (string, string, bool) {
	return "", strings.TrimSpace(name), true
}
