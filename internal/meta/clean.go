package meta

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/util"
	"golang.org/x/text/unicode/norm"
)

// JunkAction tells the Cleaner what to do with a junk marker
type JunkAction string

const (
	// ActionStrip removes every match of the marker
	ActionStrip JunkAction = "strip"
	// ActionKeep disables a built-in marker
	ActionKeep JunkAction = "keep"
)

// regexPrefix marks a JunkConfig key as a regular expression instead of a literal
const regexPrefix = "re:"

// JunkConfig maps a token or pattern to an action. Literal keys match
// case-insensitively; keys prefixed with "re:" are regular expressions.
type JunkConfig map[string]JunkAction

// DefaultJunkMarkers are stripped unless a JunkConfig keeps them.
// Order matters: bracketed forms go before their bare variants.
var DefaultJunkMarkers = []string{
	// Download-tool boilerplate
	`re:(?i)[\[(]\s*free\s*(?:dl|download)\s*[\])]`,
	`re:(?i)\bfree\s*(?:dl|download)\b`,
	`re:(?i)[\[(]\s*official\s+(?:music\s+|lyric\s+)?(?:video|audio|visuali[sz]er)\s*[\])]`,
	`re:(?i)[\[(]\s*(?:lyrics?|lyric\s+video|audio|visuali[sz]er|hd|hq|4k|explicit|clean)\s*[\])]`,

	// Quality tags
	`re:(?i)[\[(]\s*\d{2,3}\s*kbps\s*[\])]`,
	`re:(?i)\b\d{2,3}\s*kbps\b`,

	// BPM markers: "160 BPM", "120bpm", "160-180 BPM"
	`re:(?i)\b\d{2,3}(?:\s*-\s*\d{2,3})?\s*bpm\b`,

	// yt-dlp default template appends the 11-char video id
	`re:\s*\[[A-Za-z0-9_-]{11}\]\s*$`,
}

type junkMarker struct {
	key string
	re  *regexp.Regexp
}

// Cleaner turns a raw filename stem into a CleanedName
type Cleaner struct {
	markers []junkMarker
}

var (
	punctReplacer = strings.NewReplacer(
		"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'", "\u2032", "'",
		"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`, "\u2033", `"`,
		"\u2010", "-", "\u2011", "-", "\u2012", "-", "\u2013", "-", "\u2014", "-",
		"\u2015", "-", "\u2212", "-", "\ufe63", "-", "\uff0d", "-",
		"\u00a0", " ", "\u2007", " ", "\u202f", " ", "\u3000", " ",
	)

	leadingIndexUnderscore = regexp.MustCompile(`^(\d{1,3})_+`)
	underscoreRun          = regexp.MustCompile(`_+`)
	emptyGroup             = regexp.MustCompile(`[(\[{][\s\p{P}\p{S}]*[)\]}]`)
	strayBracket           = regexp.MustCompile(`[(\[{]\s*$|^\s*[)\]}]`)
	dashRun                = regexp.MustCompile(`-{2,}`)
	repeatedSeparator      = regexp.MustCompile(`\s+-(?:\s+-)+\s+`)
	whitespaceRun          = regexp.MustCompile(`\s+`)
)

// NewCleaner builds a Cleaner from the default markers plus overrides
func NewCleaner(cfg JunkConfig) (*Cleaner, error) {
	disabled := make(map[string]bool)
	var extra []string
	for key, action := range cfg {
		switch action {
		case ActionStrip:
			extra = append(extra, key)
		case ActionKeep:
			disabled[key] = true
		default:
			return nil, fmt.Errorf("%w: junk marker %q has unknown action %q", util.ErrInvalidConfig, key, action)
		}
	}
	// Map iteration order is random; keep the marker order deterministic
	sort.Strings(extra)

	c := &Cleaner{}
	seen := make(map[string]bool)
	for _, key := range append(append([]string{}, DefaultJunkMarkers...), extra...) {
		if disabled[key] || seen[key] {
			continue
		}
		seen[key] = true
		re, err := compileMarker(key)
		if err != nil {
			return nil, err
		}
		c.markers = append(c.markers, junkMarker{key: key, re: re})
	}
	return c, nil
}

func compileMarker(key string) (*regexp.Regexp, error) {
	if pattern, ok := strings.CutPrefix(key, regexPrefix); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: junk pattern %q: %v", util.ErrInvalidConfig, pattern, err)
		}
		return re, nil
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: empty junk token", util.ErrInvalidConfig)
	}
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(key)), nil
}

// Markers returns the active marker keys in application order
func (c *Cleaner) Markers() []string {
	keys := make([]string, len(c.markers))
	for i, m := range c.markers {
		keys[i] = m.key
	}
	return keys
}

// Clean strips junk from a filename stem (no extension). It never fails;
// input without junk only gets its whitespace normalized.
func (c *Cleaner) Clean(stem string) string {
	s := NormalizePunctuation(stem)

	// Video ids and custom patterns may contain underscores, so markers run
	// once on the raw stem and again after underscores become spaces
	s = c.stripMarkers(s)

	// "01_Title" keeps its index visible once underscores become spaces
	s = leadingIndexUnderscore.ReplaceAllString(s, "$1 - ")
	s = underscoreRun.ReplaceAllString(s, " ")

	s = c.stripMarkers(s)

	s = removeEmptyGroups(s)
	s = dashRun.ReplaceAllString(s, "-")
	s = repeatedSeparator.ReplaceAllString(s, " - ")
	s = collapseWhitespace(s)
	return strings.Trim(s, " -")
}

func (c *Cleaner) stripMarkers(s string) string {
	for _, m := range c.markers {
		s = m.re.ReplaceAllString(s, " ")
	}
	return s
}

// NormalizePunctuation applies NFC and maps typographic quotes, dashes and
// spaces to their ASCII equivalents
func NormalizePunctuation(s string) string {
	return punctReplacer.Replace(norm.NFC.String(s))
}

// removeEmptyGroups drops (), [], {} holding only whitespace or punctuation,
// repeating until nested groups are gone
func removeEmptyGroups(s string) string {
	for {
		next := emptyGroup.ReplaceAllString(s, " ")
		next = strayBracket.ReplaceAllString(next, "")
		if next == s {
			return s
		}
		s = next
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
