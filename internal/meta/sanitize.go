package meta

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxFilenameBytes is the common per-component limit (ext4, APFS, NTFS)
const MaxFilenameBytes = 255

// illegalChars are removed, never substituted, so output stays predictable
const illegalChars = `/\:*?"<>|`

// NameOptions controls how a chosen candidate becomes a filename stem
type NameOptions struct {
	KeepTrack bool // prefix "NN - " when a track index was found
	ASCIIOnly bool // fold accents and drop remaining non-ASCII runes
}

// FormatName builds the sanitized filename stem for a candidate
func FormatName(c Candidate, opts NameOptions) string {
	name := c.DisplayName()
	if opts.KeepTrack && c.Track > 0 && name != "" {
		name = fmt.Sprintf("%02d - %s", c.Track, name)
	}
	if opts.ASCIIOnly {
		name = FoldASCII(name)
	}
	return SanitizeFilename(name)
}

// SanitizeFilename removes filesystem-illegal and control characters,
// collapses whitespace and strips leading dots (no hidden files)
func SanitizeFilename(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(illegalChars, r) {
			return -1
		}
		return r
	}, s)
	s = collapseWhitespace(s)
	return strings.TrimSpace(strings.TrimLeft(s, "."))
}

var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII strips accents ("Beyoncé" -> "Beyonce") and drops runes that
// have no ASCII form
func FoldASCII(s string) string {
	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
}

// FitFilename joins stem, disambiguation suffix and extension, truncating
// the stem on a rune boundary so the result fits MaxFilenameBytes
func FitFilename(stem, suffix, ext string) string {
	budget := MaxFilenameBytes - len(suffix) - len(ext)
	if budget < 1 {
		budget = 1
	}
	if len(stem) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(stem[cut]) {
			cut--
		}
		stem = strings.TrimSpace(stem[:cut])
	}
	return stem + suffix + ext
}
