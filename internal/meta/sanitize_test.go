package meta

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`a/b\c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"Title: Part 2?", "Title Part 2"},
		{"bell\x07 and\ttab", "bell andtab"},
		{"..hidden", "hidden"},
		{"Dr. Dre - Still D.R.E.", "Dr. Dre - Still D.R.E."},
		{"  spaced   out  ", "spaced out"},
		{"???", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.input); got != tt.expected {
			t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestFoldASCII(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Beyoncé", "Beyonce"},
		{"Sigur Rós - Hoppípolla", "Sigur Ros - Hoppipolla"},
		{"Motörhead", "Motorhead"},
		{"plain", "plain"},
		{"東京", ""},
	}

	for _, tt := range tests {
		if got := FoldASCII(tt.input); got != tt.expected {
			t.Errorf("FoldASCII(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatName(t *testing.T) {
	c := Candidate{Artist: "Beyoncé", Title: "Halo?", Track: 3}

	tests := []struct {
		opts     NameOptions
		expected string
	}{
		{NameOptions{}, "Beyoncé - Halo"},
		{NameOptions{KeepTrack: true}, "03 - Beyoncé - Halo"},
		{NameOptions{ASCIIOnly: true}, "Beyonce - Halo"},
		{NameOptions{KeepTrack: true, ASCIIOnly: true}, "03 - Beyonce - Halo"},
	}

	for _, tt := range tests {
		if got := FormatName(c, tt.opts); got != tt.expected {
			t.Errorf("FormatName(%+v) = %q, expected %q", tt.opts, got, tt.expected)
		}
	}
}

func TestFitFilename(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := FitFilename(long, "", ".mp3")
	if len(got) != MaxFilenameBytes {
		t.Errorf("FitFilename length = %d, expected %d", len(got), MaxFilenameBytes)
	}
	if !strings.HasSuffix(got, ".mp3") {
		t.Errorf("extension lost: %q", got[len(got)-8:])
	}

	wide := strings.Repeat("é", 200)
	got = FitFilename(wide, " (2)", ".flac")
	if len(got) > MaxFilenameBytes {
		t.Errorf("FitFilename length = %d, exceeds %d", len(got), MaxFilenameBytes)
	}
	if !utf8.ValidString(got) {
		t.Error("FitFilename split a multi-byte rune")
	}
	if !strings.HasSuffix(got, " (2).flac") {
		t.Errorf("suffix lost: %q", got)
	}

	if got := FitFilename("short", "", ".mp3"); got != "short.mp3" {
		t.Errorf("FitFilename(short) = %q", got)
	}
}
