package meta

import (
	"fmt"

	"github.com/franz/cloudbuccaneer/internal/util"
)

// EngineConfig is everything the filename pipeline depends on. Nothing is
// read from process state, so two engines with equal configs agree.
type EngineConfig struct {
	Junk         JunkConfig
	Rules        []Rule  // nil means DefaultRules
	ArtistWindow float64 // negative disables the artist preference
	Name         NameOptions
}

// DefaultEngineConfig returns the built-in junk list and rule set
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{ArtistWindow: DefaultArtistWindow}
}

// Engine runs Cleaner -> Matcher -> Selector for one filename stem
type Engine struct {
	cleaner  *Cleaner
	matcher  *Matcher
	selector *Selector
	opts     NameOptions
}

// Resolution explains how a stem was renamed
type Resolution struct {
	Cleaned    string
	Candidates []Candidate
	Chosen     Candidate
	Stem       string // sanitized output stem, no extension
}

// NewEngine validates the configuration and builds the pipeline
func NewEngine(cfg EngineConfig) (*Engine, error) {
	cleaner, err := NewCleaner(cfg.Junk)
	if err != nil {
		return nil, fmt.Errorf("failed to build cleaner: %w", err)
	}
	for _, r := range cfg.Rules {
		if r.Extract == nil {
			return nil, fmt.Errorf("%w: rule %q has no extractor", util.ErrInvalidConfig, r.Name)
		}
	}
	return &Engine{
		cleaner:  cleaner,
		matcher:  NewMatcher(cfg.Rules...),
		selector: NewSelector(cfg.ArtistWindow),
		opts:     cfg.Name,
	}, nil
}

// maxResolvePasses bounds the search for a stem that resolves to itself
const maxResolvePasses = 4

// Resolve computes the new stem for a filename stem (extension removed).
// It returns ErrAmbiguousName when nothing usable is left after cleaning.
// The returned stem resolves to itself, so renaming twice changes nothing.
func (e *Engine) Resolve(stem string) (*Resolution, error) {
	res, err := e.resolveOnce(stem)
	if err != nil {
		return res, err
	}
	for i := 1; i < maxResolvePasses; i++ {
		next, err := e.resolveOnce(res.Stem)
		if err != nil || next.Stem == res.Stem {
			break
		}
		res.Chosen, res.Stem = next.Chosen, next.Stem
	}
	return res, nil
}

func (e *Engine) resolveOnce(stem string) (*Resolution, error) {
	res := &Resolution{Cleaned: e.cleaner.Clean(stem)}
	res.Candidates = e.matcher.Match(res.Cleaned)

	chosen, err := e.selector.Select(res.Candidates)
	if err != nil {
		return res, err
	}
	res.Chosen = chosen

	res.Stem = FormatName(chosen, e.opts)
	if res.Stem == "" {
		return res, util.ErrAmbiguousName
	}
	return res, nil
}

// Markers returns the active junk marker keys in application order
func (e *Engine) Markers() []string {
	return e.cleaner.Markers()
}
