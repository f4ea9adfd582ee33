package logging

import (
	"fmt"

	"github.com/gobwas/glob"
)

// EventFilter selects event names by glob pattern ("readline-*", "timeout",
// "handler-?og-event"). The dispatcher traces only the events it matches.
type EventFilter struct {
	patterns []string
	globs    []glob.Glob
}

// NewEventFilter compiles the patterns. An invalid pattern is an error.
func NewEventFilter(patterns []string) (*EventFilter, error) {
	f := &EventFilter{
		patterns: make([]string, 0, len(patterns)),
		globs:    make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid event pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, p)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether name matches any pattern. A nil or empty filter
// matches nothing.
func (f *EventFilter) Match(name string) bool {
	if f == nil {
		return false
	}
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (f *EventFilter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}
