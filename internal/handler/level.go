package handler

import "strings"

// Level is the minimum severity the handler writes. Lower levels are more
// verbose.
type Level int32

const (
	LevelDetail Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDetail:  "detail",
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
	LevelFatal:   "fatal",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "unknown"
}

// ParseLevel maps a level name to a Level. Matching ignores case and
// surrounding space.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, true
		}
	}
	return LevelInfo, false
}

// LevelNames lists the accepted level names from most to least verbose.
func LevelNames() []string {
	return []string{"detail", "debug", "info", "warning", "error", "fatal"}
}
