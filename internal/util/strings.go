// Package util provides small helpers shared by the webwire packages.
package util

// MaxLogValue bounds string values written to the structured log.
const MaxLogValue = 200

// Abbrev shortens s to maxLen runes, ending in "..." when cut. It keeps
// payload text such as stylesheets and long command lines out of log
// records at full size.
func Abbrev(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// LogValue abbreviates s to MaxLogValue runes.
func LogValue(s string) string {
	return Abbrev(s, MaxLogValue)
}
