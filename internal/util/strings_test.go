package util

import (
	"strings"
	"testing"
)

func TestAbbrev(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "help",
			maxLen:   10,
			expected: "help",
		},
		{
			name:     "exact length unchanged",
			input:    "help",
			maxLen:   4,
			expected: "help",
		},
		{
			name:     "long line cut",
			input:    "timer-start tick 100",
			maxLen:   10,
			expected: "timer-s...",
		},
		{
			name:     "tiny limit returns ellipsis",
			input:    "exit",
			maxLen:   3,
			expected: "...",
		},
		{
			name:     "runes not bytes",
			input:    "日本語のテキスト",
			maxLen:   5,
			expected: "日本...",
		},
		{
			name:     "empty",
			input:    "",
			maxLen:   5,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Abbrev(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("Abbrev(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestLogValue(t *testing.T) {
	long := strings.Repeat("x", MaxLogValue+50)
	got := LogValue(long)
	if len([]rune(got)) != MaxLogValue {
		t.Errorf("LogValue length = %d, want %d", len([]rune(got)), MaxLogValue)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("LogValue(%d runes) = %q, want ... suffix", len(long), got)
	}
	if LogValue("exit") != "exit" {
		t.Error("LogValue changed a short value")
	}
}
