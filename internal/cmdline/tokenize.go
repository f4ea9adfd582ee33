package cmdline

import "strings"

// Split breaks a command line into tokens.
//
//   - Whitespace outside double quotes separates tokens; runs of it collapse.
//   - A double quote opens or closes a quoted span. The span is its own
//     token, so `a"b c"d` is ["a", "b c", "d"], and `""` is an empty token.
//   - A backslash immediately before a double quote yields a literal quote,
//     inside or outside a span. Any other backslash is kept as is.
//   - An unterminated quote runs to the end of the line.
func Split(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		pending bool
		quoted  bool
	)

	flush := func() {
		if pending {
			tokens = append(tokens, cur.String())
			cur.Reset()
			pending = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			pending = true
			i++
		case c == '"' && quoted:
			flush()
			quoted = false
		case c == '"':
			flush()
			quoted = true
			pending = true
		case isSpace(c) && !quoted:
			flush()
		default:
			cur.WriteByte(c)
			pending = true
		}
	}
	flush()

	return tokens
}

// Parse trims and splits line and lower-cases the command name. ok is false
// when the line holds no tokens.
func Parse(line string) (cmd string, args []string, ok bool) {
	tokens := Split(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return "", nil, false
	}
	return strings.ToLower(tokens[0]), tokens[1:], true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
