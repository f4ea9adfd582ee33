package cmdline

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Iron-Ham/webwire/internal/errors"
)

// Binding failures. Both are reachable with errors.Is through a *BindError.
var (
	ErrArity       = errors.New("wrong number of arguments")
	ErrBadArgument = errors.New("malformed argument")
)

// Kind is the type a Param parses its token as.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindDouble
	KindURL
	KindJSON
)

// String returns the name used in usage lines.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	case KindDouble:
		return "real"
	case KindURL:
		return "url"
	case KindJSON:
		return "json-string"
	default:
		return "<undef>"
	}
}

// Param describes one positional argument and where its value goes.
type Param struct {
	Name     string
	Kind     Kind
	Optional bool

	// bind parses tok (or takes the default when present is false) and
	// returns the assignment to run once every parameter has parsed.
	bind func(tok string, present bool) (assign func(), err error)
}

func (p Param) usage() string {
	if p.Optional {
		return "[" + p.Name + ":" + p.Kind.String() + "]"
	}
	return "<" + p.Name + ":" + p.Kind.String() + ">"
}

func newParam[T any](name string, kind Kind, optional bool, target *T, def T, parse func(string) (T, bool)) Param {
	return Param{
		Name:     name,
		Kind:     kind,
		Optional: optional,
		bind: func(tok string, present bool) (func(), error) {
			v := def
			if present {
				var ok bool
				if v, ok = parse(tok); !ok {
					return nil, errors.NewValidationError(mismatch(kind, tok)).
						WithField(name).WithValue(tok).WithCause(ErrBadArgument)
				}
			}
			return func() { *target = v }, nil
		},
	}
}

func mismatch(kind Kind, tok string) string {
	switch kind {
	case KindURL:
		return "url expected, got " + tok
	case KindJSON:
		return "Json Parse Error '" + tok + "'"
	default:
		return "expected " + kind.String() + ", got " + tok
	}
}

// String binds a string argument.
func String(target *string, name string) Param {
	return newParam(name, KindString, false, target, "", parseString)
}

// OptString binds an optional string argument.
func OptString(target *string, name, def string) Param {
	return newParam(name, KindString, true, target, def, parseString)
}

// Int binds an integer argument.
func Int(target *int, name string) Param {
	return newParam(name, KindInt, false, target, 0, parseInt)
}

// OptInt binds an optional integer argument.
func OptInt(target *int, name string, def int) Param {
	return newParam(name, KindInt, true, target, def, parseInt)
}

// Bool binds a boolean argument.
func Bool(target *bool, name string) Param {
	return newParam(name, KindBool, false, target, false, parseBool)
}

// OptBool binds an optional boolean argument.
func OptBool(target *bool, name string, def bool) Param {
	return newParam(name, KindBool, true, target, def, parseBool)
}

// Double binds a floating point argument.
func Double(target *float64, name string) Param {
	return newParam(name, KindDouble, false, target, 0, parseDouble)
}

// OptDouble binds an optional floating point argument.
func OptDouble(target *float64, name string, def float64) Param {
	return newParam(name, KindDouble, true, target, def, parseDouble)
}

// URL binds an absolute or relative URL argument.
func URL(target *url.URL, name string) Param {
	return newParam(name, KindURL, false, target, url.URL{}, parseURL)
}

// OptURL binds an optional URL argument.
func OptURL(target *url.URL, name string, def url.URL) Param {
	return newParam(name, KindURL, true, target, def, parseURL)
}

// JSON binds an argument that must be valid JSON. The raw text is stored.
func JSON(target *string, name string) Param {
	return newParam(name, KindJSON, false, target, "", parseJSON)
}

// OptJSON binds an optional JSON argument.
func OptJSON(target *string, name, def string) Param {
	return newParam(name, KindJSON, true, target, def, parseJSON)
}

func parseString(tok string) (string, bool) { return tok, true }

// parseInt accepts decimal digits only; a sign is rejected.
func parseInt(tok string) (int, bool) {
	if !allDigits(tok) {
		return 0, false
	}
	v, err := strconv.Atoi(tok)
	return v, err == nil
}

func parseBool(tok string) (bool, bool) {
	switch strings.ToLower(tok) {
	case "true", "1", "t", "#t":
		return true, true
	case "false", "0", "f", "#f":
		return false, true
	}
	return false, false
}

// parseDouble accepts digits with at most one decimal point; a sign is
// rejected.
func parseDouble(tok string) (float64, bool) {
	if strings.Count(tok, ".") > 1 || !allDigits(strings.Replace(tok, ".", "", 1)) {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	return v, err == nil
}

// parseURL accepts anything net/url parses into a scheme with a host or
// opaque part, or a plain path.
func parseURL(tok string) (url.URL, bool) {
	u, err := url.Parse(tok)
	if err != nil || tok == "" {
		return url.URL{}, false
	}
	if u.Scheme != "" && u.Host == "" && u.Opaque == "" && u.Path == "" {
		return url.URL{}, false
	}
	return *u, true
}

func parseJSON(tok string) (string, bool) {
	return tok, gjson.Valid(tok)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// BindError reports why arguments did not bind. Reason is the first
// diagnostic line; Usage and Got are the syntax and the received tokens.
type BindError struct {
	Command string
	Reason  string
	Usage   string
	Got     string
	cause   error
}

func (e *BindError) Error() string {
	return e.Command + ": " + e.Reason
}

// Unwrap returns the underlying *errors.ValidationError.
func (e *BindError) Unwrap() error { return e.cause }

// Lines returns the three diagnostic lines reported for a failed binding.
func (e *BindError) Lines() []string {
	return []string{
		e.Command + ": " + e.Reason,
		"syntax: " + e.Usage,
		"got   : " + e.Got,
	}
}

// Usage renders the syntax line for cmd: `cmd <name:kind> [name:kind]`.
func Usage(cmd string, params []Param) string {
	var sb strings.Builder
	sb.WriteString(cmd)
	for _, p := range params {
		sb.WriteByte(' ')
		sb.WriteString(p.usage())
	}
	return sb.String()
}

// Bind parses args into params from left to right. Targets are only written
// when every parameter parsed; on failure nothing is assigned and a
// *BindError is returned. Missing trailing optional parameters take their
// defaults. Extra arguments are ignored.
func Bind(cmd string, params []Param, args []string) error {
	fail := func(reason string, cause error) error {
		return &BindError{
			Command: cmd,
			Reason:  reason,
			Usage:   Usage(cmd, params),
			Got:     strings.Join(append([]string{cmd}, args...), " "),
			cause:   cause,
		}
	}

	required := 0
	for _, p := range params {
		if p.Optional {
			break
		}
		required++
	}
	if len(args) < required {
		msg := fmt.Sprintf("incorrect number of arguments %d, minimal expected %d", len(args), required)
		return fail(msg, errors.NewValidationError(msg).WithCause(ErrArity))
	}

	assigns := make([]func(), 0, len(params))
	for i, p := range params {
		var tok string
		present := i < len(args)
		if present {
			tok = args[i]
		}
		assign, err := p.bind(tok, present)
		if err != nil {
			return fail(p.Name+": "+mismatch(p.Kind, tok), err)
		}
		assigns = append(assigns, assign)
	}

	for _, assign := range assigns {
		assign()
	}
	return nil
}
