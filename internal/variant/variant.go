// Package variant provides the small closed set of typed values that can be
// attached to an event payload.
//
// A Value carries exactly one of: integer, boolean, double, string, file
// handle or borrowed string pointer. The kind is fixed at construction and
// only the matching accessor may be used; any other accessor panics with an
// *errors.ContractError. Producers and consumers of an event are written
// together, so a mismatch is a programming bug and not a runtime condition.
package variant

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/webwire/internal/errors"
)

// Kind identifies which value a Value holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindBool
	KindDouble
	KindString
	KindFile
	KindRef
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindFile:
		return "file"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged value.
type Value struct {
	kind Kind
	i    int
	b    bool
	d    float64
	s    string
	f    *os.File
	r    *string
}

// Int returns an integer value.
func Int(v int) Value { return Value{kind: KindInt, i: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Double returns a floating point value.
func Double(v float64) Value { return Value{kind: KindDouble, d: v} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// File returns a value holding an open file handle. The handle is not owned.
func File(f *os.File) Value { return Value{kind: KindFile, f: f} }

// Ref returns a value holding a borrowed string pointer. The pointee must
// outlive every event that carries it.
func Ref(p *string) Value { return Value{kind: KindRef, r: p} }

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer. It panics if the value is not an int.
func (v Value) AsInt() int {
	v.mustBe(KindInt)
	return v.i
}

// AsBool returns the boolean. It panics if the value is not a bool.
func (v Value) AsBool() bool {
	v.mustBe(KindBool)
	return v.b
}

// AsDouble returns the float. It panics if the value is not a double.
func (v Value) AsDouble() float64 {
	v.mustBe(KindDouble)
	return v.d
}

// AsString returns the string. It panics if the value is not a string.
func (v Value) AsString() string {
	v.mustBe(KindString)
	return v.s
}

// AsFile returns the file handle. It panics if the value is not a file.
func (v Value) AsFile() *os.File {
	v.mustBe(KindFile)
	return v.f
}

// AsRef returns the borrowed pointer. It panics if the value is not a ref.
func (v Value) AsRef() *string {
	v.mustBe(KindRef)
	return v.r
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(errors.NewContractError("read payload value", errors.ErrPayloadKind).
			WithKinds(k.String(), v.kind.String()))
	}
}

// Equal reports whether two values have the same kind and contents.
// Files and refs compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	case KindDouble:
		return v.d == o.d
	case KindString:
		return v.s == o.s
	case KindFile:
		return v.f == o.f
	case KindRef:
		return v.r == o.r
	default:
		return true
	}
}

// String renders the value for logs.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i)
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.b)
	case KindDouble:
		return fmt.Sprintf("double(%g)", v.d)
	case KindString:
		return fmt.Sprintf("string(%q)", v.s)
	case KindFile:
		if v.f == nil {
			return "file(nil)"
		}
		return fmt.Sprintf("file(%s)", v.f.Name())
	case KindRef:
		if v.r == nil {
			return "ref(nil)"
		}
		return fmt.Sprintf("ref(%q)", *v.r)
	default:
		return "unknown"
	}
}
