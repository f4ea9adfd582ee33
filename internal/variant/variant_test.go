package variant

import (
	"os"
	"testing"

	"github.com/Iron-Ham/webwire/internal/errors"
)

func TestAccessors(t *testing.T) {
	s := "borrowed"

	if got := Int(42).AsInt(); got != 42 {
		t.Errorf("AsInt() = %d, want 42", got)
	}
	if got := Bool(true).AsBool(); !got {
		t.Error("AsBool() = false, want true")
	}
	if got := Double(1.5).AsDouble(); got != 1.5 {
		t.Errorf("AsDouble() = %g, want 1.5", got)
	}
	if got := String("hi").AsString(); got != "hi" {
		t.Errorf("AsString() = %q, want %q", got, "hi")
	}
	if got := File(os.Stdout).AsFile(); got != os.Stdout {
		t.Error("AsFile() did not return the handle")
	}
	if got := Ref(&s).AsRef(); got != &s {
		t.Error("AsRef() did not return the pointer")
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInt, "int"},
		{KindBool, "bool"},
		{KindDouble, "double"},
		{KindString, "string"},
		{KindFile, "file"},
		{KindRef, "ref"},
		{KindUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestWrongAccessorPanics(t *testing.T) {
	tests := []struct {
		name string
		read func()
	}{
		{"int as string", func() { _ = Int(1).AsString() }},
		{"string as int", func() { _ = String("1").AsInt() }},
		{"bool as double", func() { _ = Bool(true).AsDouble() }},
		{"double as bool", func() { _ = Double(1).AsBool() }},
		{"zero value as int", func() { _ = Value{}.AsInt() }},
		{"file as ref", func() { _ = File(nil).AsRef() }},
		{"ref as file", func() { _ = Ref(nil).AsFile() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				if !errors.IsContractViolation(r) {
					t.Fatalf("panic value %v is not a ContractError", r)
				}
				if !errors.Is(r.(error), errors.ErrPayloadKind) {
					t.Errorf("panic value should wrap ErrPayloadKind")
				}
			}()
			tt.read()
		})
	}
}

func TestEqual(t *testing.T) {
	s := "x"
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same int", Int(1), Int(1), true},
		{"different int", Int(1), Int(2), false},
		{"int vs double", Int(1), Double(1), false},
		{"same string", String("a"), String("a"), true},
		{"same ref", Ref(&s), Ref(&s), true},
		{"bools", Bool(true), Bool(false), false},
		{"zero", Value{}, Value{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	s := "p"
	tests := []struct {
		v    Value
		want string
	}{
		{Int(3), "int(3)"},
		{Bool(false), "bool(false)"},
		{Double(0.5), "double(0.5)"},
		{String("a b"), `string("a b")`},
		{File(nil), "file(nil)"},
		{Ref(&s), `ref("p")`},
		{Ref(nil), "ref(nil)"},
		{Value{}, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
