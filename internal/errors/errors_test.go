package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// FatalError Tests
// -----------------------------------------------------------------------------

func TestNewFatalError(t *testing.T) {
	err := NewFatalError("enqueue", ErrQueueOverflow)

	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	if err.IsUserFacing() {
		t.Error("IsUserFacing() = true, want false")
	}
	if !errors.Is(err, ErrQueueOverflow) {
		t.Error("errors.Is(err, ErrQueueOverflow) = false, want true")
	}
	if !IsFatal(err) {
		t.Error("IsFatal() = false, want true")
	}
}

func TestFatalError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FatalError
		want string
	}{
		{
			name: "basic",
			err:  NewFatalError("boom", nil),
			want: "fatal error: boom",
		},
		{
			name: "with cause",
			err:  NewFatalError("new application", ErrAppAlreadyRunning),
			want: "fatal error: new application: there can be only one instantiated application",
		},
		{
			name: "with depth",
			err:  NewFatalError("enqueue", ErrQueueOverflow).WithDepth(4),
			want: "fatal error [depth=4]: enqueue: event queue depth exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFatal_Wrapped(t *testing.T) {
	err := fmt.Errorf("startup: %w", NewFatalError("x", ErrAppAlreadyRunning))
	if !IsFatal(err) {
		t.Error("IsFatal() should see through wrapping")
	}
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true, want false")
	}
	if IsFatal(ErrTimeout) {
		t.Error("IsFatal(ErrTimeout) = true, want false")
	}
}

// -----------------------------------------------------------------------------
// RoutingError Tests
// -----------------------------------------------------------------------------

func TestRoutingError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RoutingError
		want string
	}{
		{
			name: "basic",
			err:  NewRoutingError("delete route", nil),
			want: "routing error: delete route",
		},
		{
			name: "with key and cause",
			err:  NewRoutingError("delete route", ErrNoRoute).WithKey("3:timeout"),
			want: "routing error [key=3:timeout]: delete route: no route",
		},
		{
			name: "with key and event",
			err:  NewRoutingError("dispatch", nil).WithKey("1:x").WithEvent("x"),
			want: "routing error [key=1:x, event=x]: dispatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoutingError_Is(t *testing.T) {
	err := NewRoutingError("delete", ErrNoRoute)
	if !errors.Is(err, &RoutingError{}) {
		t.Error("should match RoutingError type")
	}
	if !errors.Is(err, ErrNoRoute) {
		t.Error("should match cause")
	}
	if errors.Is(err, ErrNoObject) {
		t.Error("should not match unrelated sentinel")
	}
	if got := err.WithSeverity(SeverityDebug).Severity(); got != SeverityDebug {
		t.Errorf("Severity() = %v, want debug", got)
	}
}

// -----------------------------------------------------------------------------
// ContractError Tests
// -----------------------------------------------------------------------------

func TestContractError(t *testing.T) {
	err := NewContractError("read payload", ErrPayloadKind).WithKinds("int", "string")

	want := "contract violation [want=int, got=string]: read payload: payload kind mismatch"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrPayloadKind) {
		t.Error("should match ErrPayloadKind")
	}
	if !IsContractViolation(err) {
		t.Error("IsContractViolation() = false, want true")
	}
	if IsContractViolation("not an error") {
		t.Error("IsContractViolation(string) = true, want false")
	}
	if IsContractViolation(nil) {
		t.Error("IsContractViolation(nil) = true, want false")
	}
}

func TestContractError_Recovered(t *testing.T) {
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		panic(NewContractError("read payload", ErrPayloadEmpty))
	}()

	if !IsContractViolation(recovered) {
		t.Fatalf("recovered %v, want ContractError", recovered)
	}
	err := recovered.(error)
	if !errors.Is(err, ErrPayloadEmpty) {
		t.Error("recovered error should wrap ErrPayloadEmpty")
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("timer", "close-timer")
	if got := err.Error(); got != "timer 'close-timer' not found" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, &NotFoundError{}) {
		t.Error("should match NotFoundError type")
	}
	if !IsUserFacing(err) {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("unknown log level").WithField("level").WithValue("loud")

	want := "validation error [field=level, value=loud]: unknown log level"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if got := err.WithCause(ErrTimeout).Error(); got != want+": operation timed out" {
		t.Errorf("Error() with cause = %q", got)
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for command result", 5*time.Second)

	want := "timeout error: waiting for command result (timeout: 5s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
}

// -----------------------------------------------------------------------------
// Classification Tests
// -----------------------------------------------------------------------------

func TestGetSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Severity
	}{
		{"nil", nil, SeverityDebug},
		{"plain", errors.New("x"), SeverityError},
		{"fatal", NewFatalError("x", nil), SeverityCritical},
		{"routing", NewRoutingError("x", nil), SeverityWarning},
		{"wrapped fatal", Wrap(NewFatalError("x", nil), "ctx"), SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetSeverity(tt.err); got != tt.want {
				t.Errorf("GetSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing_Plain(t *testing.T) {
	if IsUserFacing(errors.New("internal")) {
		t.Error("plain errors are not user facing")
	}
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	err := Wrap(ErrNoRoute, "key 1:x")
	if err.Error() != "key 1:x: no route" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !errors.Is(err, ErrNoRoute) {
		t.Error("Wrap should preserve the chain")
	}
}
