// Package errors provides centralized error definitions and error handling utilities
// for the webwire kernel. It defines sentinel errors, error types for each failure
// class of the event bus, and classification helpers.
//
// # Error Classes
//
// The kernel distinguishes four classes of failure:
//
//   - FatalError: structural misuse of the singleton or back-pressure contract
//     (a second live Application, event queue overflow). These end the process.
//   - RoutingError: anomalies in the routing table (deleting a route that does
//     not exist, an event nobody subscribed to). These are logged and ignored.
//   - ContractError: a caller broke a co-designed protocol, e.g. reading a
//     payload value through the wrong accessor. These are raised with panic.
//   - Semantic errors (NotFoundError, ValidationError, TimeoutError): ordinary
//     recoverable errors returned to callers.
//
// # Usage
//
//	err := errors.NewFatalError("second application", errors.ErrAppAlreadyRunning)
//	if errors.IsFatal(err) { ... }
//
//	var contract *errors.ContractError
//	if errors.As(err, &contract) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that end the process.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Kernel-level sentinel errors
var (
	// ErrAppAlreadyRunning indicates that an Application was created while another is live.
	ErrAppAlreadyRunning = New("there can be only one instantiated application")
	// ErrQueueOverflow indicates that the event queue exceeded its maximum depth.
	ErrQueueOverflow = New("event queue depth exceeded")
	// ErrAppClosed indicates that the Application has been closed.
	ErrAppClosed = New("application closed")
)

// Routing sentinel errors
var (
	// ErrNoRoute indicates that no route exists for a (source, event) key.
	ErrNoRoute = New("no route")
	// ErrNoObject indicates that an entity has no routes or is not in the arena.
	ErrNoObject = New("no such object")
)

// Payload sentinel errors
var (
	// ErrPayloadKind indicates a payload value was read through the wrong accessor.
	ErrPayloadKind = New("payload kind mismatch")
	// ErrPayloadEmpty indicates a payload value was read from an empty payload.
	ErrPayloadEmpty = New("payload is empty")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrInvalidHandle indicates that a handle is no longer usable.
	ErrInvalidHandle = New("invalid handle")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// WireError is the base interface for all webwire errors.
type WireError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the message is safe to show on the wire.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Kernel Errors
// -----------------------------------------------------------------------------

// FatalError is a process-level invariant violation. The kernel never returns
// it to a dispatch-loop caller; it is handed to a fatal function that exits.
//
// Example:
//
//	err := errors.NewFatalError("enqueue", errors.ErrQueueOverflow).WithDepth(100000)
//	fmt.Println(err) // "fatal error [depth=100000]: enqueue: event queue depth exceeded"
type FatalError struct {
	baseError
	Depth int
}

// NewFatalError creates a new FatalError.
func NewFatalError(message string, cause error) *FatalError {
	return &FatalError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: false,
		},
	}
}

// WithDepth records the queue depth at the time of failure.
func (e *FatalError) WithDepth(depth int) *FatalError {
	e.Depth = depth
	return e
}

// Error returns the formatted error message.
func (e *FatalError) Error() string {
	prefix := "fatal error"
	if e.Depth > 0 {
		prefix = fmt.Sprintf("fatal error [depth=%d]", e.Depth)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *FatalError) Is(target error) bool {
	if _, ok := target.(*FatalError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// RoutingError describes a routing table anomaly. These are logged by the
// Application and never interrupt the dispatch loop.
//
// Example:
//
//	err := errors.NewRoutingError("delete route", errors.ErrNoRoute).
//		WithKey("3:timeout")
type RoutingError struct {
	baseError
	Key   string
	Event string
}

// NewRoutingError creates a new RoutingError.
func NewRoutingError(message string, cause error) *RoutingError {
	return &RoutingError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: false,
		},
	}
}

// WithKey adds the route key to the error context.
func (e *RoutingError) WithKey(key string) *RoutingError {
	e.Key = key
	return e
}

// WithEvent adds the event name to the error context.
func (e *RoutingError) WithEvent(name string) *RoutingError {
	e.Event = name
	return e
}

// WithSeverity sets the error severity.
func (e *RoutingError) WithSeverity(s Severity) *RoutingError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *RoutingError) Error() string {
	var parts []string
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key=%s", e.Key))
	}
	if e.Event != "" {
		parts = append(parts, fmt.Sprintf("event=%s", e.Event))
	}

	prefix := "routing error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("routing error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *RoutingError) Is(target error) bool {
	if _, ok := target.(*RoutingError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ContractError is raised with panic when a caller breaks a protocol that the
// producer and consumer of an event were written against.
//
// Example:
//
//	panic(errors.NewContractError("read int", errors.ErrPayloadKind).WithKinds("int", "string"))
type ContractError struct {
	baseError
	Want string
	Got  string
}

// NewContractError creates a new ContractError.
func NewContractError(message string, cause error) *ContractError {
	return &ContractError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityCritical,
			userFacing: false,
		},
	}
}

// WithKinds records the expected and actual kinds.
func (e *ContractError) WithKinds(want, got string) *ContractError {
	e.Want = want
	e.Got = got
	return e
}

// Error returns the formatted error message.
func (e *ContractError) Error() string {
	prefix := "contract violation"
	if e.Want != "" || e.Got != "" {
		prefix = fmt.Sprintf("contract violation [want=%s, got=%s]", e.Want, e.Got)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ContractError) Is(target error) bool {
	if _, ok := target.(*ContractError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("timer", "close-timer")
//	fmt.Println(err) // "timer 'close-timer' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("unknown log level").WithField("level").WithValue("loud")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("waiting for command result", 5*time.Second)
//	fmt.Println(err) // "timeout error: waiting for command result (timeout: 5s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsFatal returns true if the error is a process-level invariant violation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var fatal *FatalError
	return As(err, &fatal)
}

// IsContractViolation returns true if the error (or a recovered panic value)
// is a ContractError.
func IsContractViolation(v any) bool {
	err, ok := v.(error)
	if !ok || err == nil {
		return false
	}
	var contract *ContractError
	return As(err, &contract)
}

// IsUserFacing returns true if the error message is safe to put on the wire.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var wireErr WireError
	if As(err, &wireErr) {
		return wireErr.IsUserFacing()
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement WireError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var wireErr WireError
	if As(err, &wireErr) {
		return wireErr.Severity()
	}

	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to read config")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
