package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/webwire/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "queue.max_depth")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// maxWaitMs bounds both waits; longer ticks make shutdown sluggish.
const maxWaitMs = 60000

// ValidLogLevels returns the list of valid structured log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidHandlerLevels returns the list of valid protocol log levels
func ValidHandlerLevels() []string {
	return []string{"detail", "debug", "info", "warning", "error", "fatal"}
}

// ValidColorModes returns the list of valid output colour modes
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDispatch()...)
	errors = append(errors, c.validateQueue()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateHandler()...)

	return errors
}

func (c *Config) validateDispatch() []ValidationError {
	var errors []ValidationError

	if c.Dispatch.WaitMs <= 0 || c.Dispatch.WaitMs > maxWaitMs {
		errors = append(errors, ValidationError{
			Field:   "dispatch.wait_ms",
			Value:   c.Dispatch.WaitMs,
			Message: fmt.Sprintf("must be between 1 and %d", maxWaitMs),
		})
	}

	return errors
}

func (c *Config) validateQueue() []ValidationError {
	var errors []ValidationError

	// Zero is allowed: polls return immediately
	if c.Queue.WaitMs < 0 || c.Queue.WaitMs > maxWaitMs {
		errors = append(errors, ValidationError{
			Field:   "queue.wait_ms",
			Value:   c.Queue.WaitMs,
			Message: fmt.Sprintf("must be between 0 and %d", maxWaitMs),
		})
	}

	if c.Queue.MaxDepth <= 0 {
		errors = append(errors, ValidationError{
			Field:   "queue.max_depth",
			Value:   c.Queue.MaxDepth,
			Message: "must be positive",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	for i, pattern := range c.Logging.TraceEvents {
		if _, err := logging.NewEventFilter([]string{pattern}); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("logging.trace_events[%d]", i),
				Value:   pattern,
				Message: "is not a valid glob pattern",
			})
		}
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidColorModes(), c.Output.Color) {
		errors = append(errors, ValidationError{
			Field:   "output.color",
			Value:   c.Output.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateHandler() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidHandlerLevels(), strings.ToLower(c.Handler.LogLevel)) {
		errors = append(errors, ValidationError{
			Field:   "handler.log_level",
			Value:   c.Handler.LogLevel,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidHandlerLevels(), ", ")),
		})
	}

	return errors
}
