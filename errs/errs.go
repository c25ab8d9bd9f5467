// Package errs provides the structured error type used across the build
// engine, with category-based classification for CLI reporting and tests.
package errs

import (
	"errors"
	"fmt"
)

// Category classifies an error by the subsystem that produced it.
type Category string

const (
	CategoryRouting Category = "routing"
	CategoryContent Category = "content"
	CategoryParams  Category = "params"
	CategoryAsset   Category = "asset"
	CategoryRender  Category = "render"
	CategoryWrite   Category = "write"
	CategoryCache   Category = "cache"
	CategoryConfig  Category = "config"
)

// Severity indicates how an error affects the build.
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Aborts the build.
	SeverityWarning Severity = "warning" // Recorded, build continues.
)

// ContextFields carries structured context for an Error.
type ContextFields map[string]any

// Error is a structured build error with category, severity and cause.
type Error struct {
	Category Category      `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.Cause }

// WithContext attaches a context field and returns the error for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a fatal Error in the given category.
func New(category Category, message string) *Error {
	return &Error{Category: category, Severity: SeverityFatal, Message: message}
}

// Wrap creates a fatal Error wrapping an existing cause.
func Wrap(err error, category Category, message string) *Error {
	return &Error{Category: category, Severity: SeverityFatal, Message: message, Cause: err}
}

// Warning creates a non-fatal Error in the given category.
func Warning(category Category, message string) *Error {
	return &Error{Category: category, Severity: SeverityWarning, Message: message}
}

// IsCategory reports whether err (or anything in its chain) is an Error of
// the given category.
func IsCategory(err error, category Category) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == category
	}
	return false
}

// GetCategory extracts the category from an error chain. Errors that are not
// structured default to CategoryRender, the catch-all for user code.
func GetCategory(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryRender
}
