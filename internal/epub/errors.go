package epub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrEncoding   = errors.New("encoding failed")
	ErrPackaging  = errors.New("packaging failed")
)

// FieldError names one invalid input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError reports caller input that cannot be built, such as an
// empty collection. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Items []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}
	if len(e.Items) == 1 {
		return "validation failed: " + e.Items[0].Error()
	}

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, item := range e.Items {
		b.WriteString("\n - ")
		b.WriteString(item.Error())
	}
	return b.String()
}

// Add records a field error.
func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{Field: field, Message: msg})
}

// HasAny reports whether any field error was recorded.
func (e *ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// EncodingError reports a string that cannot be embedded in XML.
type EncodingError struct {
	Field string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// PackagingError reports a failure while writing the ZIP container.
type PackagingError struct {
	Entry string
	Err   error
}

func (e *PackagingError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("packaging epub: %v", e.Err)
	}
	return fmt.Sprintf("packaging epub entry %s: %v", e.Entry, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}

func (e *PackagingError) Is(target error) bool {
	return target == ErrPackaging
}
