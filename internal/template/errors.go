package template

import "fmt"

// Error is the base interface for all template errors.
type Error interface {
	error
	Position() Position
}

// baseError provides common error functionality.
type baseError struct {
	pos Position
	msg string
}

func (e *baseError) Position() Position { return e.pos }
func (e *baseError) Error() string {
	return fmt.Sprintf("column %d: %s", e.pos.Column, e.msg)
}

// UnresolvedKeyError reports a ${key} token whose key is not defined.
type UnresolvedKeyError struct {
	baseError
	Key    string
	Format string
}

// NewUnresolvedKeyError creates a new unresolved key error.
func NewUnresolvedKeyError(pos Position, format, key string) *UnresolvedKeyError {
	return &UnresolvedKeyError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("unresolved placeholder ${%s} in %q", key, format)},
		Key:       key,
		Format:    format,
	}
}

// RenderError wraps a failure of the value producer behind a key.
type RenderError struct {
	baseError
	Key   string
	Cause error
}

// WrapRenderError wraps an underlying error as a render error.
func WrapRenderError(pos Position, key string, cause error) *RenderError {
	return &RenderError{
		baseError: baseError{pos: pos, msg: fmt.Sprintf("resolving ${%s}", key)},
		Key:       key,
		Cause:     cause,
	}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %v", e.baseError.Error(), e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
