// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"fmt"
)

// ErrorCode defines standardized error codes for the controller.
type ErrorCode int

// ErrCodeUnknown represents an unknown error.
const ErrCodeUnknown ErrorCode = 0

// Configuration errors (1xx)
const (
	ErrCodeConfiguration ErrorCode = 101 + iota
	ErrCodeConfigValidation
	ErrCodeConfigMissing
)

// Stage lifecycle errors (2xx)
const (
	ErrCodeStageStart ErrorCode = 201 + iota
	ErrCodeStageStop
	ErrCodeStageAborted
)

// Event buffer errors (3xx)
const (
	ErrCodeTypeMismatch ErrorCode = 301 + iota
	ErrCodeAcknowledge
	ErrCodeEventDispatch
	ErrCodeEventValidation
)

// Identifier errors (4xx)
const (
	ErrCodeMalformedIdentifier ErrorCode = 401 + iota
)

// Resource errors (5xx)
const (
	ErrCodeResourceNotFound ErrorCode = 501 + iota
	ErrCodeConnection
	ErrCodeShutdownTimeout
)

// Error represents a structured controller error.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds contextual information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// HasCode reports whether any *Error in err's tree carries code. Joined
// errors, such as those built with multierr, are searched too.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Code == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if HasCode(inner, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	}
	return false
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string, cause error) *Error {
	return Wrap(ErrCodeConfiguration, message, cause)
}

// NewConfigValidationError creates a configuration validation error.
func NewConfigValidationError(field string, message string) *Error {
	return New(ErrCodeConfigValidation, fmt.Sprintf("invalid %s: %s", field, message)).
		WithContext("field", field)
}

// NewTypeMismatchError reports an event offered to a buffer that does not accept its kind.
func NewTypeMismatchError(buffer string, accepted, got fmt.Stringer) *Error {
	return New(ErrCodeTypeMismatch,
		fmt.Sprintf("buffer '%s' accepts %s events, got %s", buffer, accepted, got)).
		WithContext("buffer", buffer).
		WithContext("accepted", accepted.String()).
		WithContext("kind", got.String())
}

// NewAcknowledgeError reports an acknowledgment with no outstanding event.
func NewAcknowledgeError(buffer string) *Error {
	return New(ErrCodeAcknowledge,
		fmt.Sprintf("acknowledge called more times than events were put on '%s'", buffer)).
		WithContext("buffer", buffer)
}

// NewMalformedIdentifierError reports text that cannot be parsed into an identifier.
func NewMalformedIdentifierError(input string, cause error) *Error {
	return Wrap(ErrCodeMalformedIdentifier, fmt.Sprintf("malformed identifier %q", input), cause).
		WithContext("input", input)
}

// NewStageAbortedError reports a stage that stopped on a non-recoverable error.
func NewStageAbortedError(stage string, cause error) *Error {
	return Wrap(ErrCodeStageAborted, fmt.Sprintf("stage '%s' aborted", stage), cause).
		WithContext("stage", stage)
}

// NewEventDispatchError creates an event dispatch error.
func NewEventDispatchError(cause error) *Error {
	return Wrap(ErrCodeEventDispatch, "failed to dispatch event", cause)
}

// NewConnectionError creates a switch connection error.
func NewConnectionError(conn string, cause error) *Error {
	return Wrap(ErrCodeConnection, fmt.Sprintf("connection '%s' failed", conn), cause).
		WithContext("connection", conn)
}

// NewShutdownTimeoutError reports a shutdown step that did not finish in time.
func NewShutdownTimeoutError(step string, cause error) *Error {
	return Wrap(ErrCodeShutdownTimeout, fmt.Sprintf("timed out waiting for %s", step), cause).
		WithContext("step", step)
}

// NewResourceNotFoundError creates a resource not found error.
func NewResourceNotFoundError(resource string) *Error {
	return New(ErrCodeResourceNotFound, fmt.Sprintf("resource not found: %s", resource))
}
