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
	"errors"
	"fmt"
	"testing"
)

type kind string

func (k kind) String() string { return string(k) }

func TestNew(t *testing.T) {
	err := New(ErrCodeConfiguration, "test error")
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected code %d, got %d", ErrCodeConfiguration, err.Code)
		return
	}
	if err.Message != "test error" {
		t.Errorf("expected message 'test error', got '%s'", err.Message)
		return
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStageStart, "stage start failed", cause)

	if err.Code != ErrCodeStageStart {
		t.Errorf("expected code %d, got %d", ErrCodeStageStart, err.Code)
		return
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find cause")
	}
}

func TestCodesAreDistinct(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeConfiguration, ErrCodeConfigValidation, ErrCodeConfigMissing,
		ErrCodeStageStart, ErrCodeStageStop, ErrCodeStageAborted,
		ErrCodeTypeMismatch, ErrCodeAcknowledge, ErrCodeEventDispatch, ErrCodeEventValidation,
		ErrCodeMalformedIdentifier,
		ErrCodeResourceNotFound, ErrCodeConnection, ErrCodeShutdownTimeout,
	}
	seen := make(map[ErrorCode]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code %d", c)
		}
		seen[c] = true
	}
	if ErrCodeTypeMismatch != 301 {
		t.Errorf("expected ErrCodeTypeMismatch = 301, got %d", ErrCodeTypeMismatch)
	}
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeConfiguration, "test error").
		WithContext("buffer", "raw_event").
		WithContext("size", 3)

	if err.Context["buffer"] != "raw_event" {
		t.Errorf("expected buffer context to be 'raw_event', got %v", err.Context["buffer"])
	}
	if err.Context["size"] != 3 {
		t.Errorf("expected size context to be 3, got %v", err.Context["size"])
	}
}

func TestNewTypeMismatchError(t *testing.T) {
	err := NewTypeMismatchError("msg_in_event", kind("msg_in"), kind("app"))

	if err.Code != ErrCodeTypeMismatch {
		t.Errorf("expected code %d, got %d", ErrCodeTypeMismatch, err.Code)
	}
	if err.Context["buffer"] != "msg_in_event" {
		t.Errorf("expected buffer context, got %v", err.Context["buffer"])
	}
	if err.Context["kind"] != "app" {
		t.Errorf("expected kind context 'app', got %v", err.Context["kind"])
	}
	want := "[301] buffer 'msg_in_event' accepts msg_in events, got app"
	if err.Error() != want {
		t.Errorf("expected '%s', got '%s'", want, err.Error())
	}
}

func TestHasCode(t *testing.T) {
	inner := NewTypeMismatchError("app_event", kind("app"), kind("raw"))
	outer := NewStageAbortedError("msg_in", inner)
	wrapped := fmt.Errorf("controller: %w", outer)
	joined := errors.Join(New(ErrCodeConnection, "closed"), wrapped)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"outer code", wrapped, ErrCodeStageAborted, true},
		{"inner code", wrapped, ErrCodeTypeMismatch, true},
		{"absent code", wrapped, ErrCodeConnection, false},
		{"joined second", joined, ErrCodeTypeMismatch, true},
		{"joined first", joined, ErrCodeConnection, true},
		{"plain error", errors.New("plain"), ErrCodeTypeMismatch, false},
		{"nil error", nil, ErrCodeTypeMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeConfiguration, "config error"),
			expected: "[101] config error",
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeStageStart, "start failed", errors.New("underlying")),
			expected: "[201] start failed: underlying",
		},
		{
			name:     "malformed identifier",
			err:      NewMalformedIdentifierError("nocolon", errors.New("missing separator")),
			expected: `[401] malformed identifier "nocolon": missing separator`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, tt.err.Error())
			}
		})
	}
}
