// Copyright 2025 Aura Wellness Engine Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resilience

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil error", err: nil, want: ""},
		{name: "classified error", err: NewModelRefusedError("declined"), want: KindModelRefused},
		{name: "wrapped classified error", err: fmt.Errorf("outer: %w", NewMalformedJSONError("bad json", nil)), want: KindMalformedJSON},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("Expected kind %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := NewSchemaMismatchError("missing field")
	if !IsKind(err, KindSchemaMismatch) {
		t.Error("Expected schema_mismatch classification")
	}
	if IsKind(err, KindModelUnavailable) {
		t.Error("Did not expect model_unavailable classification")
	}
}

func TestRecoverable(t *testing.T) {
	if Recoverable(NewTemplateBindingError("unbound placeholder", nil)) {
		t.Error("Template binding failures must not be recoverable")
	}
	if !Recoverable(NewModelUnavailableError("timeout", nil)) {
		t.Error("Model unavailability must be recoverable")
	}
	if !Recoverable(errors.New("boom")) {
		t.Error("Unclassified failures must be recoverable")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unavailable", err: NewModelUnavailableError("timeout", nil), want: true},
		{name: "malformed", err: NewMalformedJSONError("bad json", nil), want: true},
		{name: "mismatch", err: NewSchemaMismatchError("missing field"), want: true},
		{name: "refused", err: NewModelRefusedError("declined"), want: false},
		{name: "binding", err: NewTemplateBindingError("unbound", nil), want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Expected retryable=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewModelUnavailableError("backend error", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the underlying cause")
	}
	if err.Error() != "model_unavailable: backend error: connection reset" {
		t.Errorf("Unexpected error string: %s", err.Error())
	}
}
