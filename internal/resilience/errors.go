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

// Package resilience provides the failure taxonomy and retry/timeout
// utilities shared by the recommendation pipeline. Every external failure is
// classified into a FailureKind so the orchestrator can decide between
// retrying, degrading and falling back without inspecting error strings.
package resilience

import (
	"errors"
	"fmt"
)

// FailureKind classifies a pipeline failure
type FailureKind string

const (
	// KindTemplateBinding marks a prompt template whose placeholders could
	// not be bound from the request. This is a caller bug and is the only
	// kind the orchestrator propagates instead of absorbing.
	KindTemplateBinding FailureKind = "template_binding"
	// KindModelUnavailable covers network errors, timeouts and rate limits
	// on the generative backend
	KindModelUnavailable FailureKind = "model_unavailable"
	// KindModelRefused means the backend answered but explicitly declined
	KindModelRefused FailureKind = "model_refused"
	// KindMalformedJSON means the model text did not parse as JSON
	KindMalformedJSON FailureKind = "malformed_json"
	// KindSchemaMismatch means parsed JSON did not satisfy the contract
	KindSchemaMismatch FailureKind = "schema_mismatch"
	// KindMediaQuota means the media search API rejected the call for quota
	KindMediaQuota FailureKind = "media_quota_exceeded"
	// KindMediaAuth means the media search API rejected the credentials
	KindMediaAuth FailureKind = "media_auth"
	// KindMediaNotFound means no acceptable media item matched the query
	KindMediaNotFound FailureKind = "media_not_found"
	// KindInternal is the catch-all for unclassified failures
	KindInternal FailureKind = "internal"
)

// Error carries a failure classification alongside the underlying cause
type Error struct {
	Kind     FailureKind
	Message  string
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Internal
}

// NewError creates a classified pipeline error
func NewError(kind FailureKind, message string, internal error) *Error {
	return &Error{Kind: kind, Message: message, Internal: internal}
}

// NewTemplateBindingError creates a template binding error (programmer error)
func NewTemplateBindingError(message string, internal error) *Error {
	return NewError(KindTemplateBinding, message, internal)
}

// NewModelUnavailableError creates a model unavailability error
func NewModelUnavailableError(message string, internal error) *Error {
	return NewError(KindModelUnavailable, message, internal)
}

// NewModelRefusedError creates a model refusal error
func NewModelRefusedError(message string) *Error {
	return NewError(KindModelRefused, message, nil)
}

// NewMalformedJSONError creates a JSON parse failure
func NewMalformedJSONError(message string, internal error) *Error {
	return NewError(KindMalformedJSON, message, internal)
}

// NewSchemaMismatchError creates a contract violation failure
func NewSchemaMismatchError(message string) *Error {
	return NewError(KindSchemaMismatch, message, nil)
}

// KindOf extracts the failure kind from an error chain, returning
// KindInternal for unclassified errors and an empty kind for nil
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given classification
func IsKind(err error, kind FailureKind) bool {
	return KindOf(err) == kind
}

// Recoverable reports whether a failure may be absorbed into the fallback
// path. Template binding failures indicate a defect and must surface.
func Recoverable(err error) bool {
	if err == nil {
		return true
	}
	return KindOf(err) != KindTemplateBinding
}

// Retryable reports whether another model attempt could plausibly succeed.
// Refusals repeat for the same prompt, so only availability and parse-level
// failures are worth spending a feature's retry budget on.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindModelUnavailable, KindMalformedJSON, KindSchemaMismatch:
		return true
	default:
		return false
	}
}
