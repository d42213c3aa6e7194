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

// Package orchestrator sequences the recommendation pipeline for one
// feature: usage gate, prompt build, model call with a per-feature retry
// budget, validation, media enrichment, and fallback synthesis. Execute
// absorbs every classified runtime failure into the fallback path; only
// programmer errors surface, because masking a defect behind fallback
// content would hide it forever.
package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/media"
	"github.com/your-org/aura-wellness-engine/internal/prompt"
	"github.com/your-org/aura-wellness-engine/internal/resilience"
	"github.com/your-org/aura-wellness-engine/internal/schema"
	"github.com/your-org/aura-wellness-engine/internal/validate"
)

// Source tags result provenance, for telemetry only; the payload shape is
// identical either way so callers never special-case on it
type Source string

const (
	// SourceModel marks a result derived from a validated model response
	SourceModel Source = "model"
	// SourceFallback marks a synthesized result
	SourceFallback Source = "fallback"
)

// Status distinguishes content results from the quota short-circuit
type Status string

const (
	// StatusOK means Value carries a complete result
	StatusOK Status = "ok"
	// StatusQuotaExhausted means the usage gate refused the call; Value is
	// the zero value and the caller renders an upsell, not content
	StatusQuotaExhausted Status = "quota_exhausted"
)

// Request is the caller-owned input to one pipeline execution
type Request struct {
	UserID string
	// Fields binds the feature template's placeholders
	Fields map[string]string
	// Image is set for vision features (palm, kundli)
	Image *prompt.Image
	// Seed, when set, makes fallback synthesis deterministic (tests)
	Seed *int64
}

// Result is the typed outcome delivered to the caller. When Status is
// StatusOK the value always satisfies the feature's contract.
type Result[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
	Status Status `json:"status"`
}

// ModelCaller is the gateway contract
type ModelCaller interface {
	Complete(ctx context.Context, p prompt.Prompt) (string, error)
}

// MediaResolver is the enrichment contract
type MediaResolver interface {
	ResolveMany(ctx context.Context, queries []string) []media.Candidate
}

// Gate is the injected usage-counting capability. The orchestrator never
// implements counter storage; it only checks before running and records
// after success.
type Gate interface {
	CanProceed(ctx context.Context, userID string) (bool, error)
	RecordUsage(ctx context.Context, userID string) error
}

// Feature is the per-feature configuration the pipeline is parameterized
// by. New features add one of these, not new control flow.
type Feature[T any] struct {
	Key      string
	Contract schema.Contract
	Template prompt.Template

	// Retry is the feature's model retry budget
	Retry resilience.BackoffConfig

	// Synthesize builds a complete schema-valid value from static pools
	Synthesize func(req Request, p *fallback.Picker) T

	// MediaQueries derives search phrases from a result; nil disables
	// media enrichment for the feature
	MediaQueries func(value T) []string
	// AttachMedia folds resolved candidates back into the result
	AttachMedia func(value *T, candidates []media.Candidate)

	// CountFallbackUsage decides whether a pure fallback result (no model
	// cost incurred) still counts against the user's quota
	CountFallbackUsage bool
}

// check validates the feature definition at construction time
func (f Feature[T]) check() error {
	if f.Key == "" {
		return fmt.Errorf("feature key cannot be empty")
	}
	if err := f.Contract.Check(); err != nil {
		return fmt.Errorf("feature %q: %w", f.Key, err)
	}
	if f.Synthesize == nil {
		return fmt.Errorf("feature %q: fallback synthesis is required", f.Key)
	}
	if (f.MediaQueries == nil) != (f.AttachMedia == nil) {
		return fmt.Errorf("feature %q: media hooks must both be set or both nil", f.Key)
	}
	return nil
}

// Orchestrator runs the pipeline for one feature
type Orchestrator[T any] struct {
	feature Feature[T]
	model   ModelCaller
	media   MediaResolver
	gate    Gate
	logger  *zap.Logger
}

// New constructs an orchestrator, failing fast on misconfigured features.
// The media resolver may be nil when the feature declares no media hooks.
func New[T any](f Feature[T], model ModelCaller, resolver MediaResolver, gate Gate, logger *zap.Logger) (*Orchestrator[T], error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("feature %q: model gateway is required", f.Key)
	}
	if f.MediaQueries != nil && resolver == nil {
		return nil, fmt.Errorf("feature %q: media hooks declared but no resolver", f.Key)
	}
	if gate == nil {
		gate = nopGate{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator[T]{
		feature: f,
		model:   model,
		media:   resolver,
		gate:    gate,
		logger:  logger.With(zap.String("feature", f.Key)),
	}, nil
}

// Execute runs the pipeline to completion. It returns an error only for
// programmer errors (template binding, misconfiguration); every classified
// runtime failure is absorbed so the caller always gets a complete,
// contract-satisfying value.
func (o *Orchestrator[T]) Execute(ctx context.Context, req Request) (Result[T], error) {
	var zero Result[T]

	allowed, err := o.gate.CanProceed(ctx, req.UserID)
	if err != nil {
		// Gating is a product control, not a content dependency; an
		// unreadable counter must not take the feature down.
		o.logger.Warn("Usage gate check failed, allowing call", zap.Error(err))
		allowed = true
	}
	if !allowed {
		o.logger.Info("Usage quota exhausted", zap.String("user_id", req.UserID))
		return Result[T]{Status: StatusQuotaExhausted}, nil
	}

	p, err := prompt.Build(o.feature.Template, req.Fields)
	if err != nil {
		// Unbound placeholders are a defect in the caller, never masked
		// by fallback content.
		return zero, err
	}
	p.Image = req.Image
	if req.Image != nil && o.feature.Template.VisionModel != "" {
		p.Model = o.feature.Template.VisionModel
	}

	value, source := o.produce(ctx, req, p)

	if o.feature.MediaQueries != nil {
		o.enrich(ctx, &value)
	}

	if source == SourceModel || o.feature.CountFallbackUsage {
		if err := o.gate.RecordUsage(ctx, req.UserID); err != nil {
			o.logger.Warn("Failed to record usage", zap.Error(err))
		}
	}

	return Result[T]{Value: value, Source: source, Status: StatusOK}, nil
}

// produce attempts the model path under the feature's retry budget and
// falls back to synthesis on any classified failure
func (o *Orchestrator[T]) produce(ctx context.Context, req Request, p prompt.Prompt) (T, Source) {
	var value T
	modelErr := resilience.Retry(ctx, o.feature.Retry, o.logger, func(ctx context.Context) error {
		raw, err := o.model.Complete(ctx, p)
		if err != nil {
			return err
		}
		parsed, err := validate.Parsed[T](raw, o.feature.Contract)
		if err != nil {
			return err
		}
		value = parsed
		return nil
	})
	if modelErr == nil {
		return value, SourceModel
	}

	o.logger.Warn("Model path failed, synthesizing fallback",
		zap.String("kind", string(resilience.KindOf(modelErr))),
		zap.Error(modelErr))

	picker := fallback.NewRandomPicker()
	if req.Seed != nil {
		picker = fallback.NewPicker(*req.Seed)
	}
	return o.feature.Synthesize(req, picker), SourceFallback
}

// enrich resolves the feature's media queries and attaches the candidates.
// Unresolved slots stay empty; media never blocks primary content.
func (o *Orchestrator[T]) enrich(ctx context.Context, value *T) {
	queries := o.feature.MediaQueries(*value)
	if len(queries) == 0 {
		return
	}
	candidates := o.media.ResolveMany(ctx, queries)

	resolved := 0
	for _, c := range candidates {
		if c.Verified {
			resolved++
		}
	}
	o.logger.Debug("Media enrichment completed",
		zap.Int("queries", len(queries)),
		zap.Int("resolved", resolved))

	o.feature.AttachMedia(value, candidates)
}

type nopGate struct{}

func (nopGate) CanProceed(context.Context, string) (bool, error) { return true, nil }
func (nopGate) RecordUsage(context.Context, string) error        { return nil }
