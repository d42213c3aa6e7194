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
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// BackoffConfig holds the retry budget for a pipeline stage. The gateway
// itself never retries; each feature's orchestrator owns its budget so
// different features can trade latency against success rate independently.
type BackoffConfig struct {
	BaseDelay   time.Duration
	MaxAttempts int
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool
	RetryOn     func(error) bool
}

const (
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxAttempts = 2
	defaultMaxDelay    = 5 * time.Second
	defaultMultiplier  = 2.0
)

// DefaultBackoffConfig returns the default retry budget: one retry after a
// short delay, on retryable classifications only
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BaseDelay:   defaultBaseDelay,
		MaxAttempts: defaultMaxAttempts,
		MaxDelay:    defaultMaxDelay,
		Multiplier:  defaultMultiplier,
		Jitter:      true,
		RetryOn:     Retryable,
	}
}

// Retry executes fn until it succeeds, the budget is exhausted, or a
// non-retryable failure occurs. The last error is returned.
func Retry(ctx context.Context, cfg BackoffConfig, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = Retryable
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := delay
			if cfg.Jitter {
				wait += time.Duration(rand.Int63n(int64(delay)/4 + 1))
			}
			if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
				wait = cfg.MaxDelay
			}
			logger.Warn("Retrying after failure",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", cfg.MaxAttempts),
				zap.Duration("delay", wait),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return NewModelUnavailableError("retry interrupted", ctx.Err())
			case <-time.After(wait):
			}
			delay = time.Duration(float64(delay) * cfg.Multiplier)
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("Operation succeeded after retry", zap.Int("attempt", attempt))
			}
			return nil
		}
		lastErr = err

		if !retryOn(err) {
			logger.Debug("Failure is not retryable",
				zap.String("kind", string(KindOf(err))),
				zap.Error(err))
			return err
		}
	}

	return lastErr
}
