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

// Package usage tracks per-user, per-feature call counters against daily
// quota limits. The pipeline treats the counter as an external collaborator:
// it reads before a call, writes after a successful one, and leaves
// storage-level atomicity to the backend.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Record is the stored counter state for one (user, feature) pair
type Record struct {
	Count    int       `json:"count"`
	LastUsed time.Time `json:"last_used"`
}

// Store is the keyed counter backend. Reading an absent key returns a zero
// Record, not an error. No ordering is guaranteed across features.
type Store interface {
	Read(ctx context.Context, userID, featureKey string) (Record, error)
	Write(ctx context.Context, userID, featureKey string, rec Record) error
}

// MemoryStore is an in-memory Store for tests and single-process deployments
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func storeKey(userID, featureKey string) string {
	return userID + "/" + featureKey
}

// Read retrieves the counter for a user and feature
func (m *MemoryStore) Read(_ context.Context, userID, featureKey string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[storeKey(userID, featureKey)], nil
}

// Write stores the counter for a user and feature
func (m *MemoryStore) Write(_ context.Context, userID, featureKey string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[storeKey(userID, featureKey)] = rec
	return nil
}

// Gate enforces a daily call limit for one feature. Counters reset on the
// first call of a new calendar day in the configured timezone; stale counts
// are simply ignored rather than eagerly cleared.
type Gate struct {
	store      Store
	featureKey string
	limit      int
	location   *time.Location
	now        func() time.Time
}

// GateOption customizes a Gate
type GateOption func(*Gate)

// WithLocation sets the timezone for day-boundary comparison
func WithLocation(loc *time.Location) GateOption {
	return func(g *Gate) {
		if loc != nil {
			g.location = loc
		}
	}
}

// WithClock overrides the clock, for tests
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

// NewGate creates a gate for a feature. A limit of zero or less means
// unlimited.
func NewGate(store Store, featureKey string, limit int, opts ...GateOption) *Gate {
	g := &Gate{
		store:      store,
		featureKey: featureKey,
		limit:      limit,
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CanProceed reports whether the user has quota left today
func (g *Gate) CanProceed(ctx context.Context, userID string) (bool, error) {
	if g.limit <= 0 {
		return true, nil
	}
	rec, err := g.store.Read(ctx, userID, g.featureKey)
	if err != nil {
		return false, fmt.Errorf("failed to read usage counter: %w", err)
	}
	if IsStale(rec.LastUsed, g.now(), g.location) {
		return true, nil
	}
	return rec.Count < g.limit, nil
}

// RecordUsage counts one successful call, resetting first on a new day
func (g *Gate) RecordUsage(ctx context.Context, userID string) error {
	now := g.now()
	rec, err := g.store.Read(ctx, userID, g.featureKey)
	if err != nil {
		return fmt.Errorf("failed to read usage counter: %w", err)
	}
	if IsStale(rec.LastUsed, now, g.location) {
		rec.Count = 0
	}
	rec.Count++
	rec.LastUsed = now
	if err := g.store.Write(ctx, userID, g.featureKey, rec); err != nil {
		return fmt.Errorf("failed to write usage counter: %w", err)
	}
	return nil
}

// NopGate allows every call and records nothing. Used by the CLI and by
// features without quota limits.
type NopGate struct{}

// CanProceed always allows
func (NopGate) CanProceed(context.Context, string) (bool, error) { return true, nil }

// RecordUsage does nothing
func (NopGate) RecordUsage(context.Context, string) error { return nil }
