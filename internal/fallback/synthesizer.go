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

// Package fallback synthesizes complete, schema-valid results from static
// per-feature content pools when the model path fails. Synthesis never
// touches the network for primary content and never fails at runtime; an
// empty pool is a startup configuration error caught by CheckPools.
package fallback

import (
	"fmt"
	"math/rand"
	"time"
)

// Picker selects content variants from static pools. Production callers use
// a time-seeded picker; tests pass a fixed seed so synthesis is reproducible
// field by field.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a deterministic picker from a seed
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomPicker creates a picker seeded from the clock
func NewRandomPicker() *Picker {
	return NewPicker(time.Now().UnixNano())
}

// String picks one variant uniformly from the pool
func (p *Picker) String(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[p.rng.Intn(len(pool))]
}

// IntBetween picks a number in [min, max] inclusive
func (p *Picker) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.rng.Intn(max-min+1)
}

// Sample picks up to n distinct variants from the pool, in randomized order
func (p *Picker) Sample(pool []string, n int) []string {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	indexes := p.rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, idx := range indexes {
		out[i] = pool[idx]
	}
	return out
}

// CheckPools verifies every content pool for a feature is non-empty. Called
// once at startup when feature definitions are constructed.
func CheckPools(feature string, pools map[string][]string) error {
	for name, pool := range pools {
		if len(pool) == 0 {
			return fmt.Errorf("feature %q: content pool %q is empty", feature, name)
		}
	}
	return nil
}
