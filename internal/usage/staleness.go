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

package usage

import "time"

// IsStale reports whether lastFetched falls on an earlier calendar day than
// now in the given timezone. Callers use it both for quota-window resets and
// for deciding whether a cached daily reading may be reused; there are no
// hidden timers, only this check at call time.
func IsStale(lastFetched, now time.Time, loc *time.Location) bool {
	if lastFetched.IsZero() {
		return true
	}
	if loc == nil {
		loc = time.UTC
	}
	y1, d1 := lastFetched.In(loc).Year(), lastFetched.In(loc).YearDay()
	y2, d2 := now.In(loc).Year(), now.In(loc).YearDay()
	return y1 != y2 || d1 != d2
}
