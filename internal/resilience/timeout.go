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

import "time"

const (
	// DefaultModelTimeout bounds a single generative model call. The user
	// must never wait indefinitely; exceeding it classifies the call as
	// model_unavailable and routes to fallback.
	DefaultModelTimeout = 30 * time.Second
	// DefaultMediaTimeout bounds a single media search or status call
	DefaultMediaTimeout = 10 * time.Second
)
