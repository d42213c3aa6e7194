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

// Package features holds the per-feature pipeline configuration: typed
// result shapes, schema contracts, prompt templates and fallback content
// pools. The pipeline itself lives in the orchestrator; adding a feature
// here adds configuration, not control flow.
package features

import (
	"github.com/your-org/aura-wellness-engine/internal/fallback"
	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// Feature keys, used for routing, usage counting and logging
const (
	KeyHoroscope     = "horoscope"
	KeyVideoTherapy  = "video_therapy"
	KeyAngelGuidance = "angel_guidance"
	KeyPalmAnalysis  = "palm_analysis"
	KeyKundli        = "kundli_analysis"
	KeyDietPlan      = "diet_plan"
	KeyPuja          = "puja"
)

// ZodiacSigns is the canonical sign list shared by horoscope and kundli
// contracts
var ZodiacSigns = []string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Weekdays is the enum for auspicious-day fields
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Params carries the generation settings shared across feature definitions.
// Values come from configuration at process start.
type Params struct {
	Model       string
	VisionModel string
	MaxTokens   int
	Temperature float32
	Retry       resilience.BackoffConfig
}

// DefaultParams returns the settings used when configuration does not
// override them
func DefaultParams() Params {
	return Params{
		Model:       "gpt-4o",
		VisionModel: "gpt-4o",
		MaxTokens:   1500,
		Temperature: 0.7,
		Retry:       resilience.DefaultBackoffConfig(),
	}
}

// CheckPools verifies every feature's fallback content pools at startup.
// An empty pool would make synthesis produce contract-violating output, so
// it is refused before the process starts serving.
func CheckPools() error {
	checks := map[string]map[string][]string{
		KeyHoroscope:     horoscopePools,
		KeyVideoTherapy:  therapyPools,
		KeyAngelGuidance: angelPools,
		KeyPalmAnalysis:  palmPools,
		KeyKundli:        kundliPools,
		KeyDietPlan:      dietPools,
		KeyPuja:          pujaPools,
	}
	for key, pools := range checks {
		if err := fallback.CheckPools(key, pools); err != nil {
			return err
		}
	}
	return nil
}
