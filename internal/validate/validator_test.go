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

package validate

import (
	"testing"

	"github.com/your-org/aura-wellness-engine/internal/resilience"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

var readingContract = schema.Contract{
	Name: "reading",
	Fields: []schema.Field{
		{Name: "prediction", Type: schema.TypeString, Required: true},
		{Name: "color", Type: schema.TypeString, Default: "gold"},
		{Name: "lucky_number", Type: schema.TypeNumber, Required: true, Bounded: true, Min: 1, Max: 99},
		{Name: "mood", Type: schema.TypeEnum, Required: true, Enum: []string{"Calm", "Energetic", "Reflective"}},
	},
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare json", raw: `{"a": 1}`, want: `{"a": 1}`},
		{name: "plain fence", raw: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "json fence", raw: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fence with prose", raw: "Here you go!\n```json\n{\"a\": 1}\n```\nEnjoy.", want: `{"a": 1}`},
		{name: "surrounding whitespace", raw: "  {\"a\": 1}  \n", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.raw); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseValidPayload(t *testing.T) {
	raw := "```json\n" + `{
		"prediction": "A calm and fruitful day.",
		"lucky_number": 7,
		"mood": "calm"
	}` + "\n```"

	payload, err := Parse(raw, readingContract)
	if err != nil {
		t.Fatalf("Expected valid payload, got %v", err)
	}

	if payload["lucky_number"] != float64(7) {
		t.Errorf("Expected lucky_number 7, got %v", payload["lucky_number"])
	}
	// Enum matched case-insensitively, canonical casing returned
	if payload["mood"] != "Calm" {
		t.Errorf("Expected canonical enum casing 'Calm', got %v", payload["mood"])
	}
	// Optional absent field takes its default
	if payload["color"] != "gold" {
		t.Errorf("Expected default color 'gold', got %v", payload["color"])
	}
}

func TestParseCoercesNumericStrings(t *testing.T) {
	raw := `{"prediction": "ok", "lucky_number": "42", "mood": "Calm"}`

	payload, err := Parse(raw, readingContract)
	if err != nil {
		t.Fatalf("Expected numeric string coercion, got %v", err)
	}
	if payload["lucky_number"] != float64(42) {
		t.Errorf("Expected coerced 42, got %v", payload["lucky_number"])
	}
}

func TestParseFailureClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind resilience.FailureKind
	}{
		{name: "empty response", raw: "", kind: resilience.KindMalformedJSON},
		{name: "not json", raw: "Mercury is in retrograde, try later.", kind: resilience.KindMalformedJSON},
		{name: "truncated json", raw: `{"prediction": "a`, kind: resilience.KindMalformedJSON},
		{name: "top level array", raw: `[1, 2]`, kind: resilience.KindSchemaMismatch},
		{name: "missing required field", raw: `{"lucky_number": 7, "mood": "Calm"}`, kind: resilience.KindSchemaMismatch},
		{name: "empty required string", raw: `{"prediction": "  ", "lucky_number": 7, "mood": "Calm"}`, kind: resilience.KindSchemaMismatch},
		{name: "number out of range", raw: `{"prediction": "ok", "lucky_number": 120, "mood": "Calm"}`, kind: resilience.KindSchemaMismatch},
		{name: "non-numeric string", raw: `{"prediction": "ok", "lucky_number": "seven", "mood": "Calm"}`, kind: resilience.KindSchemaMismatch},
		{name: "unknown enum value", raw: `{"prediction": "ok", "lucky_number": 7, "mood": "Chaotic"}`, kind: resilience.KindSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw, readingContract)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !resilience.IsKind(err, tt.kind) {
				t.Errorf("Expected kind %q, got %q (%v)", tt.kind, resilience.KindOf(err), err)
			}
		})
	}
}

func TestParseNestedObjects(t *testing.T) {
	contract := schema.Contract{
		Name: "plan",
		Fields: []schema.Field{
			{
				Name: "videos", Type: schema.TypeObjectArray, Required: true, MinItems: 2,
				Fields: []schema.Field{
					{Name: "title", Type: schema.TypeString, Required: true},
					{Name: "reason", Type: schema.TypeString, Required: true},
				},
			},
			{Name: "affirmation", Type: schema.TypeString, Default: "You are enough."},
		},
	}

	raw := `{"videos": [
		{"title": "Morning breathwork", "reason": "Starts the day grounded"},
		{"title": "Yoga nidra", "reason": "Deep rest"}
	]}`

	payload, err := Parse(raw, contract)
	if err != nil {
		t.Fatalf("Expected valid nested payload, got %v", err)
	}
	videos := payload["videos"].([]interface{})
	if len(videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(videos))
	}

	// Too few items is a mismatch
	short := `{"videos": [{"title": "One", "reason": "Only one"}]}`
	if _, err := Parse(short, contract); !resilience.IsKind(err, resilience.KindSchemaMismatch) {
		t.Errorf("Expected schema_mismatch for short array, got %v", err)
	}

	// A missing field in any element rejects the whole payload
	partial := `{"videos": [
		{"title": "Morning breathwork", "reason": "Grounded"},
		{"title": "Yoga nidra"}
	]}`
	if _, err := Parse(partial, contract); !resilience.IsKind(err, resilience.KindSchemaMismatch) {
		t.Errorf("Expected schema_mismatch for partial element, got %v", err)
	}
}

func TestParseIdempotent(t *testing.T) {
	raw := `{"prediction": "Steady progress.", "lucky_number": 9, "mood": "reflective"}`

	first, err := Parse(raw, readingContract)
	if err != nil {
		t.Fatalf("Expected valid payload, got %v", err)
	}
	second, err := Parse(raw, readingContract)
	if err != nil {
		t.Fatalf("Expected second parse to succeed, got %v", err)
	}
	if first["mood"] != second["mood"] || first["lucky_number"] != second["lucky_number"] {
		t.Error("Expected identical results for identical input")
	}
}

func TestDecode(t *testing.T) {
	type reading struct {
		Prediction  string `json:"prediction"`
		Color       string `json:"color"`
		LuckyNumber int    `json:"lucky_number"`
		Mood        string `json:"mood"`
	}

	raw := `{"prediction": "Steady progress.", "lucky_number": 9, "mood": "Calm"}`
	value, err := Parsed[reading](raw, readingContract)
	if err != nil {
		t.Fatalf("Expected decode to succeed, got %v", err)
	}

	if value.LuckyNumber != 9 {
		t.Errorf("Expected lucky number 9, got %d", value.LuckyNumber)
	}
	if value.Color != "gold" {
		t.Errorf("Expected defaulted color 'gold', got %q", value.Color)
	}
	if value.Prediction != "Steady progress." {
		t.Errorf("Unexpected prediction: %q", value.Prediction)
	}
}
