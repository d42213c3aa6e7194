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

// Package validate parses model-authored JSON and checks it against a schema
// contract. Validation is all-or-nothing per top-level object: a payload
// missing any required field is rejected wholesale, because partially filled
// creative content is worse than a clean fallback.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/your-org/aura-wellness-engine/internal/resilience"
	"github.com/your-org/aura-wellness-engine/internal/schema"
)

// fencedBlockPattern matches a Markdown code fence, with or without a
// language identifier, capturing the wrapped payload
var fencedBlockPattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\n?(.*?)```")

// StripFences removes Markdown code-fence wrappers from model output. When
// the model surrounds the fence with prose, the first fenced block wins.
func StripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if match := fencedBlockPattern.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1])
	}
	return trimmed
}

// Parse strips formatting artifacts, parses the JSON and walks the contract.
// On success it returns the fully defaulted payload map. Failures are
// classified malformed_json (syntax) or schema_mismatch (shape).
func Parse(raw string, c schema.Contract) (map[string]interface{}, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, resilience.NewMalformedJSONError("empty model response", nil)
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, resilience.NewMalformedJSONError("response is not valid JSON", err)
	}

	obj, ok := payload.(map[string]interface{})
	if !ok {
		return nil, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: top-level value is not an object", c.Name))
	}

	return validateObject(obj, c.Fields, c.Name)
}

// Decode maps a validated payload onto the feature's typed struct. Field
// names follow the struct's json tags.
func Decode[T any](payload map[string]interface{}) (T, error) {
	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return out, resilience.NewSchemaMismatchError(
			fmt.Sprintf("validated payload does not fit target type: %v", err))
	}
	return out, nil
}

// Parsed runs Parse and Decode in one step, producing the typed value the
// orchestrator hands to the caller
func Parsed[T any](raw string, c schema.Contract) (T, error) {
	var zero T
	payload, err := Parse(raw, c)
	if err != nil {
		return zero, err
	}
	return Decode[T](payload)
}

func validateObject(obj map[string]interface{}, fields []schema.Field, path string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))

	for _, f := range fields {
		fieldPath := path + "." + f.Name
		value, present := obj[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, resilience.NewSchemaMismatchError(
					fmt.Sprintf("%s: missing required field", fieldPath))
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		validated, err := validateValue(value, f, fieldPath)
		if err != nil {
			return nil, err
		}
		out[f.Name] = validated
	}

	return out, nil
}

func validateValue(value interface{}, f schema.Field, path string) (interface{}, error) {
	switch f.Type {
	case schema.TypeString:
		return validateString(value, path)

	case schema.TypeNumber:
		return validateNumber(value, f, path)

	case schema.TypeEnum:
		return validateEnum(value, f, path)

	case schema.TypeStringArray:
		return validateStringArray(value, f, path)

	case schema.TypeObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, resilience.NewSchemaMismatchError(
				fmt.Sprintf("%s: expected object, got %T", path, value))
		}
		return validateObject(obj, f.Fields, path)

	case schema.TypeObjectArray:
		items, ok := value.([]interface{})
		if !ok {
			return nil, resilience.NewSchemaMismatchError(
				fmt.Sprintf("%s: expected array, got %T", path, value))
		}
		if len(items) < f.MinItems {
			return nil, resilience.NewSchemaMismatchError(
				fmt.Sprintf("%s: expected at least %d items, got %d", path, f.MinItems, len(items)))
		}
		out := make([]interface{}, 0, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, resilience.NewSchemaMismatchError(
					fmt.Sprintf("%s[%d]: expected object, got %T", path, i, item))
			}
			validated, err := validateObject(obj, f.Fields, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, validated)
		}
		return out, nil

	default:
		return nil, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: unknown field type %q", path, f.Type))
	}
}

func validateString(value interface{}, path string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: expected string, got %T", path, value))
	}
	if strings.TrimSpace(s) == "" {
		return "", resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: string is empty", path))
	}
	return s, nil
}

// validateNumber accepts JSON numbers and unambiguously numeric strings
// (the model occasionally writes "7" for a lucky number). Anything else in
// a numeric slot is a schema mismatch.
func validateNumber(value interface{}, f schema.Field, path string) (float64, error) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, resilience.NewSchemaMismatchError(
				fmt.Sprintf("%s: %q is not numeric", path, v))
		}
		n = parsed
	default:
		return 0, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: expected number, got %T", path, value))
	}

	if f.Bounded && (n < f.Min || n > f.Max) {
		return 0, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: %v outside range [%v, %v]", path, n, f.Min, f.Max))
	}
	return n, nil
}

// validateEnum matches case-insensitively and returns the contract's
// canonical casing
func validateEnum(value interface{}, f schema.Field, path string) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: expected string, got %T", path, value))
	}
	for _, allowed := range f.Enum {
		if strings.EqualFold(strings.TrimSpace(s), allowed) {
			return allowed, nil
		}
	}
	return "", resilience.NewSchemaMismatchError(
		fmt.Sprintf("%s: %q is not one of %s", path, s, strings.Join(f.Enum, ", ")))
}

func validateStringArray(value interface{}, f schema.Field, path string) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: expected array, got %T", path, value))
	}
	if len(items) < f.MinItems {
		return nil, resilience.NewSchemaMismatchError(
			fmt.Sprintf("%s: expected at least %d items, got %d", path, f.MinItems, len(items)))
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := validateString(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
