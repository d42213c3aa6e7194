// Package schema describes the JSON shapes expected back from the generative
// model. A Contract is pure data consumed by the response validator; one
// contract exists per feature and is constructed once at process start.
package schema

import (
	"fmt"
	"strings"
)

// FieldType identifies the semantic type of a contract field
type FieldType string

const (
	// TypeString is a non-empty string value
	TypeString FieldType = "string"
	// TypeNumber is a numeric value, optionally range-constrained
	TypeNumber FieldType = "number"
	// TypeEnum is a string restricted to a fixed set of values
	TypeEnum FieldType = "enum"
	// TypeStringArray is an array of non-empty strings
	TypeStringArray FieldType = "string_array"
	// TypeObject is a nested object validated against its own field list
	TypeObject FieldType = "object"
	// TypeObjectArray is an array of nested objects
	TypeObjectArray FieldType = "object_array"
)

// Field describes a single field within a contract
type Field struct {
	Name     string
	Type     FieldType
	Required bool

	// Enum lists the allowed values for TypeEnum fields
	Enum []string

	// Min and Max bound TypeNumber fields when both are set
	Min float64
	Max float64
	// Bounded indicates Min/Max are meaningful
	Bounded bool

	// MinItems is the minimum element count for array fields
	MinItems int

	// Fields holds the nested contract for TypeObject and TypeObjectArray
	Fields []Field

	// Default is substituted for optional fields absent from the payload.
	// Required fields never use it.
	Default interface{}
}

// Contract is the declarative description of an expected top-level JSON object
type Contract struct {
	Name   string
	Fields []Field
}

// Check verifies the contract itself is well formed. Contracts are built at
// startup, so a failure here is a configuration error, not a runtime path.
func (c Contract) Check() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contract name cannot be empty")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("contract %q has no fields", c.Name)
	}
	return checkFields(c.Name, c.Fields)
}

func checkFields(path string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		fieldPath := path + "." + f.Name
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%s: field name cannot be empty", path)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicate field", fieldPath)
		}
		seen[f.Name] = true

		switch f.Type {
		case TypeString, TypeNumber, TypeStringArray:
			// no extra structure
		case TypeEnum:
			if len(f.Enum) == 0 {
				return fmt.Errorf("%s: enum field has no values", fieldPath)
			}
		case TypeObject, TypeObjectArray:
			if len(f.Fields) == 0 {
				return fmt.Errorf("%s: object field has no nested fields", fieldPath)
			}
			if err := checkFields(fieldPath, f.Fields); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown field type %q", fieldPath, f.Type)
		}

		if f.Bounded && f.Type != TypeNumber {
			return fmt.Errorf("%s: range bounds only apply to number fields", fieldPath)
		}
		if f.Bounded && f.Min > f.Max {
			return fmt.Errorf("%s: range min %v exceeds max %v", fieldPath, f.Min, f.Max)
		}
		if f.MinItems > 0 && f.Type != TypeStringArray && f.Type != TypeObjectArray {
			return fmt.Errorf("%s: min items only applies to array fields", fieldPath)
		}
		if !f.Required && f.Default == nil && f.Type != TypeObject && f.Type != TypeObjectArray {
			return fmt.Errorf("%s: optional field needs a default", fieldPath)
		}
	}
	return nil
}

// FieldByName returns the named top-level field, if present
func (c Contract) FieldByName(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
