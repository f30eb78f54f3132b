package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema for one payload shape.
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// MustCompileSchema compiles src. It panics on an invalid schema, so it is
// only used for package-level schema constants.
func MustCompileSchema(name, src string) *Schema {
	return &Schema{
		name:   name,
		schema: jsonschema.MustCompileString("mem:///"+name+".json", src),
	}
}

func (s *Schema) Name() string { return s.name }

// Validate checks a raw JSON document.
func (s *Schema) Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("malformed %s: %w", s.name, err)
	}
	return s.schema.Validate(v)
}

// ValidateValue checks an already decoded document, as produced by
// encoding/json (numbers as json.Number or float64).
func (s *Schema) ValidateValue(v any) error {
	return s.schema.Validate(v)
}
