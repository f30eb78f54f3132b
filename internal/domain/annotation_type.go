package domain

import "encoding/json"

// AnnotationType describes a custom field attached to a study's
// participants or to a collection event type.
type AnnotationType struct {
	UniqueID      string              `json:"uniqueId"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	ValueType     AnnotationValueType `json:"valueType"`
	MaxValueCount int                 `json:"maxValueCount,omitempty"`
	Options       []string            `json:"options"`
	Required      bool                `json:"required"`
}

var annotationTypeSchema = MustCompileSchema("annotationType", `{
	"type": "object",
	"properties": {
		"uniqueId":      {"type": "string"},
		"name":          {"type": "string"},
		"description":   {"type": ["string", "null"]},
		"valueType":     {"enum": ["text", "number", "dateTime", "singleSelect", "multipleSelect"]},
		"maxValueCount": {"type": ["integer", "null"], "minimum": 0},
		"options":       {"type": "array", "items": {"type": "string"}},
		"required":      {"type": "boolean"}
	},
	"required": ["uniqueId", "name", "valueType", "options", "required"]
}`)

// AnnotationTypes builds annotation types from server payloads.
var AnnotationTypes = &Factory[*AnnotationType]{
	Plural: "annotation types",
	Schema: annotationTypeSchema,
	Checks: []Check{func(raw json.RawMessage) error {
		at, err := decode[AnnotationType](raw)
		if err != nil {
			return err
		}
		return at.Check()
	}},
	Build: decode[AnnotationType],
}

// Check applies the rules the schema cannot express.
func (a AnnotationType) Check() error {
	if a.Name == "" {
		return NewDomainError("annotation type name is required")
	}
	if !a.ValueType.Valid() {
		return NewDomainError("invalid value type: %s", a.ValueType)
	}
	if a.ValueType.IsSelect() && len(a.Options) == 0 {
		return NewDomainError("select annotation type %s has no options", a.Name)
	}
	if a.ValueType == ValueTypeSingleSelect && a.MaxValueCount > 1 {
		return NewDomainError("single select annotation type %s allows more than one value", a.Name)
	}
	return nil
}

// IsOption reports whether value is one of the type's options.
func (a AnnotationType) IsOption(value string) bool {
	for _, o := range a.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Command is the body of an add or update request: every field except
// uniqueId, which travels in the path.
func (a AnnotationType) Command() map[string]any {
	options := a.Options
	if options == nil {
		options = []string{}
	}
	cmd := map[string]any{
		"name":      a.Name,
		"valueType": a.ValueType,
		"options":   options,
		"required":  a.Required,
	}
	if a.Description != "" {
		cmd["description"] = a.Description
	}
	if a.MaxValueCount > 0 {
		cmd["maxValueCount"] = a.MaxValueCount
	}
	return cmd
}
