package domain

import (
	"strconv"
	"strings"
	"time"
)

// ServerAnnotation is the wire form of an annotation value.
type ServerAnnotation struct {
	AnnotationTypeID string   `json:"annotationTypeId"`
	StringValue      string   `json:"stringValue,omitempty"`
	NumberValue      string   `json:"numberValue,omitempty"`
	SelectedValues   []string `json:"selectedValues"`
}

var annotationSchema = MustCompileSchema("annotation", `{
	"type": "object",
	"properties": {
		"annotationTypeId": {"type": "string"},
		"stringValue":      {"type": ["string", "null"]},
		"numberValue":      {"type": ["string", "null"]},
		"selectedValues":   {"type": "array", "items": {"type": "string"}}
	},
	"required": ["annotationTypeId", "selectedValues"]
}`)

// Annotation is a typed annotation value bound to its AnnotationType.
type Annotation interface {
	AnnotationTypeID() string
	AnnotationType() AnnotationType
	HasValue() bool
	// IsValueValid is false only for a required annotation without a value.
	IsValueValid() bool
	DisplayValue() string
	ServerAnnotation() ServerAnnotation
}

type annotationBase struct {
	annotationType AnnotationType
}

func (a annotationBase) AnnotationTypeID() string       { return a.annotationType.UniqueID }
func (a annotationBase) AnnotationType() AnnotationType { return a.annotationType }

func (a annotationBase) valid(hasValue bool) bool {
	return !a.annotationType.Required || hasValue
}

func (a annotationBase) server() ServerAnnotation {
	return ServerAnnotation{AnnotationTypeID: a.annotationType.UniqueID, SelectedValues: []string{}}
}

type TextAnnotation struct {
	annotationBase
	Value string
}

func (a *TextAnnotation) HasValue() bool       { return a.Value != "" }
func (a *TextAnnotation) IsValueValid() bool   { return a.valid(a.HasValue()) }
func (a *TextAnnotation) DisplayValue() string { return a.Value }

func (a *TextAnnotation) ServerAnnotation() ServerAnnotation {
	sa := a.server()
	sa.StringValue = a.Value
	return sa
}

type NumberAnnotation struct {
	annotationBase
	Value *float64
}

func (a *NumberAnnotation) HasValue() bool     { return a.Value != nil }
func (a *NumberAnnotation) IsValueValid() bool { return a.valid(a.HasValue()) }

func (a *NumberAnnotation) DisplayValue() string {
	if a.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*a.Value, 'f', -1, 64)
}

func (a *NumberAnnotation) ServerAnnotation() ServerAnnotation {
	sa := a.server()
	sa.NumberValue = a.DisplayValue()
	return sa
}

type DateTimeAnnotation struct {
	annotationBase
	Value *time.Time
}

func (a *DateTimeAnnotation) HasValue() bool     { return a.Value != nil }
func (a *DateTimeAnnotation) IsValueValid() bool { return a.valid(a.HasValue()) }

func (a *DateTimeAnnotation) DisplayValue() string {
	if a.Value == nil {
		return ""
	}
	return a.Value.Format(time.RFC3339)
}

func (a *DateTimeAnnotation) ServerAnnotation() ServerAnnotation {
	sa := a.server()
	sa.StringValue = a.DisplayValue()
	return sa
}

// SingleSelectAnnotation holds at most one of the type's options. An empty
// Value means nothing is selected.
type SingleSelectAnnotation struct {
	annotationBase
	Value string
}

func (a *SingleSelectAnnotation) HasValue() bool       { return a.Value != "" }
func (a *SingleSelectAnnotation) IsValueValid() bool   { return a.valid(a.HasValue()) }
func (a *SingleSelectAnnotation) DisplayValue() string { return a.Value }

func (a *SingleSelectAnnotation) ServerAnnotation() ServerAnnotation {
	sa := a.server()
	if a.Value != "" {
		sa.SelectedValues = []string{a.Value}
	}
	return sa
}

type MultipleSelectAnnotation struct {
	annotationBase
	Values []string
}

func (a *MultipleSelectAnnotation) HasValue() bool       { return len(a.Values) > 0 }
func (a *MultipleSelectAnnotation) IsValueValid() bool   { return a.valid(a.HasValue()) }
func (a *MultipleSelectAnnotation) DisplayValue() string { return strings.Join(a.Values, ", ") }

func (a *MultipleSelectAnnotation) ServerAnnotation() ServerAnnotation {
	sa := a.server()
	sa.SelectedValues = append(sa.SelectedValues, a.Values...)
	return sa
}

// NewAnnotation builds the typed annotation for at from its server form.
// A nil sa gives an annotation without a value.
func NewAnnotation(at AnnotationType, sa *ServerAnnotation) (Annotation, error) {
	if sa == nil {
		sa = &ServerAnnotation{AnnotationTypeID: at.UniqueID}
	}
	if sa.AnnotationTypeID != at.UniqueID {
		return nil, NewDomainError("annotation type id mismatch: %s", sa.AnnotationTypeID)
	}
	base := annotationBase{annotationType: at}

	switch at.ValueType {
	case ValueTypeText:
		return &TextAnnotation{annotationBase: base, Value: sa.StringValue}, nil

	case ValueTypeNumber:
		a := &NumberAnnotation{annotationBase: base}
		if sa.NumberValue != "" {
			v, err := strconv.ParseFloat(sa.NumberValue, 64)
			if err != nil {
				return nil, NewDomainError("invalid number value: %s", sa.NumberValue)
			}
			a.Value = &v
		}
		return a, nil

	case ValueTypeDateTime:
		a := &DateTimeAnnotation{annotationBase: base}
		if sa.StringValue != "" {
			v, err := time.Parse(time.RFC3339, sa.StringValue)
			if err != nil {
				return nil, NewDomainError("invalid date time value: %s", sa.StringValue)
			}
			a.Value = &v
		}
		return a, nil

	case ValueTypeSingleSelect:
		a := &SingleSelectAnnotation{annotationBase: base}
		switch len(sa.SelectedValues) {
		case 0:
		case 1:
			if !at.IsOption(sa.SelectedValues[0]) {
				return nil, NewDomainError("invalid selected value: %s", sa.SelectedValues[0])
			}
			a.Value = sa.SelectedValues[0]
		default:
			return nil, NewDomainError("invalid value for selected values")
		}
		return a, nil

	case ValueTypeMultipleSelect:
		for _, v := range sa.SelectedValues {
			if !at.IsOption(v) {
				return nil, NewDomainError("invalid selected value: %s", v)
			}
		}
		values := append([]string(nil), sa.SelectedValues...)
		return &MultipleSelectAnnotation{annotationBase: base, Values: values}, nil
	}
	return nil, NewDomainError("invalid value type: %s", at.ValueType)
}
