package domain

import (
	"encoding/json"
	"errors"
)

// HasAnnotationTypes is implemented by entities that define annotation
// types: studies and collection event types.
type HasAnnotationTypes interface {
	AnnotationTypeList() []AnnotationType
}

// HasAnnotations is implemented by entities that carry annotation values.
type HasAnnotations interface {
	AnnotationList() []Annotation
	// SetAnnotationTypes rebuilds the typed annotations from the entity's
	// server annotations.
	SetAnnotationTypes(types []AnnotationType) error
}

// FindAnnotationType looks up an annotation type by its unique ID.
func FindAnnotationType(h HasAnnotationTypes, uniqueID string) (AnnotationType, bool) {
	for _, at := range h.AnnotationTypeList() {
		if at.UniqueID == uniqueID {
			return at, true
		}
	}
	return AnnotationType{}, false
}

// ValidAnnotationTypes reports whether raw is absent or an array whose every
// element is a valid annotation type.
func ValidAnnotationTypes(raw json.RawMessage) bool {
	return validArray(raw, annotationTypeSchema, func(item json.RawMessage) bool {
		at, err := decode[AnnotationType](item)
		return err == nil && at.Check() == nil
	})
}

// ValidAnnotations reports whether raw is absent or an array of valid server
// annotations.
func ValidAnnotations(raw json.RawMessage) bool {
	return validArray(raw, annotationSchema, nil)
}

func validArray(raw json.RawMessage, schema *Schema, extra func(json.RawMessage) bool) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return false
	}
	for _, item := range items {
		if err := schema.Validate(item); err != nil {
			return false
		}
		if extra != nil && !extra(item) {
			return false
		}
	}
	return true
}

var (
	errBadAnnotationTypes = errors.New("bad annotation types")
	errBadAnnotations     = errors.New("bad annotations")
)

func annotationTypesCheck(raw json.RawMessage) error {
	v, _ := field(raw, "annotationTypes")
	if !ValidAnnotationTypes(v) {
		return errBadAnnotationTypes
	}
	return nil
}

func annotationsCheck(raw json.RawMessage) error {
	v, _ := field(raw, "annotations")
	if !ValidAnnotations(v) {
		return errBadAnnotations
	}
	return nil
}

// BuildAnnotations pairs every annotation type with its server annotation,
// creating empty annotations for types that have no value yet.
func BuildAnnotations(types []AnnotationType, server []ServerAnnotation) ([]Annotation, error) {
	byType := make(map[string]*ServerAnnotation, len(server))
	for i := range server {
		byType[server[i].AnnotationTypeID] = &server[i]
	}
	out := make([]Annotation, 0, len(types))
	for _, at := range types {
		a, err := NewAnnotation(at, byType[at.UniqueID])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// MissingRequired returns the first required annotation without a value.
func MissingRequired(annotations []Annotation) (Annotation, bool) {
	for _, a := range annotations {
		if !a.IsValueValid() {
			return a, true
		}
	}
	return nil, false
}

// ServerAnnotations converts typed annotations to their wire form.
func ServerAnnotations(annotations []Annotation) []ServerAnnotation {
	out := make([]ServerAnnotation, 0, len(annotations))
	for _, a := range annotations {
		out = append(out, a.ServerAnnotation())
	}
	return out
}
