package services

import "github.com/cbsr/biobank/internal/domain"

// addAnnotationType appends at with a fresh unique ID. Names are unique
// within the owning entity.
func addAnnotationType(types []domain.AnnotationType, at domain.AnnotationType) ([]domain.AnnotationType, error) {
	for _, existing := range types {
		if existing.Name == at.Name {
			return types, ruleError("annotation type name already used: %s", at.Name)
		}
	}
	at.UniqueID = newID()
	return append(types, withOptions(at)), nil
}

func replaceAnnotationType(types []domain.AnnotationType, at domain.AnnotationType) ([]domain.AnnotationType, error) {
	idx := -1
	for i, existing := range types {
		if existing.UniqueID == at.UniqueID {
			idx = i
		} else if existing.Name == at.Name {
			return types, ruleError("annotation type name already used: %s", at.Name)
		}
	}
	if idx < 0 {
		return types, ruleError("annotation type with ID not present: %s", at.UniqueID)
	}
	out := append([]domain.AnnotationType(nil), types...)
	out[idx] = withOptions(at)
	return out, nil
}

func removeAnnotationType(types []domain.AnnotationType, uniqueID string) ([]domain.AnnotationType, error) {
	out := make([]domain.AnnotationType, 0, len(types))
	for _, existing := range types {
		if existing.UniqueID != uniqueID {
			out = append(out, existing)
		}
	}
	if len(out) == len(types) {
		return types, ruleError("annotation type with ID not present: %s", uniqueID)
	}
	return out, nil
}

func withOptions(at domain.AnnotationType) domain.AnnotationType {
	if at.Options == nil {
		at.Options = []string{}
	}
	return at
}
