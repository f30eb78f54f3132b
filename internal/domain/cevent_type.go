package domain

// SpecimenSpec describes a specimen collected at a collection event.
type SpecimenSpec struct {
	UniqueID     string  `json:"uniqueId"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Units        string  `json:"units"`
	SpecimenType string  `json:"specimenType"`
	MaxCount     int     `json:"maxCount"`
	Amount       float64 `json:"amount"`
}

// CollectionEventType defines one kind of visit for a study's participants
// and the annotation types recorded at it.
type CollectionEventType struct {
	Entity
	StudyID         string           `json:"studyId"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Recurring       bool             `json:"recurring"`
	SpecimenSpecs   []SpecimenSpec   `json:"specimenSpecs"`
	AnnotationTypes []AnnotationType `json:"annotationTypes"`
}

var ceventTypeSchema = MustCompileSchema("collectionEventType", `{
	"type": "object",
	"properties": {
		"id":              {"type": "string"},
		"version":         {"type": "integer", "minimum": 0},
		"timeAdded":       {"type": "string"},
		"timeModified":    {"type": ["string", "null"]},
		"studyId":         {"type": "string"},
		"name":            {"type": "string"},
		"description":     {"type": ["string", "null"]},
		"recurring":       {"type": "boolean"},
		"specimenSpecs":   {"type": ["array", "null"]},
		"annotationTypes": {"type": ["array", "null"]}
	},
	"required": ["id", "version", "timeAdded", "studyId", "name", "recurring"]
}`)

var CollectionEventTypes = &Factory[*CollectionEventType]{
	Plural: "collection event types",
	Schema: ceventTypeSchema,
	Checks: []Check{annotationTypesCheck},
	Build:  decode[CollectionEventType],
}

func (c *CollectionEventType) AnnotationTypeList() []AnnotationType { return c.AnnotationTypes }

var (
	_ Versioned          = (*CollectionEventType)(nil)
	_ HasAnnotationTypes = (*CollectionEventType)(nil)
)
