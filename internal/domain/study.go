package domain

// Study groups participants, collection event types and the annotation
// types recorded for its participants.
type Study struct {
	Entity
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Status          StudyStatus      `json:"status"`
	AnnotationTypes []AnnotationType `json:"annotationTypes"`
}

var studySchema = MustCompileSchema("study", `{
	"type": "object",
	"properties": {
		"id":              {"type": "string"},
		"version":         {"type": "integer", "minimum": 0},
		"timeAdded":       {"type": "string"},
		"timeModified":    {"type": ["string", "null"]},
		"name":            {"type": "string"},
		"description":     {"type": ["string", "null"]},
		"annotationTypes": {"type": ["array", "null"]},
		"status":          {"enum": ["disabled", "enabled", "retired"]}
	},
	"required": ["id", "version", "timeAdded", "name", "status"]
}`)

var Studies = &Factory[*Study]{
	Plural: "studies",
	Schema: studySchema,
	Checks: []Check{annotationTypesCheck},
	Build:  decode[Study],
}

func (s *Study) IsDisabled() bool { return s.Status == StudyDisabled }
func (s *Study) IsEnabled() bool  { return s.Status == StudyEnabled }
func (s *Study) IsRetired() bool  { return s.Status == StudyRetired }

func (s *Study) AnnotationTypeList() []AnnotationType { return s.AnnotationTypes }

// StudyName is an element of the study names listing.
type StudyName struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status StudyStatus `json:"status"`
}

var studyNameSchema = MustCompileSchema("studyName", `{
	"type": "object",
	"properties": {
		"id":     {"type": "string"},
		"name":   {"type": "string"},
		"status": {"type": "string"}
	},
	"required": ["id", "name", "status"]
}`)

var StudyNames = &Factory[*StudyName]{
	Plural: "study names",
	Schema: studyNameSchema,
	Build:  decode[StudyName],
}

// CentreLocationInfo names one location of one centre.
type CentreLocationInfo struct {
	CentreID   string `json:"centreId,omitempty"`
	LocationID string `json:"locationId"`
	Name       string `json:"name"`
}

var locationInfoSchema = MustCompileSchema("locationInfo", `{
	"type": "object",
	"properties": {
		"centreId":   {"type": "string"},
		"locationId": {"type": "string"},
		"name":       {"type": "string"}
	},
	"required": ["locationId", "name"]
}`)

var LocationInfos = &Factory[*CentreLocationInfo]{
	Plural: "locations",
	Schema: locationInfoSchema,
	Build:  decode[CentreLocationInfo],
}

var (
	_ Versioned          = (*Study)(nil)
	_ HasAnnotationTypes = (*Study)(nil)
)
