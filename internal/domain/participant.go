package domain

// Participant is a person enrolled in a study. Annotations holds the wire
// form; the typed annotations are available once the study is attached
// with SetStudy.
type Participant struct {
	Entity
	StudyID     string             `json:"studyId"`
	UniqueID    string             `json:"uniqueId"`
	Annotations []ServerAnnotation `json:"annotations"`

	study       *Study
	annotations []Annotation
}

var participantSchema = MustCompileSchema("participant", `{
	"type": "object",
	"properties": {
		"id":           {"type": "string"},
		"version":      {"type": "integer", "minimum": 0},
		"timeAdded":    {"type": "string"},
		"timeModified": {"type": ["string", "null"]},
		"studyId":      {"type": "string"},
		"uniqueId":     {"type": "string"},
		"annotations":  {"type": "array"}
	},
	"required": ["id", "studyId", "uniqueId", "annotations", "version"]
}`)

var Participants = &Factory[*Participant]{
	Plural: "participants",
	Schema: participantSchema,
	Checks: []Check{annotationsCheck},
	Build:  decode[Participant],
}

// NewParticipant returns an unsaved participant of study with an empty
// annotation for each of the study's annotation types.
func NewParticipant(study *Study, uniqueID string) (*Participant, error) {
	p := &Participant{StudyID: study.ID, UniqueID: uniqueID}
	if err := p.SetStudy(study); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Participant) Study() *Study { return p.study }

// SetStudy attaches study and rebuilds the typed annotations from its
// annotation types.
func (p *Participant) SetStudy(study *Study) error {
	if p.StudyID != "" && p.StudyID != study.ID {
		return NewDomainError("participant %s does not belong to study %s", p.UniqueID, study.ID)
	}
	if err := p.SetAnnotationTypes(study.AnnotationTypes); err != nil {
		return err
	}
	p.StudyID = study.ID
	p.study = study
	return nil
}

func (p *Participant) SetAnnotationTypes(types []AnnotationType) error {
	annotations, err := BuildAnnotations(types, p.Annotations)
	if err != nil {
		return err
	}
	p.annotations = annotations
	return nil
}

func (p *Participant) AnnotationList() []Annotation { return p.annotations }

// Annotation returns the typed annotation for an annotation type.
func (p *Participant) Annotation(annotationTypeID string) (Annotation, bool) {
	for _, a := range p.annotations {
		if a.AnnotationTypeID() == annotationTypeID {
			return a, true
		}
	}
	return nil, false
}

// AddCommand is the body of the add request. It fails when a required
// annotation has no value.
func (p *Participant) AddCommand() (map[string]any, error) {
	annotations := p.Annotations
	if p.annotations != nil {
		if missing, ok := MissingRequired(p.annotations); ok {
			return nil, NewDomainError("required annotation has no value: annotationId: %s", missing.AnnotationTypeID())
		}
		annotations = ServerAnnotations(p.annotations)
	}
	if annotations == nil {
		annotations = []ServerAnnotation{}
	}
	return map[string]any{
		"studyId":     p.StudyID,
		"uniqueId":    p.UniqueID,
		"annotations": annotations,
	}, nil
}

var (
	_ Versioned      = (*Participant)(nil)
	_ HasAnnotations = (*Participant)(nil)
)
