package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

// ParticipantService manages the participants of studies. Annotation values
// are checked against the study's annotation types.
type ParticipantService struct {
	*store
}

func NewParticipantService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *ParticipantService {
	return &ParticipantService{store: newStore(repos, logger, conflicts)}
}

func (s *ParticipantService) Get(ctx context.Context, studyID, id string) (*domain.Participant, error) {
	p, err := load[domain.Participant](ctx, s.records(), models.KindParticipant, id)
	if err != nil {
		return nil, errors.Wrap(err, "ParticipantService.Get")
	}
	if p.StudyID != studyID {
		return nil, errors.Wrapf(common.ErrNotFound, "participant %s in study %s", id, studyID)
	}
	return p, nil
}

func (s *ParticipantService) GetByUniqueID(ctx context.Context, studyID, uniqueID string) (*domain.Participant, error) {
	p, err := s.findByUniqueID(ctx, studyID, uniqueID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.Wrapf(common.ErrNotFound, "participant with unique ID %s", uniqueID)
	}
	return p, nil
}

func (s *ParticipantService) Add(ctx context.Context, studyID, uniqueID string, annotations []domain.ServerAnnotation) (*domain.Participant, error) {
	study, err := load[domain.Study](ctx, s.records(), models.KindStudy, studyID)
	if err != nil {
		return nil, errors.Wrap(err, "ParticipantService.Add")
	}
	if err := s.checkUniqueID(ctx, studyID, "", uniqueID); err != nil {
		return nil, err
	}
	annotations, err = checkAnnotations(study.AnnotationTypes, annotations)
	if err != nil {
		return nil, err
	}
	p := &domain.Participant{StudyID: studyID, UniqueID: uniqueID, Annotations: annotations}
	if err := insert(ctx, s.records(), models.KindParticipant, p); err != nil {
		return nil, errors.Wrap(err, "ParticipantService.Add")
	}
	return p, nil
}

func (s *ParticipantService) UpdateUniqueID(ctx context.Context, id string, expected int64, uniqueID string) (*domain.Participant, error) {
	current, err := load[domain.Participant](ctx, s.records(), models.KindParticipant, id)
	if err != nil {
		return nil, errors.Wrap(err, "ParticipantService.UpdateUniqueID")
	}
	if err := s.checkUniqueID(ctx, current.StudyID, id, uniqueID); err != nil {
		return nil, err
	}
	p, err := mutate[domain.Participant](ctx, s.store, models.KindParticipant, id, expected, func(p *domain.Participant) error {
		p.UniqueID = uniqueID
		return nil
	})
	return p, errors.Wrap(err, "ParticipantService.UpdateUniqueID")
}

// AddAnnotation sets the value for one annotation type, replacing a
// previous value.
func (s *ParticipantService) AddAnnotation(ctx context.Context, id string, expected int64, sa domain.ServerAnnotation) (*domain.Participant, error) {
	p, err := mutate[domain.Participant](ctx, s.store, models.KindParticipant, id, expected, func(p *domain.Participant) error {
		at, err := s.annotationType(ctx, p.StudyID, sa.AnnotationTypeID)
		if err != nil {
			return err
		}
		checked, err := checkAnnotation(at, sa)
		if err != nil {
			return err
		}
		out := make([]domain.ServerAnnotation, 0, len(p.Annotations)+1)
		for _, existing := range p.Annotations {
			if existing.AnnotationTypeID != sa.AnnotationTypeID {
				out = append(out, existing)
			}
		}
		p.Annotations = append(out, checked)
		return nil
	})
	return p, errors.Wrap(err, "ParticipantService.AddAnnotation")
}

func (s *ParticipantService) RemoveAnnotation(ctx context.Context, id string, expected int64, annotationTypeID string) (*domain.Participant, error) {
	p, err := mutate[domain.Participant](ctx, s.store, models.KindParticipant, id, expected, func(p *domain.Participant) error {
		if at, err := s.annotationType(ctx, p.StudyID, annotationTypeID); err == nil && at.Required {
			return ruleError("annotation is required: %s", annotationTypeID)
		}
		out := make([]domain.ServerAnnotation, 0, len(p.Annotations))
		for _, existing := range p.Annotations {
			if existing.AnnotationTypeID != annotationTypeID {
				out = append(out, existing)
			}
		}
		if len(out) == len(p.Annotations) {
			return ruleError("annotation with annotation type ID not present: %s", annotationTypeID)
		}
		p.Annotations = out
		return nil
	})
	return p, errors.Wrap(err, "ParticipantService.RemoveAnnotation")
}

func (s *ParticipantService) annotationType(ctx context.Context, studyID, annotationTypeID string) (domain.AnnotationType, error) {
	study, err := load[domain.Study](ctx, s.records(), models.KindStudy, studyID)
	if err != nil {
		return domain.AnnotationType{}, err
	}
	at, ok := domain.FindAnnotationType(study, annotationTypeID)
	if !ok {
		return at, ruleError("annotation type with ID not present: %s", annotationTypeID)
	}
	return at, nil
}

func (s *ParticipantService) findByUniqueID(ctx context.Context, studyID, uniqueID string) (*domain.Participant, error) {
	all, err := loadAll[domain.Participant](ctx, s.records(), models.KindParticipant)
	if err != nil {
		return nil, errors.Wrap(err, "ParticipantService.findByUniqueID")
	}
	for _, p := range all {
		if p.StudyID == studyID && p.UniqueID == uniqueID {
			return p, nil
		}
	}
	return nil, nil
}

func (s *ParticipantService) checkUniqueID(ctx context.Context, studyID, id, uniqueID string) error {
	if uniqueID == "" {
		return ruleError("unique ID is required")
	}
	existing, err := s.findByUniqueID(ctx, studyID, uniqueID)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != id {
		return ruleError("participant with unique ID already exists: %s", uniqueID)
	}
	return nil
}

// checkAnnotations validates a full set of annotations against types.
func checkAnnotations(types []domain.AnnotationType, annotations []domain.ServerAnnotation) ([]domain.ServerAnnotation, error) {
	byType := make(map[string]domain.AnnotationType, len(types))
	for _, at := range types {
		byType[at.UniqueID] = at
	}
	seen := make(map[string]bool, len(annotations))
	out := make([]domain.ServerAnnotation, 0, len(annotations))
	for _, sa := range annotations {
		at, ok := byType[sa.AnnotationTypeID]
		if !ok {
			return nil, ruleError("annotation type with ID not present: %s", sa.AnnotationTypeID)
		}
		checked, err := checkAnnotation(at, sa)
		if err != nil {
			return nil, err
		}
		seen[sa.AnnotationTypeID] = true
		out = append(out, checked)
	}
	for _, at := range types {
		if at.Required && !seen[at.UniqueID] {
			return nil, ruleError("required annotation has no value: annotationId: %s", at.UniqueID)
		}
	}
	return out, nil
}

// checkAnnotation builds the typed annotation to apply the value rules of
// its type.
func checkAnnotation(at domain.AnnotationType, sa domain.ServerAnnotation) (domain.ServerAnnotation, error) {
	if sa.SelectedValues == nil {
		sa.SelectedValues = []string{}
	}
	a, err := domain.NewAnnotation(at, &sa)
	if err != nil {
		return sa, err
	}
	if !a.IsValueValid() {
		return sa, ruleError("required annotation has no value: annotationId: %s", at.UniqueID)
	}
	return sa, nil
}
