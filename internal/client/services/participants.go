package services

import (
	"context"

	"github.com/cbsr/biobank/internal/domain"
)

// ParticipantService returns participants with their study attached, so
// their typed annotations are always available.
type ParticipantService interface {
	Get(ctx context.Context, study *domain.Study, id string) (*domain.Participant, error)
	GetByUniqueID(ctx context.Context, study *domain.Study, uniqueID string) (*domain.Participant, error)
	Add(ctx context.Context, p *domain.Participant) (*domain.Participant, error)
	UpdateUniqueID(ctx context.Context, p *domain.Participant, uniqueID string) (*domain.Participant, error)
	AddAnnotation(ctx context.Context, p *domain.Participant, a domain.Annotation) (*domain.Participant, error)
	RemoveAnnotation(ctx context.Context, p *domain.Participant, annotationTypeID string) (*domain.Participant, error)
}

type participantService struct {
	api domain.Transport
}

func NewParticipantService(api domain.Transport) ParticipantService {
	return &participantService{api: api}
}

func (s *participantService) Get(ctx context.Context, study *domain.Study, id string) (*domain.Participant, error) {
	p, err := domain.Fetch(ctx, s.api, domain.Participants, endpoint("/participants", study.ID, id), nil)
	return withStudy(p, study, err)
}

func (s *participantService) GetByUniqueID(ctx context.Context, study *domain.Study, uniqueID string) (*domain.Participant, error) {
	p, err := domain.Fetch(ctx, s.api, domain.Participants, endpoint("/participants/uniqueId", study.ID, uniqueID), nil)
	return withStudy(p, study, err)
}

func (s *participantService) Add(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	cmd, err := p.AddCommand()
	if err != nil {
		return nil, err
	}
	added, err := domain.Submit(ctx, s.api, domain.Participants, endpoint("/participants", p.StudyID), cmd)
	return withStudy(added, p.Study(), err)
}

func (s *participantService) UpdateUniqueID(ctx context.Context, p *domain.Participant, uniqueID string) (*domain.Participant, error) {
	if uniqueID == "" {
		return nil, domain.NewDomainError("unique ID is required")
	}
	updated, err := domain.Update(ctx, s.api, domain.Participants, p, endpoint("/participants/uniqueId", p.ID),
		map[string]any{"uniqueId": uniqueID})
	return withStudy(updated, p.Study(), err)
}

func (s *participantService) AddAnnotation(ctx context.Context, p *domain.Participant, a domain.Annotation) (*domain.Participant, error) {
	if !a.IsValueValid() {
		return nil, domain.NewDomainError("required annotation has no value: annotationId: %s", a.AnnotationTypeID())
	}
	extra, err := toMap(a.ServerAnnotation())
	if err != nil {
		return nil, err
	}
	updated, err := domain.Update(ctx, s.api, domain.Participants, p, endpoint("/participants/annot", p.ID), extra)
	return withStudy(updated, p.Study(), err)
}

func (s *participantService) RemoveAnnotation(ctx context.Context, p *domain.Participant, annotationTypeID string) (*domain.Participant, error) {
	found := false
	for _, sa := range p.Annotations {
		if sa.AnnotationTypeID == annotationTypeID {
			found = true
			break
		}
	}
	if !found {
		return nil, domain.NewDomainError("annotation with annotation type ID not present: %s", annotationTypeID)
	}
	updated, err := domain.Remove(ctx, s.api, domain.Participants,
		endpoint("/participants/annot", p.ID, p.Version, annotationTypeID))
	return withStudy(updated, p.Study(), err)
}

// withStudy attaches study to a freshly built participant.
func withStudy(p *domain.Participant, study *domain.Study, err error) (*domain.Participant, error) {
	if err != nil {
		return nil, err
	}
	if study != nil {
		if err := p.SetStudy(study); err != nil {
			return nil, err
		}
	}
	return p, nil
}
