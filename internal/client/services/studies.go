package services

import (
	"context"

	"github.com/cbsr/biobank/internal/domain"
)

type StudyService interface {
	Get(ctx context.Context, id string) (*domain.Study, error)
	List(ctx context.Context, opts domain.ListOptions) (*domain.PagedResult[*domain.Study], error)
	Names(ctx context.Context, opts domain.ListOptions) ([]*domain.StudyName, error)
	Add(ctx context.Context, name, description string) (*domain.Study, error)
	UpdateName(ctx context.Context, s *domain.Study, name string) (*domain.Study, error)
	UpdateDescription(ctx context.Context, s *domain.Study, description string) (*domain.Study, error)
	AddAnnotationType(ctx context.Context, s *domain.Study, at domain.AnnotationType) (*domain.Study, error)
	UpdateAnnotationType(ctx context.Context, s *domain.Study, at domain.AnnotationType) (*domain.Study, error)
	RemoveAnnotationType(ctx context.Context, s *domain.Study, uniqueID string) (*domain.Study, error)
	Disable(ctx context.Context, s *domain.Study) (*domain.Study, error)
	Enable(ctx context.Context, s *domain.Study) (*domain.Study, error)
	Retire(ctx context.Context, s *domain.Study) (*domain.Study, error)
	Unretire(ctx context.Context, s *domain.Study) (*domain.Study, error)
	AllLocations(ctx context.Context, id string) ([]*domain.CentreLocationInfo, error)
}

type studyService struct {
	api domain.Transport
}

func NewStudyService(api domain.Transport) StudyService {
	return &studyService{api: api}
}

func (s *studyService) Get(ctx context.Context, id string) (*domain.Study, error) {
	return domain.Fetch(ctx, s.api, domain.Studies, endpoint("/studies", id), nil)
}

func (s *studyService) List(ctx context.Context, opts domain.ListOptions) (*domain.PagedResult[*domain.Study], error) {
	params, err := opts.Params()
	if err != nil {
		return nil, err
	}
	reply, err := s.api.Get(ctx, "/studies", params)
	if err != nil {
		return nil, err
	}
	return domain.Studies.CreatePaged(reply)
}

func (s *studyService) Names(ctx context.Context, opts domain.ListOptions) ([]*domain.StudyName, error) {
	params, err := opts.Params()
	if err != nil {
		return nil, err
	}
	reply, err := s.api.Get(ctx, "/studies/names", params)
	if err != nil {
		return nil, err
	}
	return domain.StudyNames.CreateList(reply)
}

func (s *studyService) Add(ctx context.Context, name, description string) (*domain.Study, error) {
	if name == "" {
		return nil, domain.NewDomainError("study name is required")
	}
	cmd := map[string]any{"name": name}
	if description != "" {
		cmd["description"] = description
	}
	return domain.Submit(ctx, s.api, domain.Studies, "/studies", cmd)
}

func (s *studyService) UpdateName(ctx context.Context, st *domain.Study, name string) (*domain.Study, error) {
	return domain.Update(ctx, s.api, domain.Studies, st, endpoint("/studies/name", st.ID), map[string]any{"name": name})
}

// UpdateDescription clears the description when description is empty.
func (s *studyService) UpdateDescription(ctx context.Context, st *domain.Study, description string) (*domain.Study, error) {
	extra := map[string]any{}
	if description != "" {
		extra["description"] = description
	}
	return domain.Update(ctx, s.api, domain.Studies, st, endpoint("/studies/description", st.ID), extra)
}

func (s *studyService) AddAnnotationType(ctx context.Context, st *domain.Study, at domain.AnnotationType) (*domain.Study, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return domain.Update(ctx, s.api, domain.Studies, st, endpoint("/studies/pannottype", st.ID), at.Command())
}

func (s *studyService) UpdateAnnotationType(ctx context.Context, st *domain.Study, at domain.AnnotationType) (*domain.Study, error) {
	if _, ok := domain.FindAnnotationType(st, at.UniqueID); !ok {
		return nil, domain.NewDomainError("annotation type with ID not present: %s", at.UniqueID)
	}
	if err := at.Check(); err != nil {
		return nil, err
	}
	return domain.Update(ctx, s.api, domain.Studies, st, endpoint("/studies/pannottype", st.ID, at.UniqueID), at.Command())
}

func (s *studyService) RemoveAnnotationType(ctx context.Context, st *domain.Study, uniqueID string) (*domain.Study, error) {
	if _, ok := domain.FindAnnotationType(st, uniqueID); !ok {
		return nil, domain.NewDomainError("annotation type with ID not present: %s", uniqueID)
	}
	return domain.Remove(ctx, s.api, domain.Studies, endpoint("/studies/pannottype", st.ID, st.Version, uniqueID))
}

func (s *studyService) Disable(ctx context.Context, st *domain.Study) (*domain.Study, error) {
	if st.IsDisabled() {
		return nil, domain.NewDomainError("already disabled")
	}
	return s.changeState(ctx, st, "disable")
}

func (s *studyService) Enable(ctx context.Context, st *domain.Study) (*domain.Study, error) {
	if st.IsEnabled() {
		return nil, domain.NewDomainError("already enabled")
	}
	return s.changeState(ctx, st, "enable")
}

func (s *studyService) Retire(ctx context.Context, st *domain.Study) (*domain.Study, error) {
	if st.IsRetired() {
		return nil, domain.NewDomainError("already retired")
	}
	return s.changeState(ctx, st, "retire")
}

func (s *studyService) Unretire(ctx context.Context, st *domain.Study) (*domain.Study, error) {
	if !st.IsRetired() {
		return nil, domain.NewDomainError("not retired")
	}
	return s.changeState(ctx, st, "unretire")
}

func (s *studyService) changeState(ctx context.Context, st *domain.Study, action string) (*domain.Study, error) {
	return domain.Update(ctx, s.api, domain.Studies, st, endpoint("/studies/"+action, st.ID), nil)
}

// AllLocations lists the centre locations that participate in the study.
func (s *studyService) AllLocations(ctx context.Context, id string) ([]*domain.CentreLocationInfo, error) {
	reply, err := s.api.Get(ctx, endpoint("/studies/centres", id), nil)
	if err != nil {
		return nil, err
	}
	return domain.LocationInfos.CreateList(reply)
}
