package services

import (
	"context"
	"net/url"

	"github.com/cbsr/biobank/internal/domain"
)

type CeventTypeService interface {
	Get(ctx context.Context, studyID, id string) (*domain.CollectionEventType, error)
	List(ctx context.Context, studyID string) ([]*domain.CollectionEventType, error)
	Add(ctx context.Context, cet *domain.CollectionEventType) (*domain.CollectionEventType, error)
	UpdateName(ctx context.Context, cet *domain.CollectionEventType, name string) (*domain.CollectionEventType, error)
	UpdateDescription(ctx context.Context, cet *domain.CollectionEventType, description string) (*domain.CollectionEventType, error)
	UpdateRecurring(ctx context.Context, cet *domain.CollectionEventType, recurring bool) (*domain.CollectionEventType, error)
	AddAnnotationType(ctx context.Context, cet *domain.CollectionEventType, at domain.AnnotationType) (*domain.CollectionEventType, error)
	UpdateAnnotationType(ctx context.Context, cet *domain.CollectionEventType, at domain.AnnotationType) (*domain.CollectionEventType, error)
	RemoveAnnotationType(ctx context.Context, cet *domain.CollectionEventType, uniqueID string) (*domain.CollectionEventType, error)
	Remove(ctx context.Context, cet *domain.CollectionEventType) error
}

type ceventTypeService struct {
	api domain.Transport
}

func NewCeventTypeService(api domain.Transport) CeventTypeService {
	return &ceventTypeService{api: api}
}

func (s *ceventTypeService) Get(ctx context.Context, studyID, id string) (*domain.CollectionEventType, error) {
	return domain.Fetch(ctx, s.api, domain.CollectionEventTypes, endpoint("/studies/cetypes", studyID),
		url.Values{"cetId": {id}})
}

func (s *ceventTypeService) List(ctx context.Context, studyID string) ([]*domain.CollectionEventType, error) {
	reply, err := s.api.Get(ctx, endpoint("/studies/cetypes", studyID), nil)
	if err != nil {
		return nil, err
	}
	return domain.CollectionEventTypes.CreateList(reply)
}

func (s *ceventTypeService) Add(ctx context.Context, cet *domain.CollectionEventType) (*domain.CollectionEventType, error) {
	if cet.Name == "" {
		return nil, domain.NewDomainError("collection event type name is required")
	}
	cmd := map[string]any{
		"studyId":   cet.StudyID,
		"name":      cet.Name,
		"recurring": cet.Recurring,
	}
	if cet.Description != "" {
		cmd["description"] = cet.Description
	}
	return domain.Submit(ctx, s.api, domain.CollectionEventTypes, endpoint("/studies/cetypes", cet.StudyID), cmd)
}

func (s *ceventTypeService) UpdateName(ctx context.Context, cet *domain.CollectionEventType, name string) (*domain.CollectionEventType, error) {
	return s.update(ctx, cet, endpoint("/studies/cetypes/name", cet.ID), map[string]any{"name": name})
}

func (s *ceventTypeService) UpdateDescription(ctx context.Context, cet *domain.CollectionEventType, description string) (*domain.CollectionEventType, error) {
	extra := map[string]any{}
	if description != "" {
		extra["description"] = description
	}
	return s.update(ctx, cet, endpoint("/studies/cetypes/description", cet.ID), extra)
}

func (s *ceventTypeService) UpdateRecurring(ctx context.Context, cet *domain.CollectionEventType, recurring bool) (*domain.CollectionEventType, error) {
	return s.update(ctx, cet, endpoint("/studies/cetypes/recurring", cet.ID), map[string]any{"recurring": recurring})
}

func (s *ceventTypeService) AddAnnotationType(ctx context.Context, cet *domain.CollectionEventType, at domain.AnnotationType) (*domain.CollectionEventType, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.update(ctx, cet, endpoint("/studies/cetypes/annottype", cet.ID), at.Command())
}

func (s *ceventTypeService) UpdateAnnotationType(ctx context.Context, cet *domain.CollectionEventType, at domain.AnnotationType) (*domain.CollectionEventType, error) {
	if _, ok := domain.FindAnnotationType(cet, at.UniqueID); !ok {
		return nil, domain.NewDomainError("annotation type with ID not present: %s", at.UniqueID)
	}
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.update(ctx, cet, endpoint("/studies/cetypes/annottype", cet.ID, at.UniqueID), at.Command())
}

func (s *ceventTypeService) RemoveAnnotationType(ctx context.Context, cet *domain.CollectionEventType, uniqueID string) (*domain.CollectionEventType, error) {
	if _, ok := domain.FindAnnotationType(cet, uniqueID); !ok {
		return nil, domain.NewDomainError("annotation type with ID not present: %s", uniqueID)
	}
	return domain.Remove(ctx, s.api, domain.CollectionEventTypes,
		endpoint("/studies/cetypes/annottype", cet.ID, cet.Version, uniqueID))
}

// Remove deletes the collection event type. The reply carries no entity.
func (s *ceventTypeService) Remove(ctx context.Context, cet *domain.CollectionEventType) error {
	if cet.IsNew() {
		return domain.NewDomainError("entity has not been added yet")
	}
	_, err := s.api.Delete(ctx, endpoint("/studies/cetypes", cet.StudyID, cet.ID, cet.Version))
	return err
}

// update adds the studyId every collection event type command carries.
func (s *ceventTypeService) update(ctx context.Context, cet *domain.CollectionEventType, path string, extra map[string]any) (*domain.CollectionEventType, error) {
	if extra == nil {
		extra = map[string]any{}
	}
	extra["studyId"] = cet.StudyID
	return domain.Update(ctx, s.api, domain.CollectionEventTypes, cet, path, extra)
}
