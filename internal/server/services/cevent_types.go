package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

// CeventTypeService manages the collection event types of studies. Every
// change names the study, and an event type of another study is not found.
type CeventTypeService struct {
	*store
}

func NewCeventTypeService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *CeventTypeService {
	return &CeventTypeService{store: newStore(repos, logger, conflicts)}
}

func (s *CeventTypeService) Get(ctx context.Context, studyID, id string) (*domain.CollectionEventType, error) {
	cet, err := load[domain.CollectionEventType](ctx, s.records(), models.KindCeventType, id)
	if err != nil {
		return nil, errors.Wrap(err, "CeventTypeService.Get")
	}
	if cet.StudyID != studyID {
		return nil, errors.Wrapf(common.ErrNotFound, "collection event type %s in study %s", id, studyID)
	}
	return cet, nil
}

func (s *CeventTypeService) List(ctx context.Context, studyID string) ([]*domain.CollectionEventType, error) {
	all, err := loadAll[domain.CollectionEventType](ctx, s.records(), models.KindCeventType)
	if err != nil {
		return nil, errors.Wrap(err, "CeventTypeService.List")
	}
	out := []*domain.CollectionEventType{}
	for _, cet := range all {
		if cet.StudyID == studyID {
			out = append(out, cet)
		}
	}
	return out, nil
}

func (s *CeventTypeService) Add(ctx context.Context, studyID, name, description string, recurring bool) (*domain.CollectionEventType, error) {
	if _, err := load[domain.Study](ctx, s.records(), models.KindStudy, studyID); err != nil {
		return nil, errors.Wrap(err, "CeventTypeService.Add")
	}
	if err := s.checkName(ctx, studyID, "", name); err != nil {
		return nil, err
	}
	cet := &domain.CollectionEventType{
		StudyID:         studyID,
		Name:            name,
		Description:     description,
		Recurring:       recurring,
		SpecimenSpecs:   []domain.SpecimenSpec{},
		AnnotationTypes: []domain.AnnotationType{},
	}
	if err := insert(ctx, s.records(), models.KindCeventType, cet); err != nil {
		return nil, errors.Wrap(err, "CeventTypeService.Add")
	}
	return cet, nil
}

func (s *CeventTypeService) UpdateName(ctx context.Context, studyID, id string, expected int64, name string) (*domain.CollectionEventType, error) {
	if err := s.checkName(ctx, studyID, id, name); err != nil {
		return nil, err
	}
	return s.modify(ctx, studyID, id, expected, func(cet *domain.CollectionEventType) error {
		cet.Name = name
		return nil
	})
}

func (s *CeventTypeService) UpdateDescription(ctx context.Context, studyID, id string, expected int64, description string) (*domain.CollectionEventType, error) {
	return s.modify(ctx, studyID, id, expected, func(cet *domain.CollectionEventType) error {
		cet.Description = description
		return nil
	})
}

func (s *CeventTypeService) UpdateRecurring(ctx context.Context, studyID, id string, expected int64, recurring bool) (*domain.CollectionEventType, error) {
	return s.modify(ctx, studyID, id, expected, func(cet *domain.CollectionEventType) error {
		cet.Recurring = recurring
		return nil
	})
}

func (s *CeventTypeService) AddAnnotationType(ctx context.Context, studyID, id string, expected int64, at domain.AnnotationType) (*domain.CollectionEventType, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.modify(ctx, studyID, id, expected, func(cet *domain.CollectionEventType) error {
		types, err := addAnnotationType(cet.AnnotationTypes, at)
		cet.AnnotationTypes = types
		return err
	})
}

func (s *CeventTypeService) UpdateAnnotationType(ctx context.Context, studyID, id string, expected int64, at domain.AnnotationType) (*domain.CollectionEventType, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.modify(ctx, studyID, id, expected, func(cet *domain.CollectionEventType) error {
		types, err := replaceAnnotationType(cet.AnnotationTypes, at)
		cet.AnnotationTypes = types
		return err
	})
}

func (s *CeventTypeService) RemoveAnnotationType(ctx context.Context, id string, expected int64, uniqueID string) (*domain.CollectionEventType, error) {
	cet, err := mutate[domain.CollectionEventType](ctx, s.store, models.KindCeventType, id, expected, func(cet *domain.CollectionEventType) error {
		types, err := removeAnnotationType(cet.AnnotationTypes, uniqueID)
		cet.AnnotationTypes = types
		return err
	})
	return cet, errors.Wrap(err, "CeventTypeService.RemoveAnnotationType")
}

func (s *CeventTypeService) Remove(ctx context.Context, studyID, id string, version int64) error {
	err := remove[domain.CollectionEventType](ctx, s.store, models.KindCeventType, id, version, func(cet *domain.CollectionEventType) error {
		if cet.StudyID != studyID {
			return errors.Wrapf(common.ErrNotFound, "collection event type %s in study %s", id, studyID)
		}
		return nil
	})
	return errors.Wrap(err, "CeventTypeService.Remove")
}

func (s *CeventTypeService) modify(ctx context.Context, studyID, id string, expected int64, change func(*domain.CollectionEventType) error) (*domain.CollectionEventType, error) {
	cet, err := mutate[domain.CollectionEventType](ctx, s.store, models.KindCeventType, id, expected, func(cet *domain.CollectionEventType) error {
		if studyID != "" && cet.StudyID != studyID {
			return ruleError("collection event type %s does not belong to study %s", id, studyID)
		}
		return change(cet)
	})
	return cet, errors.Wrap(err, "CeventTypeService.modify")
}

func (s *CeventTypeService) checkName(ctx context.Context, studyID, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ruleError("collection event type name is required")
	}
	siblings, err := s.List(ctx, studyID)
	if err != nil {
		return err
	}
	for _, cet := range siblings {
		if cet.ID != id && strings.EqualFold(cet.Name, name) {
			return ruleError("name already used: %s", name)
		}
	}
	return nil
}
