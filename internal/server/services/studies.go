package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

// StudyService manages studies and their participant annotation types.
type StudyService struct {
	*store
}

func NewStudyService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *StudyService {
	return &StudyService{store: newStore(repos, logger, conflicts)}
}

func (s *StudyService) Get(ctx context.Context, id string) (*domain.Study, error) {
	st, err := load[domain.Study](ctx, s.records(), models.KindStudy, id)
	return st, errors.Wrap(err, "StudyService.Get")
}

func (s *StudyService) List(ctx context.Context, q ListQuery) (*domain.PagedResult[*domain.Study], error) {
	q, err := q.normalize("name", "status")
	if err != nil {
		return nil, err
	}
	all, err := loadAll[domain.Study](ctx, s.records(), models.KindStudy)
	if err != nil {
		return nil, errors.Wrap(err, "StudyService.List")
	}
	matched := make([]*domain.Study, 0, len(all))
	for _, st := range all {
		if q.matches(st.Name) && q.statusMatches(st.Status.String()) {
			matched = append(matched, st)
		}
	}
	sortBy(matched, q, func(st *domain.Study) string {
		if q.Sort == "status" {
			return st.Status.String()
		}
		return st.Name
	})
	return paginate(matched, q), nil
}

// Names lists the ID, name and status of studies, filtered like List but
// not paged.
func (s *StudyService) Names(ctx context.Context, q ListQuery) ([]*domain.StudyName, error) {
	q.PageSize = maxPageSize
	q, err := q.normalize("name", "status")
	if err != nil {
		return nil, err
	}
	all, err := loadAll[domain.Study](ctx, s.records(), models.KindStudy)
	if err != nil {
		return nil, errors.Wrap(err, "StudyService.Names")
	}
	out := make([]*domain.StudyName, 0, len(all))
	for _, st := range all {
		if q.matches(st.Name) && q.statusMatches(st.Status.String()) {
			out = append(out, &domain.StudyName{ID: st.ID, Name: st.Name, Status: st.Status})
		}
	}
	sortBy(out, q, func(n *domain.StudyName) string { return n.Name })
	return out, nil
}

func (s *StudyService) Add(ctx context.Context, name, description string) (*domain.Study, error) {
	if err := s.checkName(ctx, "", name); err != nil {
		return nil, err
	}
	st := &domain.Study{
		Name:            name,
		Description:     description,
		Status:          domain.StudyDisabled,
		AnnotationTypes: []domain.AnnotationType{},
	}
	if err := insert(ctx, s.records(), models.KindStudy, st); err != nil {
		return nil, errors.Wrap(err, "StudyService.Add")
	}
	return st, nil
}

func (s *StudyService) UpdateName(ctx context.Context, id string, expected int64, name string) (*domain.Study, error) {
	if err := s.checkName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(st *domain.Study) error {
		st.Name = name
		return nil
	})
}

func (s *StudyService) UpdateDescription(ctx context.Context, id string, expected int64, description string) (*domain.Study, error) {
	return s.modify(ctx, id, expected, func(st *domain.Study) error {
		st.Description = description
		return nil
	})
}

func (s *StudyService) AddAnnotationType(ctx context.Context, id string, expected int64, at domain.AnnotationType) (*domain.Study, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(st *domain.Study) error {
		types, err := addAnnotationType(st.AnnotationTypes, at)
		st.AnnotationTypes = types
		return err
	})
}

func (s *StudyService) UpdateAnnotationType(ctx context.Context, id string, expected int64, at domain.AnnotationType) (*domain.Study, error) {
	if err := at.Check(); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(st *domain.Study) error {
		types, err := replaceAnnotationType(st.AnnotationTypes, at)
		st.AnnotationTypes = types
		return err
	})
}

func (s *StudyService) RemoveAnnotationType(ctx context.Context, id string, expected int64, uniqueID string) (*domain.Study, error) {
	return s.modify(ctx, id, expected, func(st *domain.Study) error {
		types, err := removeAnnotationType(st.AnnotationTypes, uniqueID)
		st.AnnotationTypes = types
		return err
	})
}

// ChangeState applies one of the actions disable, enable, retire or
// unretire. An unretired study is disabled.
func (s *StudyService) ChangeState(ctx context.Context, id string, expected int64, action string) (*domain.Study, error) {
	st, err := mutate[domain.Study](ctx, s.store, models.KindStudy, id, expected, func(st *domain.Study) error {
		switch action {
		case "disable":
			if st.IsDisabled() {
				return ruleError("already disabled")
			}
			if st.IsRetired() {
				return ruleError("study is retired")
			}
			st.Status = domain.StudyDisabled
		case "enable":
			if st.IsEnabled() {
				return ruleError("already enabled")
			}
			if st.IsRetired() {
				return ruleError("study is retired")
			}
			st.Status = domain.StudyEnabled
		case "retire":
			if st.IsRetired() {
				return ruleError("already retired")
			}
			st.Status = domain.StudyRetired
		case "unretire":
			if !st.IsRetired() {
				return ruleError("not retired")
			}
			st.Status = domain.StudyDisabled
		default:
			return ruleError("invalid study state action: %s", action)
		}
		return nil
	})
	return st, errors.Wrap(err, "StudyService.ChangeState")
}

// AllLocations lists every location of the centres taking part in the study.
func (s *StudyService) AllLocations(ctx context.Context, id string) ([]*domain.CentreLocationInfo, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	centres, err := loadAll[domain.Centre](ctx, s.records(), models.KindCentre)
	if err != nil {
		return nil, errors.Wrap(err, "StudyService.AllLocations")
	}
	out := []*domain.CentreLocationInfo{}
	for _, c := range centres {
		if !c.HasStudy(id) {
			continue
		}
		for _, l := range c.Locations {
			out = append(out, locationInfo(c, l))
		}
	}
	return out, nil
}

// modify is mutate with the rule that retired studies cannot change.
func (s *StudyService) modify(ctx context.Context, id string, expected int64, change func(*domain.Study) error) (*domain.Study, error) {
	st, err := mutate[domain.Study](ctx, s.store, models.KindStudy, id, expected, func(st *domain.Study) error {
		if st.IsRetired() {
			return ruleError("study is retired")
		}
		return change(st)
	})
	return st, errors.Wrap(err, "StudyService.modify")
}

// checkName rejects an empty name or one used by a study other than id.
func (s *StudyService) checkName(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ruleError("study name is required")
	}
	all, err := loadAll[domain.Study](ctx, s.records(), models.KindStudy)
	if err != nil {
		return errors.Wrap(err, "StudyService.checkName")
	}
	for _, st := range all {
		if st.ID != id && strings.EqualFold(st.Name, name) {
			return ruleError("name already used: %s", name)
		}
	}
	return nil
}

func locationInfo(c *domain.Centre, l domain.Location) *domain.CentreLocationInfo {
	return &domain.CentreLocationInfo{CentreID: c.ID, LocationID: l.UniqueID, Name: c.Name + ": " + l.Name}
}
