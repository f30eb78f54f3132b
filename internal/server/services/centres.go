package services

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/records"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

// CentreService manages centres, their locations and the studies they take
// part in.
type CentreService struct {
	*store
}

func NewCentreService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *CentreService {
	return &CentreService{store: newStore(repos, logger, conflicts)}
}

func (s *CentreService) Get(ctx context.Context, id string) (*domain.Centre, error) {
	c, err := load[domain.Centre](ctx, s.records(), models.KindCentre, id)
	return c, errors.Wrap(err, "CentreService.Get")
}

func (s *CentreService) List(ctx context.Context, q ListQuery) (*domain.PagedResult[*domain.Centre], error) {
	q, err := q.normalize("name", "status")
	if err != nil {
		return nil, err
	}
	all, err := loadAll[domain.Centre](ctx, s.records(), models.KindCentre)
	if err != nil {
		return nil, errors.Wrap(err, "CentreService.List")
	}
	matched := make([]*domain.Centre, 0, len(all))
	for _, c := range all {
		if q.matches(c.Name) && q.statusMatches(c.Status.String()) {
			matched = append(matched, c)
		}
	}
	sortBy(matched, q, func(c *domain.Centre) string {
		if q.Sort == "status" {
			return c.Status.String()
		}
		return c.Name
	})
	return paginate(matched, q), nil
}

func (s *CentreService) Add(ctx context.Context, name, description string) (*domain.Centre, error) {
	if err := s.checkName(ctx, "", name); err != nil {
		return nil, err
	}
	c := &domain.Centre{
		Name:        name,
		Description: description,
		Status:      domain.CentreDisabled,
		StudyIDs:    []string{},
		Locations:   []domain.Location{},
	}
	if err := insert(ctx, s.records(), models.KindCentre, c); err != nil {
		return nil, errors.Wrap(err, "CentreService.Add")
	}
	return c, nil
}

func (s *CentreService) UpdateName(ctx context.Context, id string, expected int64, name string) (*domain.Centre, error) {
	if err := s.checkName(ctx, id, name); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		c.Name = name
		return nil
	})
}

func (s *CentreService) UpdateDescription(ctx context.Context, id string, expected int64, description string) (*domain.Centre, error) {
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		c.Description = description
		return nil
	})
}

// ChangeState applies disable or enable.
func (s *CentreService) ChangeState(ctx context.Context, id string, expected int64, action string) (*domain.Centre, error) {
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		switch action {
		case "disable":
			if c.IsDisabled() {
				return ruleError("already disabled")
			}
			c.Status = domain.CentreDisabled
		case "enable":
			if c.IsEnabled() {
				return ruleError("already enabled")
			}
			c.Status = domain.CentreEnabled
		default:
			return ruleError("invalid centre state action: %s", action)
		}
		return nil
	})
}

func (s *CentreService) AddLocation(ctx context.Context, id string, expected int64, loc domain.Location) (*domain.Centre, error) {
	if err := checkLocation(loc); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		for _, l := range c.Locations {
			if l.Name == loc.Name {
				return ruleError("location name already used: %s", loc.Name)
			}
		}
		loc.UniqueID = newID()
		c.Locations = append(c.Locations, loc)
		return nil
	})
}

func (s *CentreService) UpdateLocation(ctx context.Context, id string, expected int64, loc domain.Location) (*domain.Centre, error) {
	if err := checkLocation(loc); err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		for i, l := range c.Locations {
			if l.UniqueID == loc.UniqueID {
				c.Locations[i] = loc
				return nil
			}
		}
		return ruleError("location with ID not present: %s", loc.UniqueID)
	})
}

func (s *CentreService) RemoveLocation(ctx context.Context, id string, expected int64, uniqueID string) (*domain.Centre, error) {
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		out := make([]domain.Location, 0, len(c.Locations))
		for _, l := range c.Locations {
			if l.UniqueID != uniqueID {
				out = append(out, l)
			}
		}
		if len(out) == len(c.Locations) {
			return ruleError("location with ID not present: %s", uniqueID)
		}
		c.Locations = out
		return nil
	})
}

func (s *CentreService) AddStudy(ctx context.Context, id string, expected int64, studyID string) (*domain.Centre, error) {
	if _, err := load[domain.Study](ctx, s.records(), models.KindStudy, studyID); err != nil {
		return nil, errors.Wrap(err, "CentreService.AddStudy")
	}
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		if c.HasStudy(studyID) {
			return ruleError("study already associated: %s", studyID)
		}
		c.StudyIDs = append(c.StudyIDs, studyID)
		return nil
	})
}

func (s *CentreService) RemoveStudy(ctx context.Context, id string, expected int64, studyID string) (*domain.Centre, error) {
	return s.modify(ctx, id, expected, func(c *domain.Centre) error {
		if !c.HasStudy(studyID) {
			return ruleError("study ID not present: %s", studyID)
		}
		out := make([]string, 0, len(c.StudyIDs))
		for _, sid := range c.StudyIDs {
			if sid != studyID {
				out = append(out, sid)
			}
		}
		c.StudyIDs = out
		return nil
	})
}

// SearchLocations returns up to limit locations whose "centre: location"
// name contains filter, sorted by that name.
func (s *CentreService) SearchLocations(ctx context.Context, filter string, limit int) ([]*domain.CentreLocationInfo, error) {
	if limit <= 0 {
		return nil, ruleError("limit must be positive")
	}
	centres, err := loadAll[domain.Centre](ctx, s.records(), models.KindCentre)
	if err != nil {
		return nil, errors.Wrap(err, "CentreService.SearchLocations")
	}
	q := ListQuery{Filter: filter}
	out := []*domain.CentreLocationInfo{}
	for _, c := range centres {
		for _, l := range c.Locations {
			info := locationInfo(c, l)
			if q.matches(info.Name) {
				out = append(out, info)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// findLocation looks a location up across all centres.
func findLocation(ctx context.Context, repo records.Repository, locationID string) (*domain.CentreLocationInfo, error) {
	centres, err := loadAll[domain.Centre](ctx, repo, models.KindCentre)
	if err != nil {
		return nil, errors.Wrap(err, "findLocation")
	}
	for _, c := range centres {
		if l, ok := c.Location(locationID); ok {
			return locationInfo(c, l), nil
		}
	}
	return nil, ruleError("location with ID not present: %s", locationID)
}

func (s *CentreService) modify(ctx context.Context, id string, expected int64, change func(*domain.Centre) error) (*domain.Centre, error) {
	c, err := mutate[domain.Centre](ctx, s.store, models.KindCentre, id, expected, change)
	return c, errors.Wrap(err, "CentreService.modify")
}

func (s *CentreService) checkName(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ruleError("centre name is required")
	}
	all, err := loadAll[domain.Centre](ctx, s.records(), models.KindCentre)
	if err != nil {
		return errors.Wrap(err, "CentreService.checkName")
	}
	for _, c := range all {
		if c.ID != id && strings.EqualFold(c.Name, name) {
			return ruleError("name already used: %s", name)
		}
	}
	return nil
}

func checkLocation(loc domain.Location) error {
	switch {
	case loc.Name == "":
		return ruleError("location name is required")
	case loc.Street == "" || loc.City == "" || loc.Province == "" || loc.PostalCode == "":
		return ruleError("location address is incomplete")
	case loc.CountryISOCode == "":
		return ruleError("country ISO code is required")
	}
	return nil
}
