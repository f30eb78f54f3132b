package services

import (
	"context"

	"github.com/cbsr/biobank/internal/domain"
)

type CentreService interface {
	Get(ctx context.Context, id string) (*domain.Centre, error)
	List(ctx context.Context, opts domain.ListOptions) (*domain.PagedResult[*domain.Centre], error)
	Add(ctx context.Context, name, description string) (*domain.Centre, error)
	UpdateName(ctx context.Context, c *domain.Centre, name string) (*domain.Centre, error)
	UpdateDescription(ctx context.Context, c *domain.Centre, description string) (*domain.Centre, error)
	Disable(ctx context.Context, c *domain.Centre) (*domain.Centre, error)
	Enable(ctx context.Context, c *domain.Centre) (*domain.Centre, error)
	AddLocation(ctx context.Context, c *domain.Centre, loc domain.Location) (*domain.Centre, error)
	UpdateLocation(ctx context.Context, c *domain.Centre, loc domain.Location) (*domain.Centre, error)
	RemoveLocation(ctx context.Context, c *domain.Centre, uniqueID string) (*domain.Centre, error)
	AddStudy(ctx context.Context, c *domain.Centre, studyID string) (*domain.Centre, error)
	RemoveStudy(ctx context.Context, c *domain.Centre, studyID string) (*domain.Centre, error)
	LocationsSearch(ctx context.Context, filter string, limit int) ([]*domain.CentreLocationInfo, error)
}

type centreService struct {
	api domain.Transport
}

func NewCentreService(api domain.Transport) CentreService {
	return &centreService{api: api}
}

func (s *centreService) Get(ctx context.Context, id string) (*domain.Centre, error) {
	return domain.Fetch(ctx, s.api, domain.Centres, endpoint("/centres", id), nil)
}

func (s *centreService) List(ctx context.Context, opts domain.ListOptions) (*domain.PagedResult[*domain.Centre], error) {
	params, err := opts.Params()
	if err != nil {
		return nil, err
	}
	reply, err := s.api.Get(ctx, "/centres", params)
	if err != nil {
		return nil, err
	}
	return domain.Centres.CreatePaged(reply)
}

func (s *centreService) Add(ctx context.Context, name, description string) (*domain.Centre, error) {
	if name == "" {
		return nil, domain.NewDomainError("centre name is required")
	}
	cmd := map[string]any{"name": name}
	if description != "" {
		cmd["description"] = description
	}
	return domain.Submit(ctx, s.api, domain.Centres, "/centres", cmd)
}

func (s *centreService) UpdateName(ctx context.Context, c *domain.Centre, name string) (*domain.Centre, error) {
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/name", c.ID), map[string]any{"name": name})
}

func (s *centreService) UpdateDescription(ctx context.Context, c *domain.Centre, description string) (*domain.Centre, error) {
	extra := map[string]any{}
	if description != "" {
		extra["description"] = description
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/description", c.ID), extra)
}

func (s *centreService) Disable(ctx context.Context, c *domain.Centre) (*domain.Centre, error) {
	if c.IsDisabled() {
		return nil, domain.NewDomainError("already disabled")
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/disable", c.ID), nil)
}

func (s *centreService) Enable(ctx context.Context, c *domain.Centre) (*domain.Centre, error) {
	if c.IsEnabled() {
		return nil, domain.NewDomainError("already enabled")
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/enable", c.ID), nil)
}

func (s *centreService) AddLocation(ctx context.Context, c *domain.Centre, loc domain.Location) (*domain.Centre, error) {
	if loc.Name == "" {
		return nil, domain.NewDomainError("location name is required")
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/locations", c.ID), loc.Command())
}

func (s *centreService) UpdateLocation(ctx context.Context, c *domain.Centre, loc domain.Location) (*domain.Centre, error) {
	if _, ok := c.Location(loc.UniqueID); !ok {
		return nil, domain.NewDomainError("location with ID not present: %s", loc.UniqueID)
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/locations", c.ID, loc.UniqueID), loc.Command())
}

func (s *centreService) RemoveLocation(ctx context.Context, c *domain.Centre, uniqueID string) (*domain.Centre, error) {
	if _, ok := c.Location(uniqueID); !ok {
		return nil, domain.NewDomainError("location with ID not present: %s", uniqueID)
	}
	return domain.Remove(ctx, s.api, domain.Centres, endpoint("/centres/locations", c.ID, c.Version, uniqueID))
}

func (s *centreService) AddStudy(ctx context.Context, c *domain.Centre, studyID string) (*domain.Centre, error) {
	if c.HasStudy(studyID) {
		return nil, domain.NewDomainError("study already associated: %s", studyID)
	}
	return domain.Update(ctx, s.api, domain.Centres, c, endpoint("/centres/studies", c.ID), map[string]any{"studyId": studyID})
}

func (s *centreService) RemoveStudy(ctx context.Context, c *domain.Centre, studyID string) (*domain.Centre, error) {
	if !c.HasStudy(studyID) {
		return nil, domain.NewDomainError("study ID not present: %s", studyID)
	}
	return domain.Remove(ctx, s.api, domain.Centres, endpoint("/centres/studies", c.ID, c.Version, studyID))
}

// LocationsSearch returns up to limit locations whose name matches filter.
func (s *centreService) LocationsSearch(ctx context.Context, filter string, limit int) ([]*domain.CentreLocationInfo, error) {
	if limit <= 0 {
		return nil, domain.NewDomainError("limit must be positive")
	}
	reply, err := s.api.Post(ctx, "/centres/locations", map[string]any{"filter": filter, "limit": limit})
	if err != nil {
		return nil, err
	}
	return domain.LocationInfos.CreateList(reply)
}
