package services

import (
	"context"
	"time"

	"github.com/cbsr/biobank/internal/domain"
)

// ShipmentService edits shipments. Details can change only while a
// shipment is in state created.
type ShipmentService interface {
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	List(ctx context.Context, centreID string, opts domain.ListOptions) (*domain.PagedResult[*domain.Shipment], error)
	Add(ctx context.Context, sh *domain.Shipment) (*domain.Shipment, error)
	UpdateCourierName(ctx context.Context, sh *domain.Shipment, name string) (*domain.Shipment, error)
	UpdateTrackingNumber(ctx context.Context, sh *domain.Shipment, number string) (*domain.Shipment, error)
	UpdateFromLocation(ctx context.Context, sh *domain.Shipment, locationID string) (*domain.Shipment, error)
	UpdateToLocation(ctx context.Context, sh *domain.Shipment, locationID string) (*domain.Shipment, error)
	ChangeState(ctx context.Context, sh *domain.Shipment, state domain.ShipmentState, at *time.Time) (*domain.Shipment, error)
	Remove(ctx context.Context, sh *domain.Shipment) error
}

type shipmentService struct {
	api domain.Transport
}

func NewShipmentService(api domain.Transport) ShipmentService {
	return &shipmentService{api: api}
}

func (s *shipmentService) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	return domain.Fetch(ctx, s.api, domain.Shipments, endpoint("/shipments", id), nil)
}

func (s *shipmentService) List(ctx context.Context, centreID string, opts domain.ListOptions) (*domain.PagedResult[*domain.Shipment], error) {
	params, err := opts.Params()
	if err != nil {
		return nil, err
	}
	reply, err := s.api.Get(ctx, endpoint("/shipments/list", centreID), params)
	if err != nil {
		return nil, err
	}
	return domain.Shipments.CreatePaged(reply)
}

func (s *shipmentService) Add(ctx context.Context, sh *domain.Shipment) (*domain.Shipment, error) {
	cmd, err := sh.AddCommand()
	if err != nil {
		return nil, err
	}
	return domain.Submit(ctx, s.api, domain.Shipments, "/shipments", cmd)
}

func (s *shipmentService) UpdateCourierName(ctx context.Context, sh *domain.Shipment, name string) (*domain.Shipment, error) {
	if name == "" {
		return nil, domain.NewDomainError("courier name is required")
	}
	return s.update(ctx, sh, "/shipments/courier", map[string]any{"courierName": name})
}

func (s *shipmentService) UpdateTrackingNumber(ctx context.Context, sh *domain.Shipment, number string) (*domain.Shipment, error) {
	if number == "" {
		return nil, domain.NewDomainError("tracking number is required")
	}
	return s.update(ctx, sh, "/shipments/trackingnumber", map[string]any{"trackingNumber": number})
}

func (s *shipmentService) UpdateFromLocation(ctx context.Context, sh *domain.Shipment, locationID string) (*domain.Shipment, error) {
	if locationID == sh.ToLocationInfo.LocationID {
		return nil, domain.NewDomainError("from and to locations must differ")
	}
	return s.update(ctx, sh, "/shipments/fromlocation", map[string]any{"locationId": locationID})
}

func (s *shipmentService) UpdateToLocation(ctx context.Context, sh *domain.Shipment, locationID string) (*domain.Shipment, error) {
	if locationID == sh.FromLocationInfo.LocationID {
		return nil, domain.NewDomainError("from and to locations must differ")
	}
	return s.update(ctx, sh, "/shipments/tolocation", map[string]any{"locationId": locationID})
}

// ChangeState moves the shipment to state. at, when set, is recorded as the
// time the shipment entered the new state.
func (s *shipmentService) ChangeState(ctx context.Context, sh *domain.Shipment, state domain.ShipmentState, at *time.Time) (*domain.Shipment, error) {
	if !sh.State.CanTransitionTo(state) {
		return nil, domain.NewDomainError("cannot change shipment state from %s to %s", sh.State, state)
	}
	extra := map[string]any{"newState": state}
	if at != nil {
		extra["datetime"] = at.UTC().Format(time.RFC3339)
	}
	return domain.Update(ctx, s.api, domain.Shipments, sh, endpoint("/shipments/state", sh.ID), extra)
}

func (s *shipmentService) Remove(ctx context.Context, sh *domain.Shipment) error {
	if sh.IsNew() {
		return domain.NewDomainError("entity has not been added yet")
	}
	if !sh.IsCreated() {
		return domain.NewDomainError("shipment not in created state")
	}
	_, err := s.api.Delete(ctx, endpoint("/shipments", sh.ID, sh.Version))
	return err
}

func (s *shipmentService) update(ctx context.Context, sh *domain.Shipment, base string, extra map[string]any) (*domain.Shipment, error) {
	if !sh.IsCreated() {
		return nil, domain.NewDomainError("shipment not in created state")
	}
	return domain.Update(ctx, s.api, domain.Shipments, sh, endpoint(base, sh.ID), extra)
}
