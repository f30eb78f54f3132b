package services

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

// ShipmentService manages shipments between centre locations. Details can
// change only while a shipment is in state created.
type ShipmentService struct {
	*store
}

func NewShipmentService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *ShipmentService {
	return &ShipmentService{store: newStore(repos, logger, conflicts)}
}

func (s *ShipmentService) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	sh, err := load[domain.Shipment](ctx, s.records(), models.KindShipment, id)
	return sh, errors.Wrap(err, "ShipmentService.Get")
}

// List returns the shipments leaving from or arriving at a location of the
// centre. The filter matches the courier name or tracking number; status is
// a shipment state.
func (s *ShipmentService) List(ctx context.Context, centreID string, q ListQuery) (*domain.PagedResult[*domain.Shipment], error) {
	q, err := q.normalize("courierName", "trackingNumber", "state", "timeAdded")
	if err != nil {
		return nil, err
	}
	if _, err := load[domain.Centre](ctx, s.records(), models.KindCentre, centreID); err != nil {
		return nil, errors.Wrap(err, "ShipmentService.List")
	}
	all, err := loadAll[domain.Shipment](ctx, s.records(), models.KindShipment)
	if err != nil {
		return nil, errors.Wrap(err, "ShipmentService.List")
	}
	matched := make([]*domain.Shipment, 0, len(all))
	for _, sh := range all {
		if sh.FromLocationInfo.CentreID != centreID && sh.ToLocationInfo.CentreID != centreID {
			continue
		}
		if !q.matches(sh.CourierName) && !q.matches(sh.TrackingNumber) {
			continue
		}
		if q.statusMatches(sh.State.String()) {
			matched = append(matched, sh)
		}
	}
	sortBy(matched, q, func(sh *domain.Shipment) string {
		switch q.Sort {
		case "trackingNumber":
			return sh.TrackingNumber
		case "state":
			return sh.State.String()
		case "timeAdded":
			return sh.TimeAdded.Format(time.RFC3339Nano)
		}
		return sh.CourierName
	})
	return paginate(matched, q), nil
}

func (s *ShipmentService) Add(ctx context.Context, courierName, trackingNumber, fromLocationID, toLocationID string) (*domain.Shipment, error) {
	switch {
	case courierName == "":
		return nil, ruleError("courier name is required")
	case trackingNumber == "":
		return nil, ruleError("tracking number is required")
	case fromLocationID == toLocationID:
		return nil, ruleError("from and to locations must differ")
	}
	from, err := findLocation(ctx, s.records(), fromLocationID)
	if err != nil {
		return nil, err
	}
	to, err := findLocation(ctx, s.records(), toLocationID)
	if err != nil {
		return nil, err
	}
	sh := &domain.Shipment{
		State:            domain.ShipmentCreated,
		CourierName:      courierName,
		TrackingNumber:   trackingNumber,
		FromLocationInfo: *from,
		ToLocationInfo:   *to,
	}
	if err := insert(ctx, s.records(), models.KindShipment, sh); err != nil {
		return nil, errors.Wrap(err, "ShipmentService.Add")
	}
	return sh, nil
}

func (s *ShipmentService) UpdateCourierName(ctx context.Context, id string, expected int64, name string) (*domain.Shipment, error) {
	if name == "" {
		return nil, ruleError("courier name is required")
	}
	return s.modify(ctx, id, expected, func(sh *domain.Shipment) error {
		sh.CourierName = name
		return nil
	})
}

func (s *ShipmentService) UpdateTrackingNumber(ctx context.Context, id string, expected int64, number string) (*domain.Shipment, error) {
	if number == "" {
		return nil, ruleError("tracking number is required")
	}
	return s.modify(ctx, id, expected, func(sh *domain.Shipment) error {
		sh.TrackingNumber = number
		return nil
	})
}

func (s *ShipmentService) UpdateFromLocation(ctx context.Context, id string, expected int64, locationID string) (*domain.Shipment, error) {
	loc, err := findLocation(ctx, s.records(), locationID)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(sh *domain.Shipment) error {
		if sh.ToLocationInfo.LocationID == locationID {
			return ruleError("from and to locations must differ")
		}
		sh.FromLocationInfo = *loc
		return nil
	})
}

func (s *ShipmentService) UpdateToLocation(ctx context.Context, id string, expected int64, locationID string) (*domain.Shipment, error) {
	loc, err := findLocation(ctx, s.records(), locationID)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, id, expected, func(sh *domain.Shipment) error {
		if sh.FromLocationInfo.LocationID == locationID {
			return ruleError("from and to locations must differ")
		}
		sh.ToLocationInfo = *loc
		return nil
	})
}

// ChangeState moves the shipment to state, recording at (or now) as the
// time it entered state. Moving back clears the time of the state left.
func (s *ShipmentService) ChangeState(ctx context.Context, id string, expected int64, state domain.ShipmentState, at *time.Time) (*domain.Shipment, error) {
	if !state.Valid() {
		return nil, ruleError("invalid shipment state: %s", state)
	}
	when := nowFn()
	if at != nil {
		when = at.UTC()
	}
	sh, err := mutate[domain.Shipment](ctx, s.store, models.KindShipment, id, expected, func(sh *domain.Shipment) error {
		if !sh.State.CanTransitionTo(state) {
			return ruleError("cannot change shipment state from %s to %s", sh.State, state)
		}
		stampState(sh, sh.State, state, when)
		sh.State = state
		return nil
	})
	return sh, errors.Wrap(err, "ShipmentService.ChangeState")
}

func (s *ShipmentService) Remove(ctx context.Context, id string, version int64) error {
	err := remove[domain.Shipment](ctx, s.store, models.KindShipment, id, version, func(sh *domain.Shipment) error {
		if !sh.IsCreated() {
			return ruleError("shipment not in created state")
		}
		return nil
	})
	return errors.Wrap(err, "ShipmentService.Remove")
}

func (s *ShipmentService) modify(ctx context.Context, id string, expected int64, change func(*domain.Shipment) error) (*domain.Shipment, error) {
	sh, err := mutate[domain.Shipment](ctx, s.store, models.KindShipment, id, expected, func(sh *domain.Shipment) error {
		if !sh.IsCreated() {
			return ruleError("shipment not in created state")
		}
		return change(sh)
	})
	return sh, errors.Wrap(err, "ShipmentService.modify")
}

var stateRank = map[domain.ShipmentState]int{
	domain.ShipmentCreated:   0,
	domain.ShipmentPacked:    1,
	domain.ShipmentSent:      2,
	domain.ShipmentReceived:  3,
	domain.ShipmentLost:      3,
	domain.ShipmentUnpacked:  4,
	domain.ShipmentCompleted: 5,
}

// stateTime returns the field holding the time a shipment entered state.
// Created and lost have none of their own.
func stateTime(sh *domain.Shipment, state domain.ShipmentState) **time.Time {
	switch state {
	case domain.ShipmentPacked:
		return &sh.TimePacked
	case domain.ShipmentSent:
		return &sh.TimeSent
	case domain.ShipmentReceived:
		return &sh.TimeReceived
	case domain.ShipmentUnpacked:
		return &sh.TimeUnpacked
	case domain.ShipmentCompleted:
		return &sh.TimeCompleted
	}
	return nil
}

// stampState records when for a forward move and clears the time of the
// state left on a backward one.
func stampState(sh *domain.Shipment, from, to domain.ShipmentState, when time.Time) {
	if stateRank[to] > stateRank[from] {
		if f := stateTime(sh, to); f != nil {
			*f = &when
		}
		return
	}
	if f := stateTime(sh, from); f != nil {
		*f = nil
	}
}
