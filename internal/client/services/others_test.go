package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbsr/biobank/internal/domain"
)

func ceventTypeJSON(t *testing.T, version int) []byte {
	t.Helper()
	return mustJSON(t, map[string]any{
		"id":              "cet1",
		"version":         version,
		"timeAdded":       "2024-01-02T03:04:05Z",
		"studyId":         "s1",
		"name":            "Visit",
		"recurring":       false,
		"specimenSpecs":   []any{},
		"annotationTypes": []any{},
	})
}

func TestCeventTypeService_ChangesCarryStudyID(t *testing.T) {
	api := newFake()
	api.reply("POST", "/studies/cetypes/recurring/cet1", ceventTypeJSON(t, 2))
	svc := NewCeventTypeService(api)
	cet := domain.CollectionEventTypes.MustCreate(ceventTypeJSON(t, 1))

	_, err := svc.UpdateRecurring(context.Background(), cet, true)
	require.NoError(t, err)

	body := api.last(t).body
	assert.Equal(t, "s1", body["studyId"])
	assert.Equal(t, true, body["recurring"])
	assert.EqualValues(t, 1, body["expectedVersion"])
}

func TestCeventTypeService_GetAndRemove(t *testing.T) {
	api := newFake()
	api.reply("GET", "/studies/cetypes/s1", ceventTypeJSON(t, 1))
	svc := NewCeventTypeService(api)

	cet, err := svc.Get(context.Background(), "s1", "cet1")
	require.NoError(t, err)
	assert.Equal(t, "cet1", api.last(t).params.Get("cetId"))

	require.NoError(t, svc.Remove(context.Background(), cet))
	last := api.last(t)
	assert.Equal(t, "DELETE", last.method)
	assert.Equal(t, "/studies/cetypes/s1/cet1/1", last.path)
}

func TestCentreService_Rules(t *testing.T) {
	api := newFake()
	svc := NewCentreService(api)
	c := domain.Centres.MustCreate(centreJSON(t, 1, "enabled"))
	ctx := context.Background()

	_, err := svc.Enable(ctx, c)
	assert.EqualError(t, err, "already enabled")

	_, err = svc.AddStudy(ctx, c, "s1")
	assert.Equal(t, domain.KindDomain, domain.KindOf(err))

	_, err = svc.RemoveLocation(ctx, c, "l9")
	assert.Equal(t, domain.KindDomain, domain.KindOf(err))

	assert.Empty(t, api.calls)
}

func TestCentreService_RemoveStudyAndSearch(t *testing.T) {
	api := newFake()
	api.reply("DELETE", "/centres/studies/c1/1/s1", centreJSON(t, 2, "enabled"))
	api.reply("POST", "/centres/locations", mustJSON(t, []any{
		map[string]any{"locationId": "l1", "name": "CBSR: Main"},
	}))
	svc := NewCentreService(api)
	c := domain.Centres.MustCreate(centreJSON(t, 1, "enabled"))

	updated, err := svc.RemoveStudy(context.Background(), c, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Version)

	infos, err := svc.LocationsSearch(context.Background(), "Ma", 10)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "l1", infos[0].LocationID)
	assert.Equal(t, "Ma", api.last(t).body["filter"])
	assert.EqualValues(t, 10, api.last(t).body["limit"])
}

func TestShipmentService_OnlyCreatedCanChange(t *testing.T) {
	api := newFake()
	svc := NewShipmentService(api)
	ctx := context.Background()
	sent := domain.Shipments.MustCreate(shipmentJSON(t, 3, "sent"))

	_, err := svc.UpdateCourierName(ctx, sent, "UPS")
	assert.EqualError(t, err, "shipment not in created state")

	err = svc.Remove(ctx, sent)
	assert.EqualError(t, err, "shipment not in created state")

	_, err = svc.ChangeState(ctx, sent, domain.ShipmentCompleted, nil)
	assert.Equal(t, domain.KindDomain, domain.KindOf(err))

	assert.Empty(t, api.calls)
}

func TestShipmentService_ChangeState(t *testing.T) {
	api := newFake()
	api.reply("POST", "/shipments/state/sh1", shipmentJSON(t, 4, "received"))
	svc := NewShipmentService(api)
	sent := domain.Shipments.MustCreate(shipmentJSON(t, 3, "sent"))
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	got, err := svc.ChangeState(context.Background(), sent, domain.ShipmentReceived, &at)
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentReceived, got.State)

	body := api.last(t).body
	assert.Equal(t, "received", body["newState"])
	assert.Equal(t, "2024-05-06T07:08:09Z", body["datetime"])
	assert.EqualValues(t, 3, body["expectedVersion"])
}

func TestShipmentService_AddValidatesLocally(t *testing.T) {
	api := newFake()
	svc := NewShipmentService(api)

	_, err := svc.Add(context.Background(), &domain.Shipment{CourierName: "FedEx"})
	assert.EqualError(t, err, "tracking number is required")
	assert.Empty(t, api.calls)
}

func TestShipmentService_TransportErrorPassesThrough(t *testing.T) {
	api := newFake()
	boom := errors.New("boom")
	api.fail("GET", "/shipments/sh1", boom)

	_, err := NewShipmentService(api).Get(context.Background(), "sh1")
	assert.ErrorIs(t, err, boom)
}
