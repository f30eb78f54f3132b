package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentState_Transitions(t *testing.T) {
	tests := []struct {
		from, to ShipmentState
		ok       bool
	}{
		{ShipmentCreated, ShipmentPacked, true},
		{ShipmentCreated, ShipmentSent, false},
		{ShipmentPacked, ShipmentCreated, true},
		{ShipmentSent, ShipmentLost, true},
		{ShipmentLost, ShipmentSent, true},
		{ShipmentReceived, ShipmentUnpacked, true},
		{ShipmentUnpacked, ShipmentCompleted, true},
		{ShipmentCompleted, ShipmentCreated, false},
		{"bogus", ShipmentPacked, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatuses_Valid(t *testing.T) {
	assert.True(t, StudyRetired.Valid())
	assert.False(t, StudyStatus("paused").Valid())
	assert.True(t, CentreEnabled.Valid())
	assert.False(t, CentreStatus("retired").Valid())
	assert.True(t, UserLocked.Valid())
	assert.False(t, UserStatus("").Valid())
	assert.True(t, ShipmentLost.Valid())
	assert.True(t, ValueTypeMultipleSelect.IsSelect())
	assert.False(t, ValueTypeText.IsSelect())
}

func TestListOptions_Params(t *testing.T) {
	params, err := ListOptions{Filter: "als", Status: "enabled", Sort: "name", Page: 2, PageSize: 5, Order: "desc"}.Params()
	require.NoError(t, err)
	assert.Equal(t, "filter=als&order=desc&page=2&pageSize=5&sort=name&status=enabled", params.Encode())

	params, err = ListOptions{}.Params()
	require.NoError(t, err)
	assert.Empty(t, params)

	_, err = ListOptions{Order: "sideways"}.Params()
	assert.Equal(t, KindDomain, KindOf(err))

	_, err = ListOptions{Page: -1}.Params()
	assert.Error(t, err)
}

func TestShipment_AddCommand(t *testing.T) {
	s := &Shipment{
		CourierName:      "FedEx",
		TrackingNumber:   "TN-1",
		FromLocationInfo: CentreLocationInfo{LocationID: "l1"},
		ToLocationInfo:   CentreLocationInfo{LocationID: "l2"},
	}
	cmd, err := s.AddCommand()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"courierName": "FedEx", "trackingNumber": "TN-1", "fromLocationId": "l1", "toLocationId": "l2",
	}, cmd)

	s.ToLocationInfo.LocationID = "l1"
	_, err = s.AddCommand()
	assert.Equal(t, KindDomain, KindOf(err))

	s.CourierName = ""
	_, err = s.AddCommand()
	assert.EqualError(t, err, "courier name is required")
}
