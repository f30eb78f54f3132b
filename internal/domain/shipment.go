package domain

import "time"

// Shipment moves specimens from a location of one centre to a location of
// another. Its details can change only while it is in state created.
type Shipment struct {
	Entity
	State            ShipmentState      `json:"state"`
	CourierName      string             `json:"courierName"`
	TrackingNumber   string             `json:"trackingNumber"`
	FromLocationInfo CentreLocationInfo `json:"fromLocationInfo"`
	ToLocationInfo   CentreLocationInfo `json:"toLocationInfo"`
	TimePacked       *time.Time         `json:"timePacked,omitempty"`
	TimeSent         *time.Time         `json:"timeSent,omitempty"`
	TimeReceived     *time.Time         `json:"timeReceived,omitempty"`
	TimeUnpacked     *time.Time         `json:"timeUnpacked,omitempty"`
	TimeCompleted    *time.Time         `json:"timeCompleted,omitempty"`
	SpecimenCount    int                `json:"specimenCount"`
}

var shipmentSchema = MustCompileSchema("shipment", `{
	"type": "object",
	"properties": {
		"id":               {"type": "string"},
		"version":          {"type": "integer", "minimum": 0},
		"timeAdded":        {"type": "string"},
		"timeModified":     {"type": ["string", "null"]},
		"state":            {"enum": ["created", "packed", "sent", "received", "unpacked", "completed", "lost"]},
		"courierName":      {"type": "string"},
		"trackingNumber":   {"type": "string"},
		"fromLocationInfo": {"$ref": "#/$defs/locationInfo"},
		"toLocationInfo":   {"$ref": "#/$defs/locationInfo"},
		"timePacked":       {"type": ["string", "null"]},
		"timeSent":         {"type": ["string", "null"]},
		"timeReceived":     {"type": ["string", "null"]},
		"timeUnpacked":     {"type": ["string", "null"]},
		"timeCompleted":    {"type": ["string", "null"]},
		"specimenCount":    {"type": "integer", "minimum": 0}
	},
	"required": ["id", "version", "timeAdded", "state", "courierName", "trackingNumber", "fromLocationInfo", "toLocationInfo"],
	"$defs": {
		"locationInfo": {
			"type": "object",
			"properties": {
				"locationId": {"type": "string"},
				"name":       {"type": "string"}
			},
			"required": ["locationId"]
		}
	}
}`)

var Shipments = &Factory[*Shipment]{
	Plural: "shipments",
	Schema: shipmentSchema,
	Build:  decode[Shipment],
}

func (s *Shipment) IsCreated() bool { return s.State == ShipmentCreated }

// AddCommand is the body of the add request.
func (s *Shipment) AddCommand() (map[string]any, error) {
	switch {
	case s.CourierName == "":
		return nil, NewDomainError("courier name is required")
	case s.TrackingNumber == "":
		return nil, NewDomainError("tracking number is required")
	case s.FromLocationInfo.LocationID == "" || s.ToLocationInfo.LocationID == "":
		return nil, NewDomainError("from and to locations are required")
	case s.FromLocationInfo.LocationID == s.ToLocationInfo.LocationID:
		return nil, NewDomainError("from and to locations must differ")
	}
	return map[string]any{
		"courierName":    s.CourierName,
		"trackingNumber": s.TrackingNumber,
		"fromLocationId": s.FromLocationInfo.LocationID,
		"toLocationId":   s.ToLocationInfo.LocationID,
	}, nil
}

// StateTime returns the time the shipment entered state, if recorded.
func (s *Shipment) StateTime(state ShipmentState) *time.Time {
	switch state {
	case ShipmentCreated:
		t := s.TimeAdded
		return &t
	case ShipmentPacked:
		return s.TimePacked
	case ShipmentSent, ShipmentLost:
		return s.TimeSent
	case ShipmentReceived:
		return s.TimeReceived
	case ShipmentUnpacked:
		return s.TimeUnpacked
	case ShipmentCompleted:
		return s.TimeCompleted
	}
	return nil
}

var _ Versioned = (*Shipment)(nil)
