package domain

import (
	"encoding/json"
	"errors"
)

// Location is a street address belonging to a centre.
type Location struct {
	UniqueID       string `json:"uniqueId"`
	Name           string `json:"name"`
	Street         string `json:"street"`
	City           string `json:"city"`
	Province       string `json:"province"`
	PostalCode     string `json:"postalCode"`
	POBoxNumber    string `json:"poBoxNumber,omitempty"`
	CountryISOCode string `json:"countryIsoCode"`
}

var locationSchema = MustCompileSchema("location", `{
	"type": "object",
	"properties": {
		"uniqueId":       {"type": "string"},
		"name":           {"type": "string"},
		"street":         {"type": "string"},
		"city":           {"type": "string"},
		"province":       {"type": "string"},
		"postalCode":     {"type": "string"},
		"poBoxNumber":    {"type": ["string", "null"]},
		"countryIsoCode": {"type": "string"}
	},
	"required": ["uniqueId", "name", "street", "city", "province", "postalCode", "countryIsoCode"]
}`)

var Locations = &Factory[*Location]{
	Plural: "locations",
	Schema: locationSchema,
	Build:  decode[Location],
}

// Command is the body of an add or update location request.
func (l Location) Command() map[string]any {
	cmd := map[string]any{
		"name":           l.Name,
		"street":         l.Street,
		"city":           l.City,
		"province":       l.Province,
		"postalCode":     l.PostalCode,
		"countryIsoCode": l.CountryISOCode,
	}
	if l.POBoxNumber != "" {
		cmd["poBoxNumber"] = l.POBoxNumber
	}
	return cmd
}

// Centre is a site that stores specimens and ships them to other centres.
type Centre struct {
	Entity
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Status      CentreStatus `json:"status"`
	StudyIDs    []string     `json:"studyIds"`
	Locations   []Location   `json:"locations"`
}

var centreSchema = MustCompileSchema("centre", `{
	"type": "object",
	"properties": {
		"id":           {"type": "string"},
		"version":      {"type": "integer", "minimum": 0},
		"timeAdded":    {"type": "string"},
		"timeModified": {"type": ["string", "null"]},
		"name":         {"type": "string"},
		"description":  {"type": ["string", "null"]},
		"status":       {"enum": ["disabled", "enabled"]},
		"studyIds":     {"type": ["array", "null"], "items": {"type": "string"}},
		"locations":    {"type": ["array", "null"]}
	},
	"required": ["id", "version", "timeAdded", "name", "status"]
}`)

var Centres = &Factory[*Centre]{
	Plural: "centres",
	Schema: centreSchema,
	Checks: []Check{locationsCheck},
	Build:  decode[Centre],
}

var errBadLocations = errors.New("bad locations")

func locationsCheck(raw json.RawMessage) error {
	v, _ := field(raw, "locations")
	if !validArray(v, locationSchema, nil) {
		return errBadLocations
	}
	return nil
}

func (c *Centre) IsDisabled() bool { return c.Status == CentreDisabled }
func (c *Centre) IsEnabled() bool  { return c.Status == CentreEnabled }

// Location returns the centre's location with the given unique ID.
func (c *Centre) Location(uniqueID string) (Location, bool) {
	for _, l := range c.Locations {
		if l.UniqueID == uniqueID {
			return l, true
		}
	}
	return Location{}, false
}

// HasStudy reports whether the centre participates in studyID.
func (c *Centre) HasStudy(studyID string) bool {
	for _, id := range c.StudyIDs {
		if id == studyID {
			return true
		}
	}
	return false
}

var _ Versioned = (*Centre)(nil)
