// Package models holds the rows persisted by the server of record.
package models

import (
	"encoding/json"
	"time"
)

// Kind names the entity type stored in a Record.
type Kind string

const (
	KindStudy       Kind = "study"
	KindParticipant Kind = "participant"
	KindCeventType  Kind = "ceventType"
	KindCentre      Kind = "centre"
	KindShipment    Kind = "shipment"
	KindUser        Kind = "user"
)

// Record is one versioned entity. Data is the entity's JSON form, envelope
// fields included; the columns duplicate the envelope for the version check.
type Record struct {
	Kind         Kind
	ID           string
	Version      int64
	TimeAdded    time.Time
	TimeModified *time.Time
	Data         json.RawMessage
}

// Credential is the password hash of one user.
type Credential struct {
	UserID string
	Email  string
	Salt   []byte
	Hash   []byte
}
