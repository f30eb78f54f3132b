// Package domain holds the biobank entities exchanged with the server of
// record, the factories that validate server payloads into them, and the
// optimistic-concurrency update protocol they share.
//
// Every entity embeds Entity. A client never changes Version itself: it sends
// the version it last saw as expectedVersion and replaces its copy with the
// entity the server returns.
package domain

import "time"

// Entity is the versioned envelope shared by all server records. An empty
// ID means the entity has not been persisted yet.
type Entity struct {
	ID           string     `json:"id"`
	Version      int64      `json:"version"`
	TimeAdded    time.Time  `json:"timeAdded"`
	TimeModified *time.Time `json:"timeModified,omitempty"`
}

// IsNew reports whether the entity has no server-assigned ID.
func (e Entity) IsNew() bool {
	return e.ID == ""
}

// Envelope returns the embedded envelope. Through embedding every entity
// pointer satisfies Versioned.
func (e *Entity) Envelope() *Entity {
	return e
}

// Versioned is implemented by every entity pointer.
type Versioned interface {
	Envelope() *Entity
}
