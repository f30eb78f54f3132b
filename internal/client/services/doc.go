// Package services exposes the biobank REST operations to the CLI, one
// service per area. Every change request follows the optimistic
// concurrency protocol in package domain: the service sends the version it
// was given and returns the entity the server replied with. Callers must
// drop their old copy.
//
// State rules are checked before any request is made and fail with a
// *domain.DomainError.
package services
