package services

import (
	"fmt"

	"github.com/cbsr/biobank/internal/common"
)

// VersionConflictError rejects a change made against a stale version. Its
// message starts with common.VersionConflictMessage, which clients match on.
type VersionConflictError struct {
	ID      string
	Version int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: id: %s, version: %d", common.VersionConflictMessage, e.ID, e.Version)
}

func (e *VersionConflictError) Unwrap() error { return common.ErrVersionConflict }
