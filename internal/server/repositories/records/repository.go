// Package records stores versioned entities as JSON documents keyed by kind
// and ID. Update and Delete only touch a row whose version matches the one
// the caller read, and report common.ErrVersionConflict otherwise.
package records

import (
	"context"

	"github.com/cbsr/biobank/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.Record) error
	Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error)
	List(ctx context.Context, kind models.Kind) ([]*models.Record, error)
	// Update replaces the row of rec.Kind/rec.ID whose version is
	// expectedVersion with rec.
	Update(ctx context.Context, rec *models.Record, expectedVersion int64) error
	Delete(ctx context.Context, kind models.Kind, id string, version int64) error
}
