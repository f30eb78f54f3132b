package records

import (
	"context"
	"sort"
	"sync"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/server/models"
)

// MemoryRepository keeps records in process memory. Safe for concurrent use.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[models.Kind]map[string]models.Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[models.Kind]map[string]models.Record)}
}

func (r *MemoryRepository) Create(ctx context.Context, rec *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID, ok := r.data[rec.Kind]
	if !ok {
		byID = make(map[string]models.Record)
		r.data[rec.Kind] = byID
	}
	if _, exists := byID[rec.ID]; exists {
		return common.ErrAlreadyExists
	}
	byID[rec.ID] = clone(rec)
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.data[kind][id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := clone(&rec)
	return &out, nil
}

func (r *MemoryRepository) List(ctx context.Context, kind models.Kind) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Record, 0, len(r.data[kind]))
	for _, rec := range r.data[kind] {
		out := clone(&rec)
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TimeAdded.Equal(result[j].TimeAdded) {
			return result[i].ID < result[j].ID
		}
		return result[i].TimeAdded.Before(result[j].TimeAdded)
	})
	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *models.Record, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.data[rec.Kind][rec.ID]
	if !ok || current.Version != expectedVersion {
		return common.ErrVersionConflict
	}
	r.data[rec.Kind][rec.ID] = clone(rec)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, kind models.Kind, id string, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.data[kind][id]
	if !ok || current.Version != version {
		return common.ErrVersionConflict
	}
	delete(r.data[kind], id)
	return nil
}

func clone(rec *models.Record) models.Record {
	out := *rec
	out.Data = append([]byte(nil), rec.Data...)
	if rec.TimeModified != nil {
		t := *rec.TimeModified
		out.TimeModified = &t
	}
	return out
}
