package credentials

import (
	"context"
	"sync"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/server/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]models.Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]models.Credential)}
}

func (r *MemoryRepository) Create(ctx context.Context, cred *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[cred.UserID]; ok || r.emailTaken(cred.Email, "") {
		return common.ErrAlreadyExists
	}
	r.byUser[cred.UserID] = *cred
	return nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byUser {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byUser[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryRepository) Update(ctx context.Context, cred *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUser[cred.UserID]; !ok {
		return common.ErrNotFound
	}
	if r.emailTaken(cred.Email, cred.UserID) {
		return common.ErrAlreadyExists
	}
	r.byUser[cred.UserID] = *cred
	return nil
}

// emailTaken must be called with mu held.
func (r *MemoryRepository) emailTaken(email, exceptUserID string) bool {
	for id, c := range r.byUser {
		if c.Email == email && id != exceptUserID {
			return true
		}
	}
	return false
}
