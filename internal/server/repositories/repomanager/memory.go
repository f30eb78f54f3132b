package repomanager

import (
	"context"
	"sync"

	"github.com/cbsr/biobank/internal/server/repositories/credentials"
	"github.com/cbsr/biobank/internal/server/repositories/records"
)

// MemoryRepositoryManager keeps everything in process memory. InTx
// serializes transactions but cannot roll them back.
type MemoryRepositoryManager struct {
	mu          sync.Mutex
	records     *records.MemoryRepository
	credentials *credentials.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		records:     records.NewMemoryRepository(),
		credentials: credentials.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Records() records.Repository {
	return m.records
}

func (m *MemoryRepositoryManager) Credentials() credentials.Repository {
	return m.credentials
}

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
