// Package repomanager vends the repositories of the server of record for
// the configured backend, PostgreSQL or process memory.
package repomanager

import (
	"context"

	"github.com/cbsr/biobank/internal/server/repositories/credentials"
	"github.com/cbsr/biobank/internal/server/repositories/records"
)

// Repositories is a set of repositories sharing one connection or
// transaction.
type Repositories interface {
	Records() records.Repository
	Credentials() credentials.Repository
}

type RepositoryManager interface {
	Repositories
	// InTx runs fn with repositories bound to a single transaction. fn's
	// changes are discarded when it returns an error, where the backend
	// supports it.
	InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}
