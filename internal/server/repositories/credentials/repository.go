// Package credentials stores user password hashes.
package credentials

import (
	"context"

	"github.com/cbsr/biobank/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, cred *models.Credential) error
	GetByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetByUserID(ctx context.Context, userID string) (*models.Credential, error)
	Update(ctx context.Context, cred *models.Credential) error
}
