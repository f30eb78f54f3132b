package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/dbx"
	"github.com/cbsr/biobank/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO credentials (user_id, email, salt, hash) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, cred.UserID, cred.Email, cred.Salt, cred.Hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	query := `SELECT user_id, email, salt, hash FROM credentials WHERE email = $1`
	return r.get(ctx, query, email)
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT user_id, email, salt, hash FROM credentials WHERE user_id = $1`
	return r.get(ctx, query, userID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg string) (*models.Credential, error) {
	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&cred.UserID, &cred.Email, &cred.Salt, &cred.Hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return cred, nil
}

func (r *PostgresRepository) Update(ctx context.Context, cred *models.Credential) error {
	query := `UPDATE credentials SET email = $1, salt = $2, hash = $3 WHERE user_id = $4`

	res, err := r.db.ExecContext(ctx, query, cred.Email, cred.Salt, cred.Hash, cred.UserID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
