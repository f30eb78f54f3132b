package records

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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records (kind, id, version, time_added, time_modified, data)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		rec.Kind, rec.ID, rec.Version, rec.TimeAdded, rec.TimeModified, []byte(rec.Data))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	query := `SELECT kind, id, version, time_added, time_modified, data FROM records
		WHERE kind = $1 AND id = $2`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, kind models.Kind) ([]*models.Record, error) {
	query := `SELECT kind, id, version, time_added, time_modified, data FROM records
		WHERE kind = $1 ORDER BY time_added, id`

	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *models.Record, expectedVersion int64) error {
	query := `UPDATE records SET version = $1, time_modified = $2, data = $3
		WHERE kind = $4 AND id = $5 AND version = $6`

	res, err := r.db.ExecContext(ctx, query,
		rec.Version, rec.TimeModified, []byte(rec.Data), rec.Kind, rec.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return singleRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, kind models.Kind, id string, version int64) error {
	query := `DELETE FROM records WHERE kind = $1 AND id = $2 AND version = $3`

	res, err := r.db.ExecContext(ctx, query, kind, id, version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return singleRow(res)
}

func singleRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var (
		rec      models.Record
		modified sql.NullTime
		data     []byte
	)
	if err := s.Scan(&rec.Kind, &rec.ID, &rec.Version, &rec.TimeAdded, &modified, &data); err != nil {
		return nil, err
	}
	if modified.Valid {
		t := modified.Time
		rec.TimeModified = &t
	}
	rec.Data = data
	return &rec, nil
}
