package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/cbsr/biobank/internal/dbx"
	"github.com/cbsr/biobank/internal/server/migrations"
	"github.com/cbsr/biobank/internal/server/repositories/credentials"
	"github.com/cbsr/biobank/internal/server/repositories/records"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories and
// exposes a schema migration hook.
type PostgresRepositoryManager struct {
	db *sql.DB
}

func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db}
}

// OpenPostgres connects to dsn, checks the connection and migrates the
// schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	m := NewPostgresRepositoryManager(db)
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return m, nil
}

func (m *PostgresRepositoryManager) Records() records.Repository {
	return records.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Credentials() credentials.Repository {
	return credentials.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return dbx.WithSerializableTx(ctx, m.db, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, txRepositories{tx: tx})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

type txRepositories struct {
	tx dbx.DBTX
}

func (r txRepositories) Records() records.Repository {
	return records.NewPostgresRepository(r.tx)
}

func (r txRepositories) Credentials() credentials.Repository {
	return credentials.NewPostgresRepository(r.tx)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
