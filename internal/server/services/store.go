// Package services holds the business rules of the server of record. Every
// change follows one flow: load the record, compare the caller's expected
// version, apply the change to the decoded entity, bump the version and
// persist with the version check.
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/credentials"
	"github.com/cbsr/biobank/internal/server/repositories/records"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

var tracer = otel.Tracer("biobank/services")

// nowFn is a seam for tests.
var nowFn = func() time.Time { return time.Now().UTC() }

// newID is a seam for tests.
var newID = uuid.NewString

// ConflictObserver is told about every stale-version rejection.
type ConflictObserver interface {
	VersionConflict(kind string)
}

// store is shared by all services.
type store struct {
	repos     repomanager.RepositoryManager
	scope     repomanager.Repositories
	logger    logging.Logger
	conflicts ConflictObserver
}

func newStore(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &store{repos: repos, logger: logger, conflicts: conflicts}
}

func (s *store) records() records.Repository {
	if s.scope != nil {
		return s.scope.Records()
	}
	return s.repos.Records()
}

func (s *store) credentials() credentials.Repository {
	if s.scope != nil {
		return s.scope.Credentials()
	}
	return s.repos.Credentials()
}

// inTx runs fn with a copy of s bound to one transaction.
func (s *store) inTx(ctx context.Context, fn func(ctx context.Context, tx *store) error) error {
	return s.repos.InTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		tx := *s
		tx.scope = repos
		return fn(ctx, &tx)
	})
}

func (s *store) conflict(ctx context.Context, kind models.Kind, id string, version int64) error {
	if s.conflicts != nil {
		s.conflicts.VersionConflict(string(kind))
	}
	s.logger.Info(ctx, "stale version rejected", "kind", kind, "id", id, "version", version)
	return &VersionConflictError{ID: id, Version: version}
}

// entity is a pointer to a domain entity struct.
type entity[E any] interface {
	*E
	domain.Versioned
}

func decodeRecord[E any, P entity[E]](rec *models.Record) (P, error) {
	p := P(new(E))
	if err := json.Unmarshal(rec.Data, p); err != nil {
		return nil, errors.Wrapf(err, "decode %s %s", rec.Kind, rec.ID)
	}
	env := p.Envelope()
	env.ID = rec.ID
	env.Version = rec.Version
	env.TimeAdded = rec.TimeAdded
	env.TimeModified = rec.TimeModified
	return p, nil
}

func encodeRecord(kind models.Kind, v domain.Versioned) (*models.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", kind)
	}
	env := v.Envelope()
	return &models.Record{
		Kind:         kind,
		ID:           env.ID,
		Version:      env.Version,
		TimeAdded:    env.TimeAdded,
		TimeModified: env.TimeModified,
		Data:         data,
	}, nil
}

func load[E any, P entity[E]](ctx context.Context, repo records.Repository, kind models.Kind, id string) (P, error) {
	rec, err := repo.Get(ctx, kind, id)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s %s", kind, id)
	}
	return decodeRecord[E, P](rec)
}

func loadAll[E any, P entity[E]](ctx context.Context, repo records.Repository, kind models.Kind) ([]P, error) {
	recs, err := repo.List(ctx, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", kind)
	}
	out := make([]P, 0, len(recs))
	for _, rec := range recs {
		p, err := decodeRecord[E, P](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// insert assigns a new ID and version 0 to v and persists it.
func insert(ctx context.Context, repo records.Repository, kind models.Kind, v domain.Versioned) error {
	ctx, span := tracer.Start(ctx, "insert "+string(kind))
	defer span.End()

	env := v.Envelope()
	env.ID = newID()
	env.Version = 0
	env.TimeAdded = nowFn()
	env.TimeModified = nil

	rec, err := encodeRecord(kind, v)
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, rec); err != nil {
		span.RecordError(err)
		return errors.Wrapf(err, "insert %s", kind)
	}
	span.SetAttributes(attribute.String("id", env.ID))
	return nil
}

// mutate applies change to the entity kind/id when its version is expected
// and persists the result as version+1. A concurrent writer that got there
// first makes the final write fail with a conflict as well.
func mutate[E any, P entity[E]](ctx context.Context, s *store, kind models.Kind, id string, expected int64, change func(P) error) (P, error) {
	ctx, span := tracer.Start(ctx, "mutate "+string(kind))
	defer span.End()
	span.SetAttributes(attribute.String("id", id), attribute.Int64("expectedVersion", expected))

	repo := s.records()
	p, err := load[E, P](ctx, repo, kind, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	env := p.Envelope()
	if env.Version != expected {
		return nil, s.conflict(ctx, kind, id, env.Version)
	}

	if err := change(p); err != nil {
		return nil, err
	}

	now := nowFn()
	env.ID = id
	env.Version = expected + 1
	env.TimeModified = &now

	rec, err := encodeRecord(kind, p)
	if err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, rec, expected); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, s.conflict(ctx, kind, id, expected)
		}
		span.RecordError(err)
		return nil, errors.Wrapf(err, "update %s %s", kind, id)
	}
	return p, nil
}

// remove deletes kind/id when its version is version. check may veto the
// removal after looking at the current entity.
func remove[E any, P entity[E]](ctx context.Context, s *store, kind models.Kind, id string, version int64, check func(P) error) error {
	ctx, span := tracer.Start(ctx, "remove "+string(kind))
	defer span.End()

	repo := s.records()
	p, err := load[E, P](ctx, repo, kind, id)
	if err != nil {
		return err
	}
	if current := p.Envelope().Version; current != version {
		return s.conflict(ctx, kind, id, current)
	}
	if check != nil {
		if err := check(p); err != nil {
			return err
		}
	}
	if err := repo.Delete(ctx, kind, id, version); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return s.conflict(ctx, kind, id, version)
		}
		return errors.Wrapf(err, "delete %s %s", kind, id)
	}
	return nil
}

func ruleError(format string, args ...any) error {
	return domain.NewDomainError(format, args...)
}
