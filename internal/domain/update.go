package domain

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/cbsr/biobank/internal/future"
)

// Getter, Poster and Deleter are the calls the domain layer makes on the
// REST transport. Each resolves to the "data" member of a success reply.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error)
}

type Poster interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

type Deleter interface {
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

// Transport is the full REST collaborator.
type Transport interface {
	Getter
	Poster
	Deleter
}

// UpdateCommand returns extra with expectedVersion set to version. The
// version always wins over an expectedVersion key in extra.
func UpdateCommand(version int64, extra map[string]any) map[string]any {
	body := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		body[k] = v
	}
	body["expectedVersion"] = version
	return body
}

// Update posts {expectedVersion} plus extra to path and builds the reply with
// f. entity is left untouched; callers replace their copy with the result.
// Transport failures are returned unchanged.
func Update[T Versioned](ctx context.Context, p Poster, f *Factory[T], entity T, path string, extra map[string]any) (T, error) {
	var zero T
	if f.Build == nil {
		return zero, ErrBuildNotOverridden
	}
	env := entity.Envelope()
	if env.IsNew() {
		return zero, NewDomainError("entity has not been added yet")
	}
	reply, err := p.Post(ctx, path, UpdateCommand(env.Version, extra))
	if err != nil {
		return zero, err
	}
	return f.Create(reply)
}

// AsyncUpdate runs Update in the background.
func AsyncUpdate[T Versioned](ctx context.Context, p Poster, f *Factory[T], entity T, path string, extra map[string]any) *future.Future[T] {
	return future.Go(ctx, func(ctx context.Context) (T, error) {
		return Update(ctx, p, f, entity, path, extra)
	})
}

// Remove issues a DELETE whose path carries the expected version and builds
// the reply, which is the entity after removal of a child element.
func Remove[T any](ctx context.Context, d Deleter, f *Factory[T], path string) (T, error) {
	var zero T
	if f.Build == nil {
		return zero, ErrBuildNotOverridden
	}
	reply, err := d.Delete(ctx, path)
	if err != nil {
		return zero, err
	}
	return f.Create(reply)
}

// Fetch GETs path and builds the reply with f.
func Fetch[T any](ctx context.Context, g Getter, f *Factory[T], path string, params url.Values) (T, error) {
	var zero T
	reply, err := g.Get(ctx, path, params)
	if err != nil {
		return zero, err
	}
	return f.Create(reply)
}

// Submit POSTs body to path and builds the reply with f. Used for commands
// that create entities.
func Submit[T any](ctx context.Context, p Poster, f *Factory[T], path string, body any) (T, error) {
	var zero T
	reply, err := p.Post(ctx, path, body)
	if err != nil {
		return zero, err
	}
	return f.Create(reply)
}
