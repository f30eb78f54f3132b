package domain

import (
	"encoding/json"
	"fmt"

	"github.com/cbsr/biobank/internal/future"
)

// Validation is the outcome of Factory.Validate.
type Validation struct {
	Valid   bool
	Message string
}

// Check is a sub-validator run on a payload that already passed the schema.
type Check func(raw json.RawMessage) error

// Factory validates untrusted payloads and builds entities of type T from
// them. Build must be set; without it every Create fails with
// ErrBuildNotOverridden.
type Factory[T any] struct {
	// Plural names the entity in list errors, e.g. "studies".
	Plural string
	Schema *Schema
	Checks []Check
	Build  func(raw json.RawMessage) (T, error)
}

// Validate checks raw against the schema and then every Check. It never
// fails with an error.
func (f *Factory[T]) Validate(raw json.RawMessage) Validation {
	if f.Schema != nil {
		if err := f.Schema.Validate(raw); err != nil {
			return Validation{Message: "invalid object from server: " + err.Error()}
		}
	}
	for _, check := range f.Checks {
		if err := check(raw); err != nil {
			return Validation{Message: err.Error()}
		}
	}
	return Validation{Valid: true}
}

// Create validates raw and builds the entity. A failed validation returns a
// *ValidationError and no entity.
func (f *Factory[T]) Create(raw json.RawMessage) (T, error) {
	var zero T
	if v := f.Validate(raw); !v.Valid {
		return zero, &ValidationError{Message: v.Message}
	}
	if f.Build == nil {
		return zero, ErrBuildNotOverridden
	}
	entity, err := f.Build(raw)
	if err != nil {
		return zero, &ValidationError{Message: "invalid object from server: " + err.Error()}
	}
	return entity, nil
}

// MustCreate is Create for trusted constants. It panics on failure.
func (f *Factory[T]) MustCreate(raw json.RawMessage) T {
	entity, err := f.Create(raw)
	if err != nil {
		panic(err)
	}
	return entity
}

// AsyncCreate is Create returning an already settled Future, for use inside
// chains of asynchronous calls.
func (f *Factory[T]) AsyncCreate(raw json.RawMessage) *future.Future[T] {
	entity, err := f.Create(raw)
	if err != nil {
		return future.Rejected[T](err)
	}
	return future.Resolved(entity)
}

// CreateList builds every element of a JSON array. Any invalid element fails
// the whole list.
func (f *Factory[T]) CreateList(raw json.RawMessage) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, f.listError()
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := f.Create(item)
		if err != nil {
			return nil, f.listError()
		}
		out = append(out, entity)
	}
	return out, nil
}

// CreatePaged builds a PagedResult whose items are built by f.
func (f *Factory[T]) CreatePaged(raw json.RawMessage) (*PagedResult[T], error) {
	var page struct {
		Items    json.RawMessage `json:"items"`
		Page     int             `json:"page"`
		PageSize int             `json:"pageSize"`
		Offset   int             `json:"offset"`
		Total    int             `json:"total"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, f.listError()
	}
	items := []T{}
	if len(page.Items) > 0 && string(page.Items) != "null" {
		var err error
		if items, err = f.CreateList(page.Items); err != nil {
			return nil, err
		}
	}
	return &PagedResult[T]{
		Items:    items,
		Page:     page.Page,
		PageSize: page.PageSize,
		Offset:   page.Offset,
		Total:    page.Total,
	}, nil
}

func (f *Factory[T]) listError() error {
	plural := f.Plural
	if plural == "" {
		plural = "objects"
	}
	return &ValidationError{Message: fmt.Sprintf("invalid %s from server", plural)}
}

// decode is the Build step shared by entities whose wire form is their
// struct form.
func decode[T any](raw json.RawMessage) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// field returns the raw value of key in the JSON object raw.
func field(raw json.RawMessage, key string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}
