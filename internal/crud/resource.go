// Package crud is the create/read/update/delete skeleton every resource in
// Lumo reuses. A resource service holds a Resource for its entity type and
// calls it explicitly, adding only the rules that differ.
package crud

import (
	"context"
	"errors"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/store"
	"lumo/task-api/pkg/validators"
)

type Resource[T store.Record] struct {
	Store store.Store[T]

	// Name is used in public messages, e.g. "Task not found".
	Name string
}

func New[T store.Record](s store.Store[T], name string) *Resource[T] {
	return &Resource[T]{Store: s, Name: name}
}

// Create validates v against its `validate` tags before writing it.
func (r *Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}

	if err := r.Store.Create(ctx, v); err != nil {
		return nil, r.classify(err)
	}

	return v, nil
}

// ReadOne returns the record with the given id that also matches scope.
// A record outside the scope is reported exactly like a missing one.
func (r *Resource[T]) ReadOne(ctx context.Context, id string, scope store.Filter) (*T, error) {
	v, err := r.Store.FindOne(ctx, scope.With(store.Filter{"id": id}))
	if err != nil {
		return nil, r.classify(err)
	}

	return v, nil
}

// Update applies fields to the scoped record. check, when set, validates the
// record as it would look after the update; it runs before the write.
func (r *Resource[T]) Update(ctx context.Context, id string, scope store.Filter, fields store.Fields, check func(*T) error) (*T, error) {
	f := scope.With(store.Filter{"id": id})

	if check != nil {
		cur, err := r.Store.FindOne(ctx, f)
		if err != nil {
			return nil, r.classify(err)
		}

		if err := check(cur); err != nil {
			return nil, err
		}
	}

	if len(fields) == 0 {
		return r.ReadOne(ctx, id, scope)
	}

	v, err := r.Store.UpdateOne(ctx, f, fields)
	if err != nil {
		return nil, r.classify(err)
	}

	return v, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string, scope store.Filter) error {
	if err := r.Store.DeleteOne(ctx, scope.With(store.Filter{"id": id})); err != nil {
		return r.classify(err)
	}

	return nil
}

func (r *Resource[T]) ListAll(ctx context.Context, f store.Filter) ([]T, error) {
	out, err := r.Store.FindAll(ctx, f)
	if err != nil {
		return nil, r.classify(err)
	}

	return out, nil
}

// Exists reports whether any record matches f.
func (r *Resource[T]) Exists(ctx context.Context, f store.Filter) (bool, error) {
	_, err := r.Store.FindOne(ctx, f)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, apperr.Internal(err)
	}
}

func (r *Resource[T]) classify(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(r.Name + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(r.Name + " already exists")
	default:
		return apperr.Internal(err)
	}
}

// Validate runs the struct rules of v and turns violations into a
// validation error listing each field.
func Validate(v any) error {
	err := validators.Struct(v)
	if err == nil {
		return nil
	}

	var se validators.StructError
	if !errors.As(err, &se) {
		return apperr.Internal(err)
	}

	fields := make([]apperr.FieldViolation, len(se))
	for i, f := range se {
		fields[i] = apperr.FieldViolation{Field: f.Field, Rule: f.Rule}
	}

	return apperr.Validation("Invalid input", fields...)
}
