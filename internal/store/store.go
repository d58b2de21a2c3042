// Package store is the generic persistence layer. One Store is built per
// entity type at startup and handed to the services that need it.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record violates a unique constraint")
)

// Record is implemented by every persisted model.
type Record interface {
	RecordID() string
}

// Filter matches records field by field. Keys are column names ("user_id"),
// and "id" always means the primary key. A nil value matches a null field.
type Filter map[string]any

// Fields is a partial update keyed by column name.
type Fields map[string]any

// Before matches values strictly lower than T.
type Before struct {
	T time.Time
}

// With returns a copy of f extended with the pairs of g.
func (f Filter) With(g Filter) Filter {
	out := make(Filter, len(f)+len(g))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range g {
		out[k] = v
	}

	return out
}

type Store[T Record] interface {
	Create(ctx context.Context, v *T) error
	Read(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, fields Fields) (*T, error)
	Delete(ctx context.Context, id string) error

	FindOne(ctx context.Context, f Filter) (*T, error)
	FindAll(ctx context.Context, f Filter) ([]T, error)

	// UpdateOne applies fields to the single record matching f. The filter is
	// re-checked by the write itself, so a record changed concurrently so that
	// it no longer matches yields ErrNotFound.
	UpdateOne(ctx context.Context, f Filter, fields Fields) (*T, error)
	DeleteOne(ctx context.Context, f Filter) error

	UpdateMany(ctx context.Context, f Filter, fields Fields) (int64, error)
	DeleteMany(ctx context.Context, f Filter) (int64, error)
}
