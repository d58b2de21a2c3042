package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is a Store backed by a SQL database through gorm. The database must
// be opened with TranslateError enabled so unique violations surface as
// gorm.ErrDuplicatedKey.
type Gorm[T Record] struct {
	db *gorm.DB
}

func NewGorm[T Record](db *gorm.DB) *Gorm[T] {
	return &Gorm[T]{db: db}
}

func (s *Gorm[T]) Create(ctx context.Context, v *T) error {
	return translate(s.db.WithContext(ctx).Create(v).Error)
}

func (s *Gorm[T]) Read(ctx context.Context, id string) (*T, error) {
	return s.FindOne(ctx, Filter{"id": id})
}

func (s *Gorm[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	return s.UpdateOne(ctx, Filter{"id": id}, fields)
}

func (s *Gorm[T]) Delete(ctx context.Context, id string) error {
	return s.DeleteOne(ctx, Filter{"id": id})
}

func (s *Gorm[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	var v T

	err := where(s.db.WithContext(ctx), f).
		First(&v).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return &v, nil
}

func (s *Gorm[T]) FindAll(ctx context.Context, f Filter) ([]T, error) {
	out := []T{}

	err := where(s.db.WithContext(ctx), f).
		Order("created_at asc").
		Find(&out).
		Error
	if err != nil {
		return nil, translate(err)
	}

	return out, nil
}

func (s *Gorm[T]) UpdateOne(ctx context.Context, f Filter, fields Fields) (*T, error) {
	var out T

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur T
		if err := where(tx, f).First(&cur).Error; err != nil {
			return err
		}

		id := Filter{"id": cur.RecordID()}

		r := where(tx.Model(new(T)), f.With(id)).Updates(map[string]any(fields))
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return where(tx, id).First(&out).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	return &out, nil
}

func (s *Gorm[T]) DeleteOne(ctx context.Context, f Filter) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur T
		if err := where(tx, f).First(&cur).Error; err != nil {
			return err
		}

		r := where(tx, Filter{"id": cur.RecordID()}).Delete(new(T))
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	return translate(err)
}

func (s *Gorm[T]) UpdateMany(ctx context.Context, f Filter, fields Fields) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("refusing to update without a filter")
	}

	r := where(s.db.WithContext(ctx).Model(new(T)), f).Updates(map[string]any(fields))
	if r.Error != nil {
		return 0, translate(r.Error)
	}

	return r.RowsAffected, nil
}

func (s *Gorm[T]) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("refusing to delete without a filter")
	}

	r := where(s.db.WithContext(ctx), f).Delete(new(T))
	if r.Error != nil {
		return 0, translate(r.Error)
	}

	return r.RowsAffected, nil
}

// where turns a Filter into WHERE clauses. Keys are sorted so the generated
// SQL is stable.
func where(db *gorm.DB, f Filter) *gorm.DB {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		col := clause.Column{Name: k}

		switch v := f[k].(type) {
		case Before:
			db = db.Where(clause.Lt{Column: col, Value: v.T})
		default:
			db = db.Where(clause.Eq{Column: col, Value: v})
		}
	}

	return db
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
