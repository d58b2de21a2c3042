package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo is a Store backed by a MongoDB collection. Models map their primary
// key to "_id" through bson tags and use the same field names as their SQL
// columns, so the same Filter works against both backends.
type Mongo[T Record] struct {
	coll *mongo.Collection
}

func NewMongo[T Record](coll *mongo.Collection) *Mongo[T] {
	return &Mongo[T]{coll: coll}
}

func (s *Mongo[T]) Create(ctx context.Context, v *T) error {
	_, err := s.coll.InsertOne(ctx, v)
	return translateMongo(err)
}

func (s *Mongo[T]) Read(ctx context.Context, id string) (*T, error) {
	return s.FindOne(ctx, Filter{"id": id})
}

func (s *Mongo[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	return s.UpdateOne(ctx, Filter{"id": id}, fields)
}

func (s *Mongo[T]) Delete(ctx context.Context, id string) error {
	return s.DeleteOne(ctx, Filter{"id": id})
}

func (s *Mongo[T]) FindOne(ctx context.Context, f Filter) (*T, error) {
	var v T

	if err := s.coll.FindOne(ctx, toBSON(f)).Decode(&v); err != nil {
		return nil, translateMongo(err)
	}

	return &v, nil
}

func (s *Mongo[T]) FindAll(ctx context.Context, f Filter) ([]T, error) {
	cur, err := s.coll.Find(ctx, toBSON(f), options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, translateMongo(err)
	}

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translateMongo(err)
	}

	return out, nil
}

// UpdateOne maps onto findOneAndUpdate, which matches and writes atomically.
func (s *Mongo[T]) UpdateOne(ctx context.Context, f Filter, fields Fields) (*T, error) {
	var v T

	err := s.coll.FindOneAndUpdate(ctx, toBSON(f), setDoc(fields),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if err != nil {
		return nil, translateMongo(err)
	}

	return &v, nil
}

func (s *Mongo[T]) DeleteOne(ctx context.Context, f Filter) error {
	r, err := s.coll.DeleteOne(ctx, toBSON(f))
	if err != nil {
		return translateMongo(err)
	}

	if r.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Mongo[T]) UpdateMany(ctx context.Context, f Filter, fields Fields) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("refusing to update without a filter")
	}

	r, err := s.coll.UpdateMany(ctx, toBSON(f), setDoc(fields))
	if err != nil {
		return 0, translateMongo(err)
	}

	return r.ModifiedCount, nil
}

func (s *Mongo[T]) DeleteMany(ctx context.Context, f Filter) (int64, error) {
	if len(f) == 0 {
		return 0, errors.New("refusing to delete without a filter")
	}

	r, err := s.coll.DeleteMany(ctx, toBSON(f))
	if err != nil {
		return 0, translateMongo(err)
	}

	return r.DeletedCount, nil
}

func toBSON(f Filter) bson.M {
	m := bson.M{}
	for k, v := range f {
		if k == "id" {
			k = "_id"
		}

		switch c := v.(type) {
		case Before:
			m[k] = bson.M{"$lt": c.T}
		default:
			m[k] = v
		}
	}

	return m
}

func setDoc(fields Fields) bson.M {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	return bson.M{"$set": set}
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
