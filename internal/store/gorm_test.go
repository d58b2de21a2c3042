package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type note struct {
	ID        string `gorm:"primaryKey"`
	Owner     string `gorm:"index"`
	Title     string `gorm:"uniqueIndex"`
	Token     *string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n note) RecordID() string { return n.ID }

func newNoteStore(t *testing.T) *Gorm[note] {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&note{}))

	return NewGorm[note](db)
}

func strPtr(s string) *string { return &s }

func TestGormCreateRead(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Owner: "alice", Title: "groceries"}))

	got, err := s.Read(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormCreateDuplicate(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Title: "same"}))

	err := s.Create(ctx, &note{ID: "n2", Title: "same"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGormUpdate(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Owner: "alice", Title: "a"}))

	got, err := s.Update(ctx, "n1", Fields{"title": "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	assert.Equal(t, "alice", got.Owner)

	_, err = s.Update(ctx, "missing", Fields{"title": "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormScopedOperationsHideOtherOwners(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Owner: "alice", Title: "a"}))

	_, err := s.FindOne(ctx, Filter{"id": "n1", "owner": "bob"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateOne(ctx, Filter{"id": "n1", "owner": "bob"}, Fields{"title": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.DeleteOne(ctx, Filter{"id": "n1", "owner": "bob"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteOne(ctx, Filter{"id": "n1", "owner": "alice"}))

	_, err = s.Read(ctx, "n1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormUpdateOneIsConditional(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Title: "a", Token: strPtr("t1")}))

	f := Filter{"id": "n1", "token": "t1"}
	got, err := s.UpdateOne(ctx, f, Fields{"token": nil})
	require.NoError(t, err)
	assert.Nil(t, got.Token)

	// The filter no longer matches once the token is cleared
	_, err = s.UpdateOne(ctx, f, Fields{"token": nil})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormFindAllFiltersAndOrders(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	require.NoError(t, s.Create(ctx, &note{ID: "n2", Owner: "alice", Title: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.Create(ctx, &note{ID: "n1", Owner: "alice", Title: "first", CreatedAt: base}))
	require.NoError(t, s.Create(ctx, &note{ID: "n3", Owner: "bob", Title: "other"}))

	got, err := s.FindAll(ctx, Filter{"owner": "alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, "n2", got[1].ID)

	none, err := s.FindAll(ctx, Filter{"owner": "carol"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGormUpdateManyBefore(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Title: "old", Token: strPtr("a"), ExpiresAt: &past}))
	require.NoError(t, s.Create(ctx, &note{ID: "n2", Title: "live", Token: strPtr("b"), ExpiresAt: &future}))

	n, err := s.UpdateMany(ctx, Filter{"expires_at": Before{T: time.Now()}}, Fields{"token": nil, "expires_at": nil})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	old, err := s.Read(ctx, "n1")
	require.NoError(t, err)
	assert.Nil(t, old.Token)
	assert.Nil(t, old.ExpiresAt)

	live, err := s.Read(ctx, "n2")
	require.NoError(t, err)
	require.NotNil(t, live.Token)
	assert.Equal(t, "b", *live.Token)
}

func TestGormManyRequiresFilter(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	_, err := s.UpdateMany(ctx, Filter{}, Fields{"title": "x"})
	assert.Error(t, err)

	_, err = s.DeleteMany(ctx, nil)
	assert.Error(t, err)
}

func TestGormDeleteMany(t *testing.T) {
	s := newNoteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &note{ID: "n1", Owner: "alice", Title: "a"}))
	require.NoError(t, s.Create(ctx, &note{ID: "n2", Owner: "alice", Title: "b"}))
	require.NoError(t, s.Create(ctx, &note{ID: "n3", Owner: "bob", Title: "c"}))

	n, err := s.DeleteMany(ctx, Filter{"owner": "alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	rest, err := s.FindAll(ctx, Filter{"owner": "bob"})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestFilterWith(t *testing.T) {
	f := Filter{"id": "n1"}
	g := f.With(Filter{"owner": "alice"})

	assert.Len(t, f, 1)
	assert.Equal(t, Filter{"id": "n1", "owner": "alice"}, g)
}
