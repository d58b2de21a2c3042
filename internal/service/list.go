package service

import (
	"context"
	"strings"
	"time"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/crud"
	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var errListNotOwned = apperr.Validation("List not found or does not belong to user")

func newID() (string, error) {
	return gonanoid.Generate(idCharset, 16)
}

type Lists struct {
	lists *crud.Resource[model.List]
	tasks *crud.Resource[model.Task]
	now   func() time.Time
}

func NewLists(lists store.Store[model.List], tasks store.Store[model.Task]) *Lists {
	return &Lists{
		lists: crud.New(lists, "List"),
		tasks: crud.New(tasks, "Task"),
		now:   time.Now,
	}
}

// Create adds a list for userID. Titles are unique per user.
func (s *Lists) Create(ctx context.Context, userID, title, description string) (*model.List, error) {
	title = strings.TrimSpace(title)

	l := &model.List{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
	}

	if err := crud.Validate(l); err != nil {
		return nil, err
	}

	taken, err := s.lists.Exists(ctx, store.Filter{"user_id": userID, "title": title})
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, apperr.Conflict("List name already exists for this user")
	}

	l.ID, err = newID()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	l.CreatedAt, l.UpdatedAt = now, now

	l, err = s.lists.Create(ctx, l)
	if apperr.Is(err, apperr.KindConflict) {
		// Lost a race against an identical request
		return nil, apperr.Conflict("List name already exists for this user")
	}

	return l, err
}

func (s *Lists) ListByUser(ctx context.Context, userID string) ([]model.List, error) {
	return s.lists.ListAll(ctx, store.Filter{"user_id": userID})
}

// Tasks returns the tasks of one of userID's lists.
func (s *Lists) Tasks(ctx context.Context, userID, listID string) ([]model.Task, error) {
	if _, err := s.lists.ReadOne(ctx, listID, store.Filter{"user_id": userID}); err != nil {
		return nil, err
	}

	return s.tasks.ListAll(ctx, store.Filter{"user_id": userID, "list_id": listID})
}

// CheckOwned fails with a validation error unless listID names a list that
// belongs to userID.
func (s *Lists) CheckOwned(ctx context.Context, userID, listID string) error {
	if listID == "" {
		return errListNotOwned
	}

	ok, err := s.lists.Exists(ctx, store.Filter{"id": listID, "user_id": userID})
	if err != nil {
		return err
	}

	if !ok {
		return errListNotOwned
	}

	return nil
}

func (s *Lists) deleteAllFor(ctx context.Context, userID string) error {
	if _, err := s.lists.Store.DeleteMany(ctx, store.Filter{"user_id": userID}); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

func (s *Lists) Resource() *crud.Resource[model.List] {
	return s.lists
}
