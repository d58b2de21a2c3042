package service

import (
	"context"
	"strings"
	"time"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/crud"
	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// TaskInput is the body of a task creation.
type TaskInput struct {
	Title       string
	Description string
	Status      string
	DueDate     string
	ListID      string
}

// TaskPatch carries the fields of a partial update. Nil means unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *string
	ListID      *string
}

type Tasks struct {
	tasks *crud.Resource[model.Task]
	lists *Lists
	now   func() time.Time
}

func NewTasks(tasks store.Store[model.Task], lists *Lists) *Tasks {
	return &Tasks{
		tasks: crud.New(tasks, "Task"),
		lists: lists,
		now:   time.Now,
	}
}

func (s *Tasks) Create(ctx context.Context, userID string, in TaskInput) (*model.Task, error) {
	due, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	status := model.TaskStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = model.StatusUnassigned
	}

	t := &model.Task{
		UserID:      userID,
		ListID:      in.ListID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		DueDate:     due,
	}

	if err := crud.Validate(t); err != nil {
		return nil, err
	}

	if err := s.lists.CheckOwned(ctx, userID, in.ListID); err != nil {
		return nil, err
	}

	t.ID, err = newID()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now

	return s.tasks.Create(ctx, t)
}

func (s *Tasks) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	return s.tasks.ReadOne(ctx, id, store.Filter{"user_id": userID})
}

func (s *Tasks) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	return s.tasks.ListAll(ctx, store.Filter{"user_id": userID})
}

// Update changes only the fields set in p. Moving the task to another list
// re-runs the list ownership check.
func (s *Tasks) Update(ctx context.Context, userID, id string, p TaskPatch) (*model.Task, error) {
	fields := store.Fields{}

	if p.Title != nil {
		fields["title"] = strings.TrimSpace(*p.Title)
	}

	if p.Description != nil {
		fields["description"] = strings.TrimSpace(*p.Description)
	}

	if p.Status != nil {
		fields["status"] = model.TaskStatus(strings.TrimSpace(*p.Status))
	}

	if p.DueDate != nil {
		due, err := parseDueDate(*p.DueDate)
		if err != nil {
			return nil, err
		}
		fields["due_date"] = due
	}

	if p.ListID != nil {
		fields["list_id"] = *p.ListID
	}

	check := func(cur *model.Task) error {
		next := *cur
		if v, ok := fields["title"]; ok {
			next.Title = v.(string)
		}
		if v, ok := fields["description"]; ok {
			next.Description = v.(string)
		}
		if v, ok := fields["status"]; ok {
			next.Status = v.(model.TaskStatus)
		}
		if p.ListID != nil {
			next.ListID = *p.ListID
		}

		if err := crud.Validate(&next); err != nil {
			return err
		}

		if next.ListID != cur.ListID {
			return s.lists.CheckOwned(ctx, userID, next.ListID)
		}

		return nil
	}

	return s.tasks.Update(ctx, id, store.Filter{"user_id": userID}, fields, check)
}

// Delete removes one of userID's tasks. Another user's task is reported as
// not found.
func (s *Tasks) Delete(ctx context.Context, userID, id string) error {
	return s.tasks.Delete(ctx, id, store.Filter{"user_id": userID})
}

func (s *Tasks) deleteAllFor(ctx context.Context, userID string) error {
	if _, err := s.tasks.Store.DeleteMany(ctx, store.Filter{"user_id": userID}); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}

	return nil, apperr.Validation("Invalid input", apperr.FieldViolation{Field: "dueDate", Rule: "datetime"})
}

// Resource exposes the scoped CRUD skeleton behind Tasks for generic handlers.
func (s *Tasks) Resource() *crud.Resource[model.Task] {
	return s.tasks
}
