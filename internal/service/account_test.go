package service

import (
	"context"
	"encoding/json"
	"testing"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesAccountAndDefaultList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.register(t, "alice@example.com")
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "Str0ng!pass", u.PasswordHash)
	assert.Contains(t, u.PasswordHash, "$argon2id$")

	lists, err := f.Lists.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "General Tasks", lists[0].Title)
}

func TestRegisterPasswordMismatchPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.Accounts.Register(ctx, RegisterInput{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Age:             "30",
		Email:           "alice@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pasS",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	all, err := f.users.FindAll(ctx, store.Filter{"email": "alice@example.com"})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRegisterValidation(t *testing.T) {
	valid := RegisterInput{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Age:             "30",
		Email:           "alice@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }, "firstName"},
		{"missing age", func(in *RegisterInput) { in.Age = "" }, "age"},
		{"negative age", func(in *RegisterInput) { in.Age = "-1" }, "age"},
		{"age not a number", func(in *RegisterInput) { in.Age = "thirty" }, "age"},
		{"fractional age", func(in *RegisterInput) { in.Age = "30.5" }, "age"},
		{"bad email", func(in *RegisterInput) { in.Email = "alice" }, "email"},
		{"missing confirmation", func(in *RegisterInput) { in.ConfirmPassword = "" }, "confirmPassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			in := valid
			tt.mutate(&in)

			_, err := f.Accounts.Register(context.Background(), in)
			require.Error(t, err)

			e := apperr.From(err)
			assert.Equal(t, apperr.KindValidation, e.Kind)

			var fields []string
			for _, v := range e.Fields {
				fields = append(fields, v.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestRegisterPasswordPolicy(t *testing.T) {
	f := newFixture(t)
	f.Accounts.opts.PasswordPolicy = true

	_, err := f.Accounts.Register(context.Background(), RegisterInput{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Age:             "30",
		Email:           "alice@example.com",
		Password:        "weakpassword",
		ConfirmPassword: "weakpassword",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice@example.com")

	_, err := f.Accounts.Register(ctx, RegisterInput{
		FirstName:       "Other",
		LastName:        "Person",
		Age:             "41",
		Email:           "alice@example.com",
		Password:        "An0ther!pass",
		ConfirmPassword: "An0ther!pass",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	all, err := f.users.FindAll(ctx, store.Filter{"email": "alice@example.com"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice@example.com")

	res, err := f.Accounts.Login(context.Background(), "alice@example.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)

	claims, err := f.signer.Verify(res.Token, "auth")
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice@example.com")

	_, wrongPass := f.Accounts.Login(ctx, "alice@example.com", "nope")
	_, unknown := f.Accounts.Login(ctx, "bob@example.com", "Str0ng!pass")

	a, b := apperr.From(wrongPass), apperr.From(unknown)
	assert.Equal(t, apperr.KindAuthentication, a.Kind)
	assert.Equal(t, a.Kind, b.Kind)
	assert.Equal(t, "Email or password are incorrect", a.Message)
	assert.Equal(t, a.Message, b.Message)
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.Accounts.Login(context.Background(), "", "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestProfileIsSelfScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice@example.com")
	bob := f.register(t, "bob@example.com")

	got, err := f.Accounts.Profile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = f.Accounts.Profile(ctx, alice.ID, bob.ID)
	foreign := apperr.From(err)
	_, err = f.Accounts.Profile(ctx, alice.ID, "missing")
	missing := apperr.From(err)

	assert.Equal(t, apperr.KindNotFound, foreign.Kind)
	assert.Equal(t, missing.Message, foreign.Message)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	name := "Alicia"
	age := 31
	got, err := f.Accounts.UpdateProfile(ctx, u.ID, u.ID, ProfilePatch{FirstName: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)
	assert.Equal(t, "Liddell", got.LastName)
	assert.Equal(t, 31, got.Age)

	neg := -3
	_, err = f.Accounts.UpdateProfile(ctx, u.ID, u.ID, ProfilePatch{Age: &neg})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteAccountRemovesOwnedData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	lists, err := f.Lists.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	_, err = f.Tasks.Create(ctx, u.ID, TaskInput{Title: "Milk", ListID: lists[0].ID})
	require.NoError(t, err)

	require.NoError(t, f.Accounts.DeleteAccount(ctx, u.ID, u.ID))

	_, err = f.users.Read(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	tasks, err := f.tasks.FindAll(ctx, store.Filter{"user_id": u.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	lists, err = f.lists.FindAll(ctx, store.Filter{"user_id": u.ID})
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestRegisterAcceptsWholeNumberAgeForms(t *testing.T) {
	for _, age := range []json.Number{"30", "30.0", "3e1"} {
		t.Run(string(age), func(t *testing.T) {
			f := newFixture(t)

			u, err := f.Accounts.Register(context.Background(), RegisterInput{
				FirstName:       "Alice",
				LastName:        "Liddell",
				Age:             age,
				Email:           "alice@example.com",
				Password:        "Str0ng!pass",
				ConfirmPassword: "Str0ng!pass",
			})
			require.NoError(t, err)
			assert.Equal(t, 30, u.Age)
		})
	}
}

// brokenTaskStore fails every bulk delete.
type brokenTaskStore struct {
	store.Store[model.Task]
}

func (brokenTaskStore) DeleteMany(context.Context, store.Filter) (int64, error) {
	return 0, errBoom
}

func TestDeleteAccountRemovesUserEvenIfCleanupFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "alice@example.com")

	f.Accounts.tasks = NewTasks(brokenTaskStore{f.tasks}, f.Lists)

	require.NoError(t, f.Accounts.DeleteAccount(ctx, u.ID, u.ID))

	_, err := f.users.Read(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The lists cleanup still ran after the task cleanup failed
	lists, err := f.lists.FindAll(ctx, store.Filter{"user_id": u.ID})
	require.NoError(t, err)
	assert.Empty(t, lists)

	_, err = f.Accounts.Login(ctx, "alice@example.com", "Str0ng!pass")
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}
