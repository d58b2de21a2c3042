// Package service holds Lumo's business rules: accounts, password resets,
// lists and tasks. Services talk to storage only through store.Store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"lumo/task-api/internal/apperr"
	"lumo/task-api/internal/crud"
	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"
	"lumo/task-api/pkg/security"
	"lumo/task-api/pkg/validators"

	"go.uber.org/zap"
)

const msgBadCredentials = "Email or password are incorrect"

type AccountOptions struct {
	// FrontendURL is the base the reset link points to.
	FrontendURL string
	AccessTTL   time.Duration
	ResetTTL    time.Duration

	// DefaultListTitle is provisioned for every new account. Empty disables it.
	DefaultListTitle string

	// PasswordPolicy enforces the strength rule on new passwords.
	PasswordPolicy bool
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Age             json.Number
	Email           string
	Password        string
	ConfirmPassword string
}

type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Age       *int
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userID"`
}

type Accounts struct {
	users  *crud.Resource[model.User]
	lists  *Lists
	tasks  *Tasks
	hasher security.Hasher
	signer security.Signer
	mailer Mailer
	opts   AccountOptions
	now    func() time.Time
}

func NewAccounts(users store.Store[model.User], lists *Lists, tasks *Tasks, h security.Hasher, s security.Signer, m Mailer, opts AccountOptions) *Accounts {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = time.Hour
	}

	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}

	return &Accounts{
		users:  crud.New(users, "User"),
		lists:  lists,
		tasks:  tasks,
		hasher: h,
		signer: s,
		mailer: m,
		opts:   opts,
		now:    time.Now,
	}
}

// Register creates an account and, when configured, its default list.
func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	var missing []apperr.FieldViolation
	for _, f := range []struct{ name, val string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"age", in.Age.String()},
		{"email", in.Email},
		{"password", in.Password},
		{"confirmPassword", in.ConfirmPassword},
	} {
		if f.val == "" {
			missing = append(missing, apperr.FieldViolation{Field: f.name, Rule: "required"})
		}
	}

	if len(missing) > 0 {
		return nil, apperr.Validation("All fields are required", missing...)
	}

	age, err := parseAge(in.Age)
	if err != nil {
		return nil, apperr.Validation("Age must be a non-negative number",
			apperr.FieldViolation{Field: "age", Rule: "gte=0"})
	}

	if err := validators.EmailValidator(in.Email); err != nil {
		return nil, apperr.Validation("Invalid email address",
			apperr.FieldViolation{Field: "email", Rule: "email"})
	}

	if err := s.checkNewPassword(in.Password, in.ConfirmPassword, "password"); err != nil {
		return nil, err
	}

	taken, err := s.users.Exists(ctx, store.Filter{"email": in.Email})
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, errEmailTaken()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	id, err := newID()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.now()
	u, err := s.users.Create(ctx, &model.User{
		ID:           id,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Age:          age,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, errEmailTaken()
		}

		return nil, err
	}

	if s.opts.DefaultListTitle != "" {
		if _, err := s.lists.Create(ctx, u.ID, s.opts.DefaultListTitle, ""); err != nil {
			// The account is usable without it, the user can create lists later
			zap.L().Warn("Failed to create default list", zap.String("userID", u.ID), zap.Error(err))
		}
	}

	return u, nil
}

// Login answers identically for an unknown email and a wrong password.
func (s *Accounts) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	u, err := s.users.Store.FindOne(ctx, store.Filter{"email": email})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Authentication(msgBadCredentials)
		}

		return nil, apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if !ok {
		return nil, apperr.Authentication(msgBadCredentials)
	}

	token, err := s.signer.Sign(security.Claims{
		UserID:  u.ID,
		Email:   u.Email,
		Purpose: security.PurposeAuth,
	}, s.opts.AccessTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{Token: token, UserID: u.ID}, nil
}

// Profile returns the caller's own account.
func (s *Accounts) Profile(ctx context.Context, callerID, id string) (*model.User, error) {
	if err := checkSelf(callerID, id); err != nil {
		return nil, err
	}

	return s.users.ReadOne(ctx, id, nil)
}

func (s *Accounts) UpdateProfile(ctx context.Context, callerID, id string, p ProfilePatch) (*model.User, error) {
	if err := checkSelf(callerID, id); err != nil {
		return nil, err
	}

	fields := store.Fields{}

	if p.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*p.FirstName)
	}

	if p.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*p.LastName)
	}

	if p.Age != nil {
		fields["age"] = *p.Age
	}

	check := func(cur *model.User) error {
		next := *cur
		if v, ok := fields["first_name"]; ok {
			next.FirstName = v.(string)
		}
		if v, ok := fields["last_name"]; ok {
			next.LastName = v.(string)
		}
		if p.Age != nil {
			next.Age = *p.Age
		}

		return crud.Validate(&next)
	}

	return s.users.Update(ctx, id, nil, fields, check)
}

// DeleteAccount removes the caller's account with its lists and tasks.
func (s *Accounts) DeleteAccount(ctx context.Context, callerID, id string) error {
	if err := checkSelf(callerID, id); err != nil {
		return err
	}

	// The account goes first. Leftover lists or tasks can't be reached
	// without it, while an account missing half its data could.
	if err := s.users.Delete(ctx, id, nil); err != nil {
		return err
	}

	if err := s.tasks.deleteAllFor(ctx, id); err != nil {
		zap.L().Error("Failed to delete tasks of removed account", zap.String("userID", id), zap.Error(err))
	}

	if err := s.lists.deleteAllFor(ctx, id); err != nil {
		zap.L().Error("Failed to delete lists of removed account", zap.String("userID", id), zap.Error(err))
	}

	return nil
}

// checkNewPassword is shared by registration and reset confirmation.
func (s *Accounts) checkNewPassword(p, confirm, field string) error {
	if err := validators.PasswordMatch(p, confirm); err != nil {
		switch err {
		case validators.ErrPasswordMismatch:
			return apperr.Validation("Passwords do not match",
				apperr.FieldViolation{Field: "confirmPassword", Rule: "eqfield=" + field})
		case validators.ErrPasswordEmpty:
			return apperr.Validation("Password and confirmation are required",
				apperr.FieldViolation{Field: field, Rule: "required"})
		default:
			return apperr.Validation(err.Error(), apperr.FieldViolation{Field: field, Rule: "max=255"})
		}
	}

	if s.opts.PasswordPolicy {
		if err := validators.PasswordValidator(p); err != nil {
			return apperr.Validation(err.Error(), apperr.FieldViolation{Field: field, Rule: "strength"})
		}
	}

	return nil
}

// checkSelf hides every account but the caller's own behind the same
// not found answer a missing account gets.
func checkSelf(callerID, id string) error {
	if callerID == "" || callerID != id {
		return apperr.NotFound("User not found")
	}

	return nil
}

// parseAge accepts any non-negative whole number, including forms like
// 30.0 or 3e1.
func parseAge(n json.Number) (int, error) {
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, errors.New("invalid age")
	}

	return int(f), nil
}

func errEmailTaken() error {
	return apperr.Conflict("This email is already registered. Please login or use a different email")
}

// UserExists reports whether an account with id is still registered.
func (s *Accounts) UserExists(ctx context.Context, id string) (bool, error) {
	return s.users.Exists(ctx, store.Filter{"id": id})
}
