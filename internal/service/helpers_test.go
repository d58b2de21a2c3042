package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"lumo/task-api/internal/model"
	"lumo/task-api/internal/store"
	"lumo/task-api/internal/storetest"
	"lumo/task-api/pkg/security"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return sentMail{}
	}

	return m.sent[len(m.sent)-1]
}

var tokenInLink = regexp.MustCompile(`token=([A-Za-z0-9._\-]+)`)

// tokenFrom pulls the reset token out of a mailed link.
func tokenFrom(t *testing.T, body string) string {
	t.Helper()

	m := tokenInLink.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no token in mail body %q", body)
	}

	return m[1]
}

type fixture struct {
	users  store.Store[model.User]
	lists  store.Store[model.List]
	tasks  store.Store[model.Task]
	signer *security.JWTSigner
	mailer *fakeMailer

	Accounts *Accounts
	Lists    *Lists
	Tasks    *Tasks
}

func fastHasher() *security.ArgonHash {
	return &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := storetest.NewSQLite(t)

	f := &fixture{
		users:  store.NewGorm[model.User](db),
		lists:  store.NewGorm[model.List](db),
		tasks:  store.NewGorm[model.Task](db),
		signer: security.NewJWTSigner("test-secret"),
		mailer: &fakeMailer{},
	}

	f.Lists = NewLists(f.lists, f.tasks)
	f.Tasks = NewTasks(f.tasks, f.Lists)
	f.Accounts = NewAccounts(f.users, f.Lists, f.Tasks, fastHasher(), f.signer, f.mailer, AccountOptions{
		FrontendURL:      "https://lumo.example",
		AccessTTL:        time.Hour,
		ResetTTL:         time.Hour,
		DefaultListTitle: "General Tasks",
	})

	return f
}

func (f *fixture) register(t *testing.T, email string) *model.User {
	t.Helper()

	u, err := f.Accounts.Register(context.Background(), RegisterInput{
		FirstName:       "Alice",
		LastName:        "Liddell",
		Age:             "30",
		Email:           email,
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}

	return u
}

var errBoom = errors.New("boom")
