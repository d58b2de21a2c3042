package internal

import (
	"lumo/task-api/internal/service"
	"lumo/task-api/pkg/security"
)

// Deps is what the HTTP handlers need to serve a request.
type Deps struct {
	Accounts *service.Accounts
	Lists    *service.Lists
	Tasks    *service.Tasks
	Signer   security.Signer
}
