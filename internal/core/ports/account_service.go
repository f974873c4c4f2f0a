package ports

import (
	"context"

	"github.com/bankcore/account-service/internal/core/domain"
)

// RegisterInput carries a signup request. Roles is the optional set of
// requested role-name strings; nil or empty means the default role applies.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token    string
	ID       string
	Username string
	Email    string
	Roles    []string
}

// AccountService is the account lifecycle manager. Operations acting on the
// current caller take the authenticated identity explicitly; the transport
// layer resolves it from the verified session token.
type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
	ListAllByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error)
	UpdatePassword(ctx context.Context, identity *domain.AuthenticatedIdentity, oldPassword, newPassword string) error
	UpdateEmail(ctx context.Context, identity *domain.AuthenticatedIdentity, email string) error
	SetStatusDeletedByID(ctx context.Context, identity *domain.AuthenticatedIdentity, targetID string) error
	SetStatusByID(ctx context.Context, id string, status domain.Status) error
}
