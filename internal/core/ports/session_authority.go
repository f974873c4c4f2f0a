package ports

import (
	"context"

	"github.com/bankcore/account-service/internal/core/domain"
)

// SessionAuthority verifies credentials and issues session tokens.
type SessionAuthority interface {
	// Authenticate resolves the identity for a username/password pair.
	// Fails with domain.ErrAuthenticationFailed when the username is unknown
	// or the password does not verify.
	Authenticate(ctx context.Context, username, password string) (*domain.AuthenticatedIdentity, error)
	// IssueToken signs a session token for an already-authenticated identity.
	IssueToken(identity *domain.AuthenticatedIdentity) (string, error)
}

// PasswordHasher is the one-way encode/verify capability for credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hash, plaintext string) bool
}

// LoginThrottle tracks consecutive failed login attempts per username.
type LoginThrottle interface {
	IsLocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
