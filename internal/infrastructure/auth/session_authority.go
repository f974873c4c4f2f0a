package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bankcore/account-service/internal/core/domain"
	"github.com/bankcore/account-service/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// SessionAuthority verifies credentials against the identity store and
// issues HS256 session tokens. It looks accounts up by username only and
// never consults account status.
type SessionAuthority struct {
	store     ports.IdentityStore
	hasher    ports.PasswordHasher
	throttle  ports.LoginThrottle // optional
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewSessionAuthority(
	store ports.IdentityStore,
	hasher ports.PasswordHasher,
	throttle ports.LoginThrottle,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *SessionAuthority {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &SessionAuthority{
		store:     store,
		hasher:    hasher,
		throttle:  throttle,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Authenticate resolves an identity for a username/password pair. Unknown
// usernames and bad passwords both fail with domain.ErrAuthenticationFailed.
// With a throttle configured, a locked username fails fast with
// domain.ErrAccountLocked; failures are counted and a success resets them.
func (sa *SessionAuthority) Authenticate(ctx context.Context, username, password string) (*domain.AuthenticatedIdentity, error) {
	if username == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}

	if sa.throttle != nil {
		locked, err := sa.throttle.IsLocked(ctx, username)
		if err != nil {
			// Throttle outages must not take logins down with them.
			sa.logger.Warn().Err(err).Str("username", username).Msg("login throttle check failed")
		} else if locked {
			return nil, domain.ErrAccountLocked
		}
	}

	account, err := sa.store.FindByUsername(ctx, username)
	if err != nil {
		sa.recordFailure(ctx, username)
		return nil, domain.ErrAuthenticationFailed
	}

	if !sa.hasher.Verify(account.PasswordHash, password) {
		sa.recordFailure(ctx, username)
		return nil, domain.ErrAuthenticationFailed
	}

	if sa.throttle != nil {
		if err := sa.throttle.Reset(ctx, username); err != nil {
			sa.logger.Warn().Err(err).Str("username", username).Msg("login throttle reset failed")
		}
	}

	return &domain.AuthenticatedIdentity{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Roles:    account.RoleNames(),
	}, nil
}

func (sa *SessionAuthority) recordFailure(ctx context.Context, username string) {
	if sa.throttle == nil {
		return
	}
	if err := sa.throttle.RecordFailure(ctx, username); err != nil {
		sa.logger.Warn().Err(err).Str("username", username).Msg("login throttle record failed")
	}
}

// IssueToken signs a session token carrying the identity's claims.
func (sa *SessionAuthority) IssueToken(identity *domain.AuthenticatedIdentity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      identity.ID,
		"username": identity.Username,
		"email":    identity.Email,
		"roles":    identity.Roles,
		"iat":      now.Unix(),
		"exp":      now.Add(sa.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(sa.jwtSecret))
}
