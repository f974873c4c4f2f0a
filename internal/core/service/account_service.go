package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankcore/account-service/internal/core/domain"
	"github.com/bankcore/account-service/internal/core/ports"
)

// AccountService implements the account lifecycle and authorization rules.
type AccountService struct {
	store    ports.IdentityStore
	catalog  ports.RoleCatalog
	sessions ports.SessionAuthority
	hasher   ports.PasswordHasher
	logger   zerolog.Logger
}

func NewAccountService(
	store ports.IdentityStore,
	catalog ports.RoleCatalog,
	sessions ports.SessionAuthority,
	hasher ports.PasswordHasher,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		store:    store,
		catalog:  catalog,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}
}

// Register creates a new account. The username and email must not already
// exist; the resolved role set defaults to {customer} when none is requested.
// Status is always forced to active. No session is created here.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	exists, err := s.store.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	exists, err = s.store.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	roles, err := s.resolveRoles(ctx, input.Roles)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Status:       domain.StatusActive,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.Save(ctx, account)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to save account")
		return nil, err
	}

	s.logger.Info().Str("account_id", created.ID).Str("username", created.Username).Msg("account created")
	return created, nil
}

// resolveRoles maps the requested role-name strings to catalog roles.
// A nil or empty request resolves to exactly {customer}. Duplicate
// resolutions collapse; a role missing from the catalog is a configuration
// fault surfaced as domain.ErrRoleNotFound.
func (s *AccountService) resolveRoles(ctx context.Context, requested []string) ([]domain.Role, error) {
	names := make(map[domain.RoleName]struct{})
	if len(requested) == 0 {
		names[domain.RoleCustomer] = struct{}{}
	} else {
		for _, r := range requested {
			names[domain.ResolveRoleName(r)] = struct{}{}
		}
	}

	// Fixed lookup order keeps the stored role list deterministic.
	roles := make([]domain.Role, 0, len(names))
	for _, name := range []domain.RoleName{domain.RoleAdmin, domain.RoleStaff, domain.RoleCustomer} {
		if _, ok := names[name]; !ok {
			continue
		}
		role, err := s.catalog.FindByName(ctx, name)
		if err != nil {
			s.logger.Error().Err(err).Str("role", string(name)).Msg("role catalog lookup failed")
			return nil, err
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

// Login delegates credential verification to the session authority and
// issues a signed session token for the resolved identity. Account status is
// deliberately not consulted: a deleted account can still authenticate.
func (s *AccountService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	identity, err := s.sessions.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.IssueToken(identity)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("token issuance failed")
		return nil, err
	}

	return &ports.LoginResult{
		Token:    token,
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Roles:    identity.Roles,
	}, nil
}

// ListAll returns every account in store-defined order.
func (s *AccountService) ListAll(ctx context.Context) ([]*domain.Account, error) {
	return s.store.FindAll(ctx)
}

// ListAllByStatus returns every account with the given status.
func (s *AccountService) ListAllByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error) {
	return s.store.FindAllByStatus(ctx, status)
}

// UpdatePassword replaces the caller's credential after verifying the old
// password against the stored hash. Status and roles are untouched and no
// token rotation is triggered.
func (s *AccountService) UpdatePassword(ctx context.Context, identity *domain.AuthenticatedIdentity, oldPassword, newPassword string) error {
	if identity == nil {
		return domain.ErrNotAuthenticated
	}

	account, err := s.store.FindByUsername(ctx, identity.Username)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(account.PasswordHash, oldPassword) {
		return domain.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.store.UpdatePasswordByUsername(ctx, identity.Username, hash); err != nil {
		return err
	}

	s.logger.Info().Str("username", identity.Username).Msg("password updated")
	return nil
}

// UpdateEmail overwrites the caller's email. Uniqueness is not re-checked at
// update time, matching creation-time-only enforcement.
func (s *AccountService) UpdateEmail(ctx context.Context, identity *domain.AuthenticatedIdentity, email string) error {
	if identity == nil {
		return domain.ErrNotAuthenticated
	}
	if err := s.store.UpdateEmailByUsername(ctx, identity.Username, email); err != nil {
		return err
	}
	s.logger.Info().Str("username", identity.Username).Msg("email updated")
	return nil
}

// SetStatusDeletedByID deactivates an account. With no target the caller
// deletes their own account directly, bypassing the administrative guard —
// an admin may always delete themselves. With a target it delegates to the
// guarded administrative path.
func (s *AccountService) SetStatusDeletedByID(ctx context.Context, identity *domain.AuthenticatedIdentity, targetID string) error {
	if identity == nil {
		return domain.ErrNotAuthenticated
	}

	if targetID == "" {
		if err := s.store.UpdateStatusByID(ctx, identity.ID, domain.StatusDeleted); err != nil {
			return err
		}
		s.logger.Info().Str("account_id", identity.ID).Msg("account self-deleted")
		return nil
	}

	return s.SetStatusByID(ctx, targetID, domain.StatusDeleted)
}

// SetStatusByID is the guarded administrative status change. Guard order:
// target must exist, must not hold the admin role, and must not already be
// in the desired status.
func (s *AccountService) SetStatusByID(ctx context.Context, id string, status domain.Status) error {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if account.IsAdmin() {
		return domain.ErrCannotModifyAdmin
	}

	if account.Status == status {
		return domain.ErrStatusUnchanged
	}

	if err := s.store.UpdateStatusByID(ctx, id, status); err != nil {
		return err
	}

	s.logger.Info().
		Str("account_id", id).
		Str("status", string(status)).
		Msg("account status changed")
	return nil
}
