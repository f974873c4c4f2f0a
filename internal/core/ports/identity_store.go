package ports

import (
	"context"

	"github.com/bankcore/account-service/internal/core/domain"
)

// IdentityStore defines the persistence interface for account records.
type IdentityStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindAll(ctx context.Context) ([]*domain.Account, error)
	FindAllByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error)
	Save(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdateStatusByID(ctx context.Context, id string, status domain.Status) error
	UpdatePasswordByUsername(ctx context.Context, username, passwordHash string) error
	UpdateEmailByUsername(ctx context.Context, username, email string) error
}
