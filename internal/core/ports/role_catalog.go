package ports

import (
	"context"

	"github.com/bankcore/account-service/internal/core/domain"
)

// RoleCatalog looks up the fixed, pre-seeded set of roles. The lifecycle
// manager never creates roles; a missing one is a configuration fault.
type RoleCatalog interface {
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
}
