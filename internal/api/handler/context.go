package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bankcore/account-service/internal/core/domain"
)

// ctxIdentity rebuilds the authenticated identity from the claims the Auth
// middleware injected. Operations on "the current caller" receive this
// explicitly instead of reading ambient state. A missing account id means
// the middleware never ran or the token carried no subject; fail fast.
func ctxIdentity(c echo.Context) (*domain.AuthenticatedIdentity, error) {
	id, _ := c.Get("account_id").(string)
	if id == "" {
		return nil, domain.ErrNotAuthenticated
	}

	username, _ := c.Get("username").(string)
	email, _ := c.Get("email").(string)
	roles, _ := c.Get("roles").([]string)

	return &domain.AuthenticatedIdentity{
		ID:       id,
		Username: username,
		Email:    email,
		Roles:    roles,
	}, nil
}
