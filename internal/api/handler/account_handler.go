package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bankcore/account-service/internal/api/metrics"
	"github.com/bankcore/account-service/internal/core/domain"
	"github.com/bankcore/account-service/internal/core/ports"
)

// AccountHandler handles authenticated account operations.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List returns all accounts, optionally filtered by status.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(active, deleted)
// @Success      200     {object}  listAccountsResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	var (
		accounts []*domain.Account
		err      error
	)

	if raw := c.QueryParam("status"); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
		}
		accounts, err = h.accounts.ListAllByStatus(c.Request().Context(), status)
	} else {
		accounts, err = h.accounts.ListAll(c.Request().Context())
	}
	if err != nil {
		return err
	}

	resp := listAccountsResponse{
		Accounts: make([]accountResponse, 0, len(accounts)),
		Total:    len(accounts),
	}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdatePassword replaces the caller's password.
//
// @Summary      Change own password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updatePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/account/password [put]
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.accounts.UpdatePassword(c.Request().Context(), identity, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// UpdateEmail overwrites the caller's email.
//
// @Summary      Change own email
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateEmailRequest  true  "New email"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/account/email [put]
func (h *AccountHandler) UpdateEmail(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.accounts.UpdateEmail(c.Request().Context(), identity, req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email updated"})
}

// Delete deactivates an account. Without an id query parameter the caller
// deletes their own account; with one, the guarded administrative path runs
// against that target.
//
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  query     string  false  "Target account id (admin path)"
// @Success      200 {object}  messageResponse
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Failure      409 {object}  errorResponse
// @Router       /v1/account [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	targetID := c.QueryParam("id")
	if err := h.accounts.SetStatusDeletedByID(c.Request().Context(), identity, targetID); err != nil {
		countGuardRejection(err)
		return err
	}

	path := "self"
	if targetID != "" {
		path = "admin"
	}
	metrics.StatusChangesTotal.WithLabelValues(string(domain.StatusDeleted), path).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}

// SetStatus is the administrative status change for an arbitrary target.
//
// @Summary      Change an account's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Target account id"
// @Param        body  body      setStatusRequest  true  "Desired status"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/admin/accounts/{id}/status [patch]
func (h *AccountHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	if err := h.accounts.SetStatusByID(c.Request().Context(), c.Param("id"), status); err != nil {
		countGuardRejection(err)
		return err
	}

	metrics.StatusChangesTotal.WithLabelValues(string(status), "admin").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "status updated"})
}

func countGuardRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrCannotModifyAdmin):
		metrics.GuardRejectionsTotal.WithLabelValues("admin_protected").Inc()
	case errors.Is(err, domain.ErrStatusUnchanged):
		metrics.GuardRejectionsTotal.WithLabelValues("status_unchanged").Inc()
	case errors.Is(err, domain.ErrAccountNotFound):
		metrics.GuardRejectionsTotal.WithLabelValues("not_found").Inc()
	}
}
