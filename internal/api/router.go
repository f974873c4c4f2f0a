package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bankcore/account-service/internal/api/handler"
	"github.com/bankcore/account-service/internal/api/middleware"
	"github.com/bankcore/account-service/internal/core/domain"
	"github.com/bankcore/account-service/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	accounts ports.AccountService,
	db *mongo.Database,
	rdb *redis.Client,
	jwtSecret string,
	logger zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(accounts)
	accountHandler := handler.NewAccountHandler(accounts)
	authMiddleware := middleware.Auth(jwtSecret)
	staffOnly := middleware.RBAC(string(domain.RoleAdmin), string(domain.RoleStaff))
	adminOnly := middleware.RBAC(string(domain.RoleAdmin))

	// --- Auth routes ---
	e.POST("/v1/auth/register", authHandler.Register)
	e.POST("/v1/auth/login", authHandler.Login)

	// --- Authenticated self-service routes ---
	account := e.Group("/v1/account", authMiddleware)
	account.PUT("/password", accountHandler.UpdatePassword)
	account.PUT("/email", accountHandler.UpdateEmail)
	account.DELETE("", accountHandler.Delete)

	// --- Listing (staff and admin) ---
	e.GET("/v1/accounts", accountHandler.List, authMiddleware, staffOnly)

	// --- Administrative routes ---
	admin := e.Group("/v1/admin", authMiddleware, adminOnly)
	admin.PATCH("/accounts/:id/status", accountHandler.SetStatus)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)         // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
