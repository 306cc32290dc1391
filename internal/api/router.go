package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bandq/devconsole/docs"
	"github.com/bandq/devconsole/internal/api/handler"
	"github.com/bandq/devconsole/internal/api/middleware"
	"github.com/bandq/devconsole/internal/core/domain"
	"github.com/bandq/devconsole/internal/core/ports"
)

// Dependencies is everything the router needs; main builds it once.
type Dependencies struct {
	Policy    domain.EnvironmentPolicy
	Allowlist domain.Allowlist
	JWTSecret string

	Impersonation ports.ImpersonationService
	Directory     ports.DirectoryService
	Readiness     *handler.HealthDependenciesHandler

	Logger zerolog.Logger
	// Registerer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "devconsole",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/swagger") || strings.HasPrefix(p, "/health")
		},
	}))

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	readiness := deps.Readiness
	if readiness == nil {
		readiness = handler.NewHealthDependenciesHandler(false)
	}
	e.GET("/health", healthHandler.Liveness)    // liveness
	e.GET("/health/ready", readiness.Readiness) // readiness

	// --- Dev console ---
	// The environment gate runs first, then the caller is authenticated,
	// then allowlisted. Request bodies are only read after all three pass.
	dev := e.Group("/dev",
		middleware.DevConsole(deps.Policy),
		middleware.Auth(deps.JWTSecret),
		middleware.Allowlist(deps.Allowlist),
	)

	impersonationHandler := handler.NewImpersonationHandler(deps.Impersonation)
	directoryHandler := handler.NewDirectoryHandler(deps.Directory)

	dev.POST("/impersonate", impersonationHandler.Impersonate)
	dev.GET("/users", directoryHandler.Search)

	return e
}
