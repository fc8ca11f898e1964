// Package di provides dependency injection configuration for the ZoneIn server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/zoneinapp/zonein-server/internal/auth"
	"github.com/zoneinapp/zonein-server/internal/config"
	"github.com/zoneinapp/zonein-server/internal/di/providers"
	"github.com/zoneinapp/zonein-server/internal/logger"
	"github.com/zoneinapp/zonein-server/internal/service"
	"github.com/zoneinapp/zonein-server/internal/username"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideGoogleClient)
	do.Provide(injector, providers.ProvideStateStore)
	do.Provide(injector, providers.ProvideUsernameGenerator)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideReportService)
	do.Provide(injector, providers.ProvideLeaderboardService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*auth.GoogleClient](injector)
	_ = do.MustInvoke[*auth.StateStore](injector)
	_ = do.MustInvoke[*username.Generator](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ReportService](injector)
	_ = do.MustInvoke[*service.LeaderboardService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
