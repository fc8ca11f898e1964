package providers

import (
	"github.com/samber/do/v2"

	"github.com/zoneinapp/zonein-server/internal/auth"
	"github.com/zoneinapp/zonein-server/internal/config"
	"github.com/zoneinapp/zonein-server/internal/logger"
	"github.com/zoneinapp/zonein-server/internal/service"
	"github.com/zoneinapp/zonein-server/internal/username"
	"github.com/zoneinapp/zonein-server/internal/validation"
)

// ProvideUsernameGenerator provides the public-handle generator.
func ProvideUsernameGenerator(i do.Injector) (*username.Generator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return username.NewGenerator(storeHandle.Store), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	google := do.MustInvoke[*auth.GoogleClient](i)
	states := do.MustInvoke[*auth.StateStore](i)
	usernames := do.MustInvoke[*username.Generator](i)

	callbackURL := cfg.Server.BaseURL + "/api/v1/auth/google/callback"

	return service.NewAuthService(
		storeHandle.Store,
		tokens,
		google,
		states,
		usernames,
		callbackURL,
		log.Logger,
	), nil
}

// ProvideReportService provides the session report service.
func ProvideReportService(i do.Injector) (*service.ReportService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewReportService(storeHandle.Store, validation.New(), log.Logger), nil
}

// ProvideLeaderboardService provides the leaderboard service.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewLeaderboardService(storeHandle.Store, log.Logger), nil
}
