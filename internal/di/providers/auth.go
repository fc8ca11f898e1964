package providers

import (
	"github.com/samber/do/v2"

	"github.com/zoneinapp/zonein-server/internal/auth"
	"github.com/zoneinapp/zonein-server/internal/config"
	"github.com/zoneinapp/zonein-server/internal/logger"
)

// ProvideTokenService provides the JWT token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenDuration)
}

// ProvideGoogleClient provides the Google OAuth client.
func ProvideGoogleClient(i do.Injector) (*auth.GoogleClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Google.ClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID is not set; sign-in will fail until configured")
	}

	return auth.NewGoogleClient(cfg.Google.ClientID, cfg.Google.ClientSecret, log.Logger), nil
}

// ProvideStateStore provides the single-use OAuth state store.
func ProvideStateStore(i do.Injector) (*auth.StateStore, error) {
	return auth.NewStateStore(), nil
}
