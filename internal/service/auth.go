// Package service implements the application logic between the API layer and
// the store.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zoneinapp/zonein-server/internal/auth"
	"github.com/zoneinapp/zonein-server/internal/domain"
	domainerrors "github.com/zoneinapp/zonein-server/internal/errors"
	"github.com/zoneinapp/zonein-server/internal/id"
	"github.com/zoneinapp/zonein-server/internal/store"
	"github.com/zoneinapp/zonein-server/internal/username"
)

// GoogleAuthenticator is the part of the Google OAuth client the auth service
// needs. Tests substitute a fake.
type GoogleAuthenticator interface {
	AuthURL(state, redirectURI string) string
	Exchange(ctx context.Context, code, redirectURI string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Identity, error)
}

// AuthService handles Google sign-in, token verification, and the current
// user lookup.
type AuthService struct {
	store     *store.Store
	tokens    *auth.TokenService
	google    GoogleAuthenticator
	states    *auth.StateStore
	usernames *username.Generator
	logger    *slog.Logger

	callbackURL string
}

// NewAuthService creates a new authentication service. callbackURL is the
// absolute redirect URI registered with Google.
func NewAuthService(
	st *store.Store,
	tokens *auth.TokenService,
	google GoogleAuthenticator,
	states *auth.StateStore,
	usernames *username.Generator,
	callbackURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:       st,
		tokens:      tokens,
		google:      google,
		states:      states,
		usernames:   usernames,
		logger:      logger,
		callbackURL: callbackURL,
	}
}

// BeginGoogleLogin issues a single-use state token and returns the Google
// consent page URL to redirect the browser to.
func (s *AuthService) BeginGoogleLogin(_ context.Context) (string, error) {
	state, err := s.states.Issue()
	if err != nil {
		return "", fmt.Errorf("issue oauth state: %w", err)
	}
	return s.google.AuthURL(state, s.callbackURL), nil
}

// CompleteGoogleLogin handles the OAuth callback: it validates the state,
// exchanges the code, verifies the identity, provisions or refreshes the
// account, and issues an access token.
func (s *AuthService) CompleteGoogleLogin(ctx context.Context, code, state string) (string, *domain.User, error) {
	if !s.states.Consume(state) {
		return "", nil, domainerrors.Unauthorized("invalid or expired OAuth state")
	}

	idToken, err := s.google.Exchange(ctx, code, s.callbackURL)
	if err != nil {
		s.logger.Warn("Google code exchange failed", "error", err)
		return "", nil, domainerrors.Unauthorized("could not complete Google sign-in")
	}

	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Google ID token rejected", "error", err)
		return "", nil, domainerrors.Unauthorized("could not verify Google identity")
	}

	user, err := s.upsertUser(ctx, identity)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.Info("User signed in", "user_id", user.ID)
	return token, user, nil
}

// upsertUser finds the account linked to the Google subject, creating it on
// first sign-in and refreshing the identity fields on subsequent ones.
func (s *AuthService) upsertUser(ctx context.Context, identity *auth.Identity) (*domain.User, error) {
	user, err := s.store.GetUserByGoogleSub(ctx, identity.Sub)
	if err == nil {
		if user.Email != identity.Email || user.Name != identity.Name {
			if err := s.store.UpdateUserIdentity(ctx, user.ID, identity.Email, identity.Name); err != nil {
				return nil, fmt.Errorf("refresh user identity: %w", err)
			}
			user.Email = identity.Email
			user.Name = identity.Name
		}
		return user, nil
	}
	if err != store.ErrUserNotFound {
		return nil, fmt.Errorf("look up user: %w", err)
	}

	userID, err := id.New("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	handle, err := s.usernames.Generate(ctx, identity.Name)
	if err != nil {
		return nil, fmt.Errorf("generate username: %w", err)
	}

	now := nowUTC()
	user = &domain.User{
		ID:        userID,
		GoogleSub: identity.Sub,
		Email:     identity.Email,
		Name:      identity.Name,
		Username:  handle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if err == store.ErrAlreadyExists {
			// Two callbacks raced on first sign-in; the other one won.
			return s.store.GetUserByGoogleSub(ctx, identity.Sub)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User account created", "user_id", user.ID, "username", handle)
	return user, nil
}

// VerifyAccessToken checks a bearer token and returns the user ID it belongs
// to.
func (s *AuthService) VerifyAccessToken(token string) (string, error) {
	userID, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return "", domainerrors.Unauthorized("invalid or expired token")
	}
	return userID, nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err == store.ErrUserNotFound {
		return nil, domainerrors.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
