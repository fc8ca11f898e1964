package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zoneinapp/zonein-server/internal/domain"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "googleLogin",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/google/login",
		Summary:     "Start Google sign-in",
		Description: "Redirects the browser to Google's consent page with a single-use state token",
		Tags:        []string{"Authentication"},
	}, s.handleGoogleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "googleCallback",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/google/callback",
		Summary:     "Complete Google sign-in",
		Description: "Exchanges the authorization code, provisions the account, and redirects to the UI with an access token",
		Tags:        []string{"Authentication"},
	}, s.handleGoogleCallback)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMe)
}

// === DTOs ===

// GoogleLoginInput carries client IP headers for rate limiting.
type GoogleLoginInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// GoogleCallbackInput is the OAuth callback from Google's consent page.
type GoogleCallbackInput struct {
	Code          string `query:"code" doc:"Authorization code from Google"`
	State         string `query:"state" doc:"State token issued at login start"`
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
}

// RedirectOutput sends a 307 redirect with no body.
type RedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

// UserResponse contains account information in API responses.
type UserResponse struct {
	ID             string    `json:"id" doc:"User ID"`
	Email          string    `json:"email" doc:"User email"`
	Name           string    `json:"name" doc:"Display name from Google"`
	Username       string    `json:"username" doc:"Public leaderboard handle"`
	MaxZoneInScore *float64  `json:"max_zone_in_score" doc:"Lifetime best score, null before the first report"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt      time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// MeOutput wraps the current-user response for Huma.
type MeOutput struct {
	Body UserResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleGoogleLogin(ctx context.Context, input *GoogleLoginInput) (*RedirectOutput, error) {
	if err := s.checkAuthRateLimit(input.XForwardedFor, input.XRealIP); err != nil {
		return nil, err
	}

	consentURL, err := s.services.Auth.BeginGoogleLogin(ctx)
	if err != nil {
		return nil, err
	}

	return &RedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: consentURL,
	}, nil
}

func (s *Server) handleGoogleCallback(ctx context.Context, input *GoogleCallbackInput) (*RedirectOutput, error) {
	if err := s.checkAuthRateLimit(input.XForwardedFor, input.XRealIP); err != nil {
		return nil, err
	}

	token, _, err := s.services.Auth.CompleteGoogleLogin(ctx, input.Code, input.State)
	if err != nil {
		return nil, err
	}

	// The token rides in the fragment, which browsers never send back to any
	// server the UI loads from.
	return &RedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: s.uiOrigin + "/auth/callback#token=" + url.QueryEscape(token),
	}, nil
}

func (s *Server) handleMe(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MeOutput{Body: mapUserResponse(user)}, nil
}

// === Helpers ===

func mapUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Username:       user.Username,
		MaxZoneInScore: user.MaxZoneInScore,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
