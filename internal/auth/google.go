package auth

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	googleAuthURL      = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL     = "https://oauth2.googleapis.com/token"
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

	oauthScopes = "openid email profile"
)

// Identity is the verified subject returned by Google for a sign-in.
type Identity struct {
	Sub   string
	Email string
	Name  string
}

// GoogleClient drives the OAuth code flow against Google and verifies the
// resulting ID tokens through the tokeninfo endpoint.
type GoogleClient struct {
	httpClient   *http.Client
	logger       *slog.Logger
	clientID     string
	clientSecret string

	// Endpoint overrides for tests.
	authURL      string
	tokenURL     string
	tokenInfoURL string
}

// NewGoogleClient creates a Google OAuth client.
func NewGoogleClient(clientID, clientSecret string, logger *slog.Logger) *GoogleClient {
	return &GoogleClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       logger,
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      googleAuthURL,
		tokenURL:     googleTokenURL,
		tokenInfoURL: googleTokenInfoURL,
	}
}

// AuthURL builds the consent page URL the browser is redirected to.
func (c *GoogleClient) AuthURL(state, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", oauthScopes)
	params.Set("state", state)

	return c.authURL + "?" + params.Encode()
}

// Exchange trades an authorization code for an ID token.
func (c *GoogleClient) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed: status %d", resp.StatusCode)
	}

	var tokenResp struct {
		IDToken string `json:"id_token"`
	}
	if err := json.UnmarshalRead(resp.Body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.IDToken == "" {
		return "", fmt.Errorf("token response missing id_token")
	}

	return tokenResp.IDToken, nil
}

// VerifyIDToken validates an ID token through Google's tokeninfo endpoint and
// returns the identity it asserts. The audience must match our client ID and
// the email must be verified.
func (c *GoogleClient) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	params := url.Values{}
	params.Set("id_token", idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.tokenInfoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo rejected token: status %d", resp.StatusCode)
	}

	var info struct {
		Aud           string `json:"aud"`
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.UnmarshalRead(resp.Body, &info); err != nil {
		return nil, fmt.Errorf("parse tokeninfo response: %w", err)
	}

	if info.Aud != c.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	if info.EmailVerified != "true" {
		return nil, fmt.Errorf("email not verified")
	}

	return &Identity{
		Sub:   info.Sub,
		Email: info.Email,
		Name:  info.Name,
	}, nil
}
