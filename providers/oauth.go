package providers

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenRefresher wraps golang.org/x/oauth2's token-source machinery so Reaction Executors
// can perform the "single silent refresh using refreshToken before giving up" spec §4.3
// requires, without hand-rolling each provider's token endpoint.
type TokenRefresher struct {
	endpoint oauth2.Endpoint
	clientID string
	secret   string
}

// NewTokenRefresher builds a refresher for one provider's OAuth app credentials.
func NewTokenRefresher(endpoint oauth2.Endpoint, clientID, clientSecret string) *TokenRefresher {
	return &TokenRefresher{endpoint: endpoint, clientID: clientID, secret: clientSecret}
}

// Refresh exchanges a refresh token for a fresh access token and its new expiry.
func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error) {
	conf := &oauth2.Config{
		ClientID:     r.clientID,
		ClientSecret: r.secret,
		Endpoint:     r.endpoint,
	}
	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", time.Time{}, err
	}
	return tok.AccessToken, tok.Expiry, nil
}

// Google/Facebook/GitHub/Spotify token endpoints, used to build TokenRefreshers at wiring
// time in cmd/areaengine.
var (
	GoogleEndpoint = oauth2.Endpoint{TokenURL: "https://oauth2.googleapis.com/token"}
	FacebookEndpoint = oauth2.Endpoint{TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token"}
	GitHubEndpoint = oauth2.Endpoint{TokenURL: "https://github.com/login/oauth/access_token"}
	SpotifyEndpoint = oauth2.Endpoint{TokenURL: "https://accounts.spotify.com/api/token"}
)
