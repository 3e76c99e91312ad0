// Package engine bundles the collaborators Checkers and Executors share (spec §6): the
// Store, Clock, SMTP sender, and one ProviderClient plus TokenRefresher per provider.
package engine

import (
	"context"
	"time"

	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/providers"
	"github.com/area-engine/core/store"
)

// Deps is passed by value (its fields are interfaces/pointers) to every Checker and Executor
// call, so individual handlers stay free functions rather than carrying their own state.
type Deps struct {
	Store  store.Store
	Clock  providers.Clock
	SMTP   providers.SMTPSender

	Gmail    providers.GmailClient
	Drive    providers.DriveClient
	Facebook providers.FacebookClient
	GitHub   providers.GitHubClient
	Spotify  providers.SpotifyClient

	// Refreshers is keyed by Service.Name ("gmail", "drive", "facebook", "github", "spotify").
	Refreshers map[string]*providers.TokenRefresher

	// LookbackWindow bounds how far back remote-data Checkers scan for events (spec §4.2,
	// default 5 minutes).
	LookbackWindow time.Duration
}

// ResolveToken fetches the UserServiceConnection for (userID, serviceName), attempting one
// silent refresh if the access token is expired, per spec §4.3's "SHOULD attempt a single
// silent refresh using refreshToken before giving up" and §8's "Expired tokenExpiresAt
// triggers one refresh attempt before ConnectionMissing".
func (d Deps) ResolveToken(ctx context.Context, userID uint, serviceName string) (string, error) {
	svc, err := d.Store.ServiceByName(ctx, serviceName)
	if err != nil {
		return "", areaerr.InternalError(err)
	}
	if svc == nil {
		return "", areaerr.ConnectionMissingError("%s is not a known service", serviceName)
	}

	conn, err := d.Store.Connection(ctx, userID, svc.ID)
	if err != nil {
		return "", areaerr.InternalError(err)
	}
	if conn == nil {
		return "", areaerr.ConnectionMissingError("user is not connected to %s", serviceName)
	}

	now := time.Now().UTC()
	if !conn.Expired(now) {
		return conn.AccessToken, nil
	}

	refresher, ok := d.Refreshers[serviceName]
	if !ok || conn.RefreshToken == nil {
		return "", areaerr.ConnectionMissingError("%s connection expired and cannot be refreshed", serviceName)
	}

	accessToken, expiresAt, err := refresher.Refresh(ctx, *conn.RefreshToken)
	if err != nil {
		return "", areaerr.ConnectionMissingError("%s connection expired and refresh failed: %v", serviceName, err)
	}

	conn.AccessToken = accessToken
	conn.TokenExpiresAt = &expiresAt
	conn.UpdatedAt = now
	if err := d.Store.SaveConnection(ctx, conn); err != nil {
		return "", areaerr.InternalError(err)
	}
	return accessToken, nil
}

// AlreadyLogged reports whether fingerprint has already been recorded for workflowID,
// implementing the dedup contract of spec §4.2/§8 invariant 3. Both Store implementations
// signal "not found" as (nil, nil) rather than store.ErrNotFound, so a nil log is the only
// case to check.
func (d Deps) AlreadyLogged(ctx context.Context, workflowID uint, fingerprint string) (bool, error) {
	log, err := d.Store.LogByMessage(ctx, workflowID, fingerprint)
	if err != nil {
		return false, err
	}
	return log != nil, nil
}

// AlreadyLoggedSubstring is AlreadyLogged's substring variant, used by the Drive Checkers
// whose dedup key is "contains the file id" rather than full-string equality (spec §4.2).
func (d Deps) AlreadyLoggedSubstring(ctx context.Context, workflowID uint, substr string) (bool, error) {
	log, err := d.Store.LogByMessageContains(ctx, workflowID, substr)
	if err != nil {
		return false, err
	}
	return log != nil, nil
}

// LoggedWithin reports whether fingerprint was logged for workflowID less than window ago,
// for Checkers whose dedup is time-bounded rather than all-time (spec §4.2 playback_started:
// "logged at most once per 5-minute window per track", §9's Open Question). Unlike
// AlreadyLogged, a match older than window does not suppress a re-fire.
func (d Deps) LoggedWithin(ctx context.Context, workflowID uint, fingerprint string, window time.Duration) (bool, error) {
	log, err := d.Store.LogByMessage(ctx, workflowID, fingerprint)
	if err != nil {
		return false, err
	}
	if log == nil {
		return false, nil
	}
	now, err := d.Clock.Now("UTC")
	if err != nil || now.IsZero() {
		now = time.Now().UTC()
	}
	return now.Sub(log.TriggeredAt) < window, nil
}
