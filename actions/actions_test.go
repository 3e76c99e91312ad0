package actions

import (
	"context"
	"testing"
	"time"

	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/providers"
	"github.com/area-engine/core/store"
	"github.com/stretchr/testify/require"
)

// connectService registers svc/connection pairs so engine.Deps.ResolveToken succeeds with
// token for userID, mirroring what the Seeder + an OAuth callback would have done.
func connectService(t *testing.T, fs *store.FakeStore, userID uint, serviceName, token string) {
	t.Helper()
	ctx := context.Background()
	svc, err := fs.EnsureService(ctx, &models.Service{Name: serviceName, DisplayName: serviceName})
	require.NoError(t, err)
	require.NoError(t, fs.SaveConnection(ctx, &models.UserServiceConnection{
		UserID:      userID,
		ServiceID:   svc.ID,
		AccessToken: token,
	}))
}

func newDeps(fs *store.FakeStore) engine.Deps {
	return engine.Deps{
		Store:          fs,
		Clock:          providers.FakeClock{Fixed: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
		LookbackWindow: 5 * time.Minute,
	}
}

func TestTimeMatchesFiresOnExactMinute(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	w := &models.Workflow{ActionConfig: models.JSONMap{"time": "12:00"}}
	fs.PutWorkflow(w)

	outcome, err := TimeMatches(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
}

func TestTimeMatchesSkipsOffMinute(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	w := &models.Workflow{ActionConfig: models.JSONMap{"time": "09:30"}}
	fs.PutWorkflow(w)

	outcome, err := TimeMatches(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome.Fired)
}

func TestTimeMatchesSelfLockoutWithinSixtySeconds(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	last := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	w := &models.Workflow{ActionConfig: models.JSONMap{"time": "12:00"}, LastTriggered: &last}
	fs.PutWorkflow(w)

	outcome, err := TimeMatches(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome.Fired)
}

func TestTimeMatchesMissingConfigIsConfigError(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	w := &models.Workflow{ActionConfig: models.JSONMap{}}
	fs.PutWorkflow(w)

	_, err := TimeMatches(context.Background(), deps, w)
	require.Error(t, err)
	require.Equal(t, areaerr.KindConfig, areaerr.KindOf(err))
}

func TestIntervalElapsedFiresImmediatelyWhenNeverTriggered(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	w := &models.Workflow{ActionConfig: models.JSONMap{"interval_minutes": float64(5)}}
	fs.PutWorkflow(w)

	outcome, err := IntervalElapsed(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
}

func TestIntervalElapsedWaitsOutTheWindow(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	last := time.Date(2026, 1, 1, 11, 57, 0, 0, time.UTC)
	w := &models.Workflow{ActionConfig: models.JSONMap{"interval_minutes": float64(5)}, LastTriggered: &last}
	fs.PutWorkflow(w)

	outcome, err := IntervalElapsed(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome.Fired)
}

func TestIntervalElapsedFiresOnceElapsed(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	last := time.Date(2026, 1, 1, 11, 55, 0, 0, time.UTC)
	w := &models.Workflow{ActionConfig: models.JSONMap{"interval_minutes": float64(5)}, LastTriggered: &last}
	fs.PutWorkflow(w)

	outcome, err := IntervalElapsed(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
}

func TestEmailReceivedFromMatchesSenderAndDedups(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Gmail = &providers.FakeGmailClient{Messages: []providers.EmailMessage{
		{ID: "m1", Sender: "Boss <boss@corp.com>", Subject: "hi"},
		{ID: "m2", Sender: "other@corp.com", Subject: "noise"},
	}}
	connectService(t, fs, 1, "gmail", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"sender": "boss@corp.com"}}
	fs.PutWorkflow(w)

	outcome, err := EmailReceivedFrom(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Email from Boss <boss@corp.com>: hi", outcome.Metadata)

	require.NoError(t, fs.RecordOutcome(context.Background(), w.ID, time.Now(), &models.WorkflowLog{
		Status: models.LogSuccess, Message: outcome.Metadata,
	}))

	outcome2, err := EmailReceivedFrom(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome2.Fired)
}

func TestEmailReceivedFromMissingConnectionIsConnectionMissing(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Gmail = &providers.FakeGmailClient{}
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"sender": "boss@corp.com"}}
	fs.PutWorkflow(w)

	_, err := EmailReceivedFrom(context.Background(), deps, w)
	require.Error(t, err)
	require.Equal(t, areaerr.KindConnectionMissing, areaerr.KindOf(err))
}

func TestEmailSubjectContainsIsCaseInsensitive(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Gmail = &providers.FakeGmailClient{Messages: []providers.EmailMessage{
		{ID: "m1", Sender: "a@b.com", Subject: "Invoice READY"},
	}}
	connectService(t, fs, 1, "gmail", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"keyword": "invoice"}}
	fs.PutWorkflow(w)

	outcome, err := EmailSubjectContains(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
}

func TestNewFileInFolderFiltersByFolderAndDedupsBySubstring(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Drive = &providers.FakeDriveClient{Files: []providers.DriveFile{
		{ID: "f1", Name: "report.pdf", FolderName: "Reports"},
		{ID: "f2", Name: "photo.png", FolderName: "Photos"},
	}}
	connectService(t, fs, 1, "drive", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"folder_name": "reports"}}
	fs.PutWorkflow(w)

	outcome, err := NewFileInFolder(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "New file: report.pdf (id:f1)", outcome.Metadata)

	require.NoError(t, fs.RecordOutcome(context.Background(), w.ID, time.Now(), &models.WorkflowLog{
		Status: models.LogSuccess, Message: outcome.Metadata,
	}))
	outcome2, err := NewFileInFolder(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome2.Fired)
}

func TestNewFileUploadedIgnoresFolder(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Drive = &providers.FakeDriveClient{Files: []providers.DriveFile{
		{ID: "f9", Name: "any.txt", FolderName: "Whatever"},
	}}
	connectService(t, fs, 1, "drive", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{}}
	fs.PutWorkflow(w)

	outcome, err := NewFileUploaded(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
}

func TestPostContainsKeywordTruncatesFingerprintTo50Chars(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	long := "this message is definitely going to be longer than fifty characters total"
	deps.Facebook = &providers.FakeFacebookClient{Posts: []providers.FacebookPost{
		{ID: "p1", Message: long},
	}}
	connectService(t, fs, 1, "facebook", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"keyword": "message"}}
	fs.PutWorkflow(w)

	outcome, err := PostContainsKeyword(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Facebook post: "+long[:50], outcome.Metadata)
}

func TestNewStarOnRepoRejectsMalformedRepoName(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"repo_name": "not-a-repo"}}
	fs.PutWorkflow(w)

	_, err := NewStarOnRepo(context.Background(), deps, w)
	require.Error(t, err)
	require.Equal(t, areaerr.KindConfig, areaerr.KindOf(err))
}

func TestNewStarOnRepoFiresOnUnseenStargazer(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.GitHub = &providers.FakeGitHubClient{Stars: []providers.GitHubStar{{User: "octocat"}}}
	connectService(t, fs, 1, "github", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"repo_name": "area/engine"}}
	fs.PutWorkflow(w)

	outcome, err := NewStarOnRepo(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "New star from octocat", outcome.Metadata)
}

func TestNewIssueCreatedExcludesPullRequests(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.GitHub = &providers.FakeGitHubClient{Issues: []providers.GitHubIssue{
		{Number: 1, Title: "a bug", IsPR: false},
		{Number: 2, Title: "a fix", IsPR: true},
	}}
	connectService(t, fs, 1, "github", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"repo_name": "area/engine"}}
	fs.PutWorkflow(w)

	outcome, err := NewIssueCreated(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Issue #1: a bug", outcome.Metadata)
}

func TestNewPROpenedOnlyMatchesPullRequests(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.GitHub = &providers.FakeGitHubClient{Issues: []providers.GitHubIssue{
		{Number: 1, Title: "a bug", IsPR: false},
		{Number: 2, Title: "a fix", IsPR: true},
	}}
	connectService(t, fs, 1, "github", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"repo_name": "area/engine"}}
	fs.PutWorkflow(w)

	outcome, err := NewPROpened(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "PR #2: a fix", outcome.Metadata)
}

func TestTrackAddedToPlaylistFingerprint(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Spotify = &providers.FakeSpotifyClient{PlaylistTracks: []providers.SpotifyTrack{
		{Name: "Song", Artists: "Artist"},
	}}
	connectService(t, fs, 1, "spotify", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"playlist_id": "pl1"}}
	fs.PutWorkflow(w)

	outcome, err := TrackAddedToPlaylist(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Track added: Song by Artist", outcome.Metadata)
}

func TestTrackSavedFingerprint(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Spotify = &providers.FakeSpotifyClient{SavedTracks: []providers.SpotifyTrack{
		{Name: "Song", Artists: "Artist"},
	}}
	connectService(t, fs, 1, "spotify", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{}}
	fs.PutWorkflow(w)

	outcome, err := TrackSaved(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Track saved: Song by Artist", outcome.Metadata)
}

func TestPlaybackStartedSkipsWhenNotPlaying(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Spotify = &providers.FakeSpotifyClient{Playback: providers.SpotifyPlayback{IsPlaying: false}}
	connectService(t, fs, 1, "spotify", "tok")
	w := &models.Workflow{UserID: 1}
	fs.PutWorkflow(w)

	outcome, err := PlaybackStarted(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome.Fired)
}

func TestPlaybackStartedFiresAndDedupsWithinWindow(t *testing.T) {
	fs := store.NewFakeStore()
	clock := providers.FakeClock{Fixed: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	deps := newDeps(fs)
	deps.Clock = clock
	deps.Spotify = &providers.FakeSpotifyClient{Playback: providers.SpotifyPlayback{
		IsPlaying: true, TrackName: "Song", Artists: "Artist",
	}}
	connectService(t, fs, 1, "spotify", "tok")
	w := &models.Workflow{UserID: 1}
	fs.PutWorkflow(w)

	outcome, err := PlaybackStarted(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, "Now playing: Song by Artist", outcome.Metadata)

	require.NoError(t, fs.RecordOutcome(context.Background(), w.ID, clock.Fixed, &models.WorkflowLog{
		Status: models.LogSuccess, Message: outcome.Metadata, TriggeredAt: clock.Fixed,
	}))

	// Still within the 5-minute window: must not re-fire.
	deps.Clock = providers.FakeClock{Fixed: clock.Fixed.Add(4 * time.Minute)}
	outcome2, err := PlaybackStarted(context.Background(), deps, w)
	require.NoError(t, err)
	require.False(t, outcome2.Fired)
}

func TestPlaybackStartedRefiresOnceWindowElapses(t *testing.T) {
	fs := store.NewFakeStore()
	clock := providers.FakeClock{Fixed: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	deps := newDeps(fs)
	deps.Clock = clock
	deps.Spotify = &providers.FakeSpotifyClient{Playback: providers.SpotifyPlayback{
		IsPlaying: true, TrackName: "Song", Artists: "Artist",
	}}
	connectService(t, fs, 1, "spotify", "tok")
	w := &models.Workflow{UserID: 1}
	fs.PutWorkflow(w)

	fingerprint := "Now playing: Song by Artist"
	require.NoError(t, fs.RecordOutcome(context.Background(), w.ID, clock.Fixed, &models.WorkflowLog{
		Status: models.LogSuccess, Message: fingerprint, TriggeredAt: clock.Fixed,
	}))

	// More than 5 minutes later, the still-playing track must be allowed to fire again.
	deps.Clock = providers.FakeClock{Fixed: clock.Fixed.Add(6 * time.Minute)}
	outcome, err := PlaybackStarted(context.Background(), deps, w)
	require.NoError(t, err)
	require.True(t, outcome.Fired)
	require.Equal(t, fingerprint, outcome.Metadata)
}

func TestProviderFailureSurfacesAsProviderError(t *testing.T) {
	fs := store.NewFakeStore()
	deps := newDeps(fs)
	deps.Gmail = &providers.FakeGmailClient{ProbeResult: providers.Fail(context.DeadlineExceeded)}
	connectService(t, fs, 1, "gmail", "tok")
	w := &models.Workflow{UserID: 1, ActionConfig: models.JSONMap{"sender": "x@y.z"}}
	fs.PutWorkflow(w)

	_, err := EmailReceivedFrom(context.Background(), deps, w)
	require.Error(t, err)
	require.Equal(t, areaerr.KindProvider, areaerr.KindOf(err))
}
