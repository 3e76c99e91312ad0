package providers

import (
	"context"
	"time"
)

// FakeClock is a fixed-time Clock for tests, mirroring the mock style of
// evalgo-org-eve's queue/amqp_mock.go: simple struct fields, no behavior beyond recording
// and replaying what the test configured.
type FakeClock struct {
	Fixed time.Time
	Err   error
}

func (c FakeClock) Now(tz string) (time.Time, error) {
	if c.Err != nil {
		return time.Time{}, c.Err
	}
	if tz == "" || tz == "UTC" {
		return c.Fixed, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return c.Fixed.In(loc), nil
}

// FakeSMTPSender records every call instead of dialing a real mail server.
type FakeSMTPSender struct {
	SendResult Result
	Sent       []FakeSMTPCall
}

type FakeSMTPCall struct {
	To, Subject, Body string
	HTML              bool
}

func (f *FakeSMTPSender) Send(to, subject, body string, html bool) Result {
	f.Sent = append(f.Sent, FakeSMTPCall{To: to, Subject: subject, Body: body, HTML: html})
	if f.SendResult == (Result{}) {
		return Ok("Email sent successfully to " + to)
	}
	return f.SendResult
}

// FakeGmailClient returns whatever Messages/ProbeResult the test configured.
type FakeGmailClient struct {
	Messages     []EmailMessage
	ProbeResult  Result
	ProbeCalled  bool
	LastSince    time.Time
}

func (f *FakeGmailClient) ProbeMessages(ctx context.Context, accessToken string, since time.Time) ([]EmailMessage, Result) {
	f.ProbeCalled = true
	f.LastSince = since
	if f.ProbeResult == (Result{}) {
		return f.Messages, Ok("fetched")
	}
	return f.Messages, f.ProbeResult
}

var _ GmailClient = (*FakeGmailClient)(nil)

// FakeDriveClient is a scriptable DriveClient: ProbeResult/CreateFileResult/etc default
// to success when left zero-valued.
type FakeDriveClient struct {
	Files             []DriveFile
	ProbeResult       Result
	CreatedFile       DriveFile
	CreateFileResult  Result
	CreatedFolder     DriveFile
	CreateFolderResult Result
	ShareResult       Result

	CreateFileCalls   []struct{ Name, FolderID, Content string }
	CreateFolderCalls []struct{ Name, ParentID string }
	ShareCalls        []struct{ FileID, Email, Role string }
}

func (f *FakeDriveClient) ProbeFiles(ctx context.Context, accessToken, folderID string, since time.Time) ([]DriveFile, Result) {
	if f.ProbeResult == (Result{}) {
		return f.Files, Ok("fetched")
	}
	return f.Files, f.ProbeResult
}

func (f *FakeDriveClient) CreateFile(ctx context.Context, accessToken, name, folderID, content string) (DriveFile, Result) {
	f.CreateFileCalls = append(f.CreateFileCalls, struct{ Name, FolderID, Content string }{name, folderID, content})
	if f.CreateFileResult == (Result{}) {
		return f.CreatedFile, Ok("File " + name + " created")
	}
	return f.CreatedFile, f.CreateFileResult
}

func (f *FakeDriveClient) CreateFolder(ctx context.Context, accessToken, name, parentID string) (DriveFile, Result) {
	f.CreateFolderCalls = append(f.CreateFolderCalls, struct{ Name, ParentID string }{name, parentID})
	if f.CreateFolderResult == (Result{}) {
		return f.CreatedFolder, Ok("Folder " + name + " created")
	}
	return f.CreatedFolder, f.CreateFolderResult
}

func (f *FakeDriveClient) ShareFile(ctx context.Context, accessToken, fileID, email, role string) Result {
	f.ShareCalls = append(f.ShareCalls, struct{ FileID, Email, Role string }{fileID, email, role})
	if f.ShareResult == (Result{}) {
		return Ok("File shared with " + email)
	}
	return f.ShareResult
}

var _ DriveClient = (*FakeDriveClient)(nil)

// FakeFacebookClient is a scriptable FacebookClient.
type FakeFacebookClient struct {
	Posts        []FacebookPost
	ProbeResult  Result
	CreateResult Result
	CreateCalls  []struct{ PageID, Message string }
}

func (f *FakeFacebookClient) ProbePosts(ctx context.Context, accessToken, pageID string, since time.Time) ([]FacebookPost, Result) {
	if f.ProbeResult == (Result{}) {
		return f.Posts, Ok("fetched")
	}
	return f.Posts, f.ProbeResult
}

func (f *FakeFacebookClient) CreatePost(ctx context.Context, accessToken, pageID, message string) Result {
	f.CreateCalls = append(f.CreateCalls, struct{ PageID, Message string }{pageID, message})
	if f.CreateResult == (Result{}) {
		return Ok("Post created: fake_post_id")
	}
	return f.CreateResult
}

var _ FacebookClient = (*FakeFacebookClient)(nil)

// FakeGitHubClient is a scriptable GitHubClient.
type FakeGitHubClient struct {
	Stars             []GitHubStar
	Issues            []GitHubIssue
	ProbeStarsResult  Result
	ProbeIssuesResult Result
	CreateIssueResult Result
	CreateIssueCalls  []struct{ Owner, Repo, Title, Body string }
}

func (f *FakeGitHubClient) ProbeStars(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubStar, Result) {
	if f.ProbeStarsResult == (Result{}) {
		return f.Stars, Ok("fetched")
	}
	return f.Stars, f.ProbeStarsResult
}

func (f *FakeGitHubClient) ProbeIssues(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubIssue, Result) {
	if f.ProbeIssuesResult == (Result{}) {
		return f.Issues, Ok("fetched")
	}
	return f.Issues, f.ProbeIssuesResult
}

func (f *FakeGitHubClient) CreateIssue(ctx context.Context, accessToken, owner, repo, title, body string) Result {
	f.CreateIssueCalls = append(f.CreateIssueCalls, struct{ Owner, Repo, Title, Body string }{owner, repo, title, body})
	if f.CreateIssueResult == (Result{}) {
		return Ok("Issue #1 created")
	}
	return f.CreateIssueResult
}

var _ GitHubClient = (*FakeGitHubClient)(nil)

// FakeSpotifyClient is a scriptable SpotifyClient.
type FakeSpotifyClient struct {
	SavedTracks    []SpotifyTrack
	PlaylistTracks []SpotifyTrack
	Playback       SpotifyPlayback

	ProbeSavedResult    Result
	ProbePlaylistResult Result
	ProbePlaybackResult Result
	AddToPlaylistResult Result
	CreatePlaylistID    string
	CreatePlaylistResult Result
	StartPlaybackResult Result

	AddToPlaylistCalls []struct{ PlaylistID, TrackURI string }
	CreatePlaylistCalls []struct {
		UserID, Name, Description string
		Public                    bool
	}
	StartPlaybackCalls []struct{ DeviceID, TrackURI, ContextURI string }
}

func (f *FakeSpotifyClient) ProbeSavedTracks(ctx context.Context, accessToken string, since time.Time) ([]SpotifyTrack, Result) {
	if f.ProbeSavedResult == (Result{}) {
		return f.SavedTracks, Ok("fetched")
	}
	return f.SavedTracks, f.ProbeSavedResult
}

func (f *FakeSpotifyClient) ProbePlaylistTracks(ctx context.Context, accessToken, playlistID string, since time.Time) ([]SpotifyTrack, Result) {
	if f.ProbePlaylistResult == (Result{}) {
		return f.PlaylistTracks, Ok("fetched")
	}
	return f.PlaylistTracks, f.ProbePlaylistResult
}

func (f *FakeSpotifyClient) ProbePlayback(ctx context.Context, accessToken string) (SpotifyPlayback, Result) {
	if f.ProbePlaybackResult == (Result{}) {
		return f.Playback, Ok("fetched")
	}
	return f.Playback, f.ProbePlaybackResult
}

func (f *FakeSpotifyClient) AddToPlaylist(ctx context.Context, accessToken, playlistID, trackURI string) Result {
	f.AddToPlaylistCalls = append(f.AddToPlaylistCalls, struct{ PlaylistID, TrackURI string }{playlistID, trackURI})
	if f.AddToPlaylistResult == (Result{}) {
		return Ok("Track added to playlist " + playlistID)
	}
	return f.AddToPlaylistResult
}

func (f *FakeSpotifyClient) CreatePlaylist(ctx context.Context, accessToken, userID, name, description string, public bool) (string, Result) {
	f.CreatePlaylistCalls = append(f.CreatePlaylistCalls, struct {
		UserID, Name, Description string
		Public                    bool
	}{userID, name, description, public})
	if f.CreatePlaylistResult == (Result{}) {
		return f.CreatePlaylistID, Ok("Playlist " + name + " created")
	}
	return f.CreatePlaylistID, f.CreatePlaylistResult
}

func (f *FakeSpotifyClient) StartPlayback(ctx context.Context, accessToken, deviceID, trackURI, contextURI string) Result {
	f.StartPlaybackCalls = append(f.StartPlaybackCalls, struct{ DeviceID, TrackURI, ContextURI string }{deviceID, trackURI, contextURI})
	if f.StartPlaybackResult == (Result{}) {
		return Ok("Playback started")
	}
	return f.StartPlaybackResult
}

var _ SpotifyClient = (*FakeSpotifyClient)(nil)
