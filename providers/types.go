package providers

import "time"

// EmailMessage is the normalized shape returned by GmailClient.ProbeMessages, matching the
// fields original_source/server/utils/gmail_client.py's get_email_details extracts.
type EmailMessage struct {
	ID        string
	Sender    string
	Subject   string
	Body      string
	Timestamp time.Time
}

// DriveFile is the normalized shape returned by DriveClient.ProbeFiles.
type DriveFile struct {
	ID           string
	Name         string
	FolderName   string
	CreatedTime  time.Time
}

// FacebookPost is the normalized shape returned by FacebookClient.ProbePosts.
type FacebookPost struct {
	ID        string
	Message   string
	CreatedAt time.Time
}

// GitHubStar is one stargazer event.
type GitHubStar struct {
	User      string
	StarredAt time.Time
}

// GitHubIssue is one issue or pull request (GitHub's API returns both from the same
// endpoint; ProbeIssues returns both and marks pull requests with IsPR, which the
// new_issue_created Checker skips).
type GitHubIssue struct {
	Number    int
	Title     string
	CreatedAt time.Time
	IsPR      bool
}

// SpotifyTrack is one track addition/save event.
type SpotifyTrack struct {
	URI     string
	Name    string
	Artists string
	AddedAt time.Time
}

// SpotifyPlayback is the user's current playback state.
type SpotifyPlayback struct {
	IsPlaying bool
	TrackName string
	Artists   string
}
