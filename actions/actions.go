// Package actions implements the built-in Action Checkers (spec §4.2): for each Action
// kind, decide whether a workflow's trigger has fired since it was last evaluated.
package actions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/providers"
)

// TriggerOutcome is a Checker's verdict (spec §4.2).
type TriggerOutcome struct {
	Fired    bool
	Metadata string // the fingerprint to dedup and record as WorkflowLog.message
	Data     interface{}
}

// Checker decides whether workflow's Action has fired. It is pure relative to workflow
// inputs: it must not mutate LastTriggered or write logs, and it returns areaerr-typed
// errors so the Scheduler's isolation boundary can classify failures (spec §7).
type Checker func(ctx context.Context, deps engine.Deps, workflow *models.Workflow) (TriggerOutcome, error)

func notFired() TriggerOutcome { return TriggerOutcome{Fired: false} }

func fired(fingerprint string, data interface{}) TriggerOutcome {
	return TriggerOutcome{Fired: true, Metadata: fingerprint, Data: data}
}

func nowMinus(deps engine.Deps, d time.Duration) time.Time {
	now, err := deps.Clock.Now("UTC")
	if err != nil || now.IsZero() {
		now = time.Now().UTC()
	}
	return now.Add(-d)
}

func providerErr(res providers.Result) error {
	return areaerr.ProviderError(fmt.Errorf("%s", res.Error))
}

// TimeMatches fires when the wall-clock minute in the workflow's "timezone" equals the
// configured "HH:MM", provided the workflow has not already fired within the last 60s
// (spec §4.2 time_matches, §8 scenario 1). A workflow without a "timezone" key is evaluated
// in UTC; the engine-wide SCHEDULER_TIMEZONE setting is not consulted.
func TimeMatches(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	target, ok := w.ActionConfig.GetString("time")
	if !ok || target == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "time")
	}
	tz, _ := w.ActionConfig.GetString("timezone")
	if tz == "" {
		tz = "UTC"
	}

	now, err := deps.Clock.Now(tz)
	if err != nil {
		return notFired(), areaerr.ConfigError("invalid timezone %q", tz)
	}

	if now.Format("15:04") != target {
		return notFired(), nil
	}
	if w.LastTriggered != nil && now.Sub(*w.LastTriggered) < 60*time.Second {
		return notFired(), nil
	}
	return TriggerOutcome{Fired: true}, nil
}

// IntervalElapsed fires when now - lastTriggered >= interval_minutes, or immediately if
// lastTriggered is unset (spec §4.2 interval_elapsed, §8 boundary behavior).
func IntervalElapsed(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	minutes, ok := w.ActionConfig.GetFloat("interval_minutes")
	if !ok || minutes < 1 {
		return notFired(), areaerr.ConfigError("interval_minutes must be >= 1")
	}

	if w.LastTriggered == nil {
		return TriggerOutcome{Fired: true}, nil
	}

	now, _ := deps.Clock.Now("UTC")
	if now.Sub(*w.LastTriggered) >= time.Duration(minutes)*time.Minute {
		return TriggerOutcome{Fired: true}, nil
	}
	return notFired(), nil
}

// probeEmails fetches recent Gmail messages and returns the first one unseen by this
// workflow matching sender/keyword (either may be empty to mean "no filter").
func probeEmails(ctx context.Context, deps engine.Deps, w *models.Workflow, sender, keyword string) (TriggerOutcome, error) {
	token, err := deps.ResolveToken(ctx, w.UserID, "gmail")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	messages, res := deps.Gmail.ProbeMessages(ctx, token, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}

	for _, m := range messages {
		if sender != "" && !strings.Contains(strings.ToLower(m.Sender), strings.ToLower(sender)) {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(m.Subject), strings.ToLower(keyword)) {
			continue
		}
		fingerprint := fmt.Sprintf("Email from %s: %s", m.Sender, m.Subject)
		seen, err := deps.AlreadyLogged(ctx, w.ID, fingerprint)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, m), nil
		}
	}
	return notFired(), nil
}

// EmailReceivedFrom fires on the first unseen Gmail message whose From header matches
// sender (spec §4.2 email_received_from).
func EmailReceivedFrom(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	sender, ok := w.ActionConfig.GetString("sender")
	if !ok || sender == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "sender")
	}
	return probeEmails(ctx, deps, w, sender, "")
}

// EmailSubjectContains fires on the first unseen Gmail message whose Subject contains
// keyword, case-insensitively (spec §4.2 email_subject_contains).
func EmailSubjectContains(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	keyword, ok := w.ActionConfig.GetString("keyword")
	if !ok || keyword == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "keyword")
	}
	return probeEmails(ctx, deps, w, "", keyword)
}

// probeDriveFiles fetches recent Drive files and returns the newest one (by CreatedTime;
// ties keep probe order) unseen by this workflow, optionally restricted to folderName.
func probeDriveFiles(ctx context.Context, deps engine.Deps, w *models.Workflow, folderName string) (TriggerOutcome, error) {
	token, err := deps.ResolveToken(ctx, w.UserID, "drive")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	files, res := deps.Drive.ProbeFiles(ctx, token, "", since)
	if !res.Success {
		return notFired(), providerErr(res)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].CreatedTime.After(files[j].CreatedTime) })

	for _, f := range files {
		if folderName != "" && !strings.EqualFold(f.FolderName, folderName) {
			continue
		}
		fingerprint := fmt.Sprintf("New file: %s (id:%s)", f.Name, f.ID)
		seen, err := deps.AlreadyLoggedSubstring(ctx, w.ID, f.ID)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, f), nil
		}
	}
	return notFired(), nil
}

// NewFileInFolder fires on the newest unseen file within the named Drive folder
// (spec §4.2 new_file_in_folder).
func NewFileInFolder(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	folderName, ok := w.ActionConfig.GetString("folder_name")
	if !ok || folderName == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "folder_name")
	}
	return probeDriveFiles(ctx, deps, w, folderName)
}

// NewFileUploaded fires on any recent unseen Drive file (spec §4.2 new_file_uploaded).
func NewFileUploaded(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	return probeDriveFiles(ctx, deps, w, "")
}

func probeFacebookPosts(ctx context.Context, deps engine.Deps, w *models.Workflow, keyword string) (TriggerOutcome, error) {
	pageID, ok := w.ActionConfig.GetString("page_id")
	if !ok || pageID == "" {
		pageID = "me"
	}
	token, err := deps.ResolveToken(ctx, w.UserID, "facebook")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	posts, res := deps.Facebook.ProbePosts(ctx, token, pageID, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}

	for _, p := range posts {
		if keyword != "" && !strings.Contains(strings.ToLower(p.Message), strings.ToLower(keyword)) {
			continue
		}
		trimmed := p.Message
		if len(trimmed) > 50 {
			trimmed = trimmed[:50]
		}
		fingerprint := fmt.Sprintf("Facebook post: %s", trimmed)
		seen, err := deps.AlreadyLogged(ctx, w.ID, fingerprint)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, p), nil
		}
	}
	return notFired(), nil
}

// NewPostCreated fires on the first unseen Facebook Page post (spec §4.2 new_post_created).
func NewPostCreated(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	return probeFacebookPosts(ctx, deps, w, "")
}

// PostContainsKeyword fires on the first unseen post containing keyword
// (spec §4.2 post_contains_keyword).
func PostContainsKeyword(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	keyword, ok := w.ActionConfig.GetString("keyword")
	if !ok || keyword == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "keyword")
	}
	return probeFacebookPosts(ctx, deps, w, keyword)
}

func splitRepo(repoName string) (owner, repo string, err error) {
	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", areaerr.ConfigError("repo_name must be \"owner/repo\", got %q", repoName)
	}
	return parts[0], parts[1], nil
}

// NewStarOnRepo fires on the first unseen stargazer of repo_name (spec §4.2 new_star_on_repo).
func NewStarOnRepo(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	repoName, ok := w.ActionConfig.GetString("repo_name")
	if !ok || repoName == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "repo_name")
	}
	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return notFired(), err
	}
	token, err := deps.ResolveToken(ctx, w.UserID, "github")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	stars, res := deps.GitHub.ProbeStars(ctx, token, owner, repo, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}

	for _, s := range stars {
		fingerprint := fmt.Sprintf("New star from %s", s.User)
		seen, err := deps.AlreadyLogged(ctx, w.ID, fingerprint)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, s), nil
		}
	}
	return notFired(), nil
}

func probeGithubIssues(ctx context.Context, deps engine.Deps, w *models.Workflow, wantPR bool) (TriggerOutcome, error) {
	repoName, ok := w.ActionConfig.GetString("repo_name")
	if !ok || repoName == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "repo_name")
	}
	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return notFired(), err
	}
	token, err := deps.ResolveToken(ctx, w.UserID, "github")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	issues, res := deps.GitHub.ProbeIssues(ctx, token, owner, repo, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}

	label := "Issue"
	if wantPR {
		label = "PR"
	}
	for _, i := range issues {
		if i.IsPR != wantPR {
			continue
		}
		fingerprint := fmt.Sprintf("%s #%d: %s", label, i.Number, i.Title)
		seen, err := deps.AlreadyLogged(ctx, w.ID, fingerprint)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, i), nil
		}
	}
	return notFired(), nil
}

// NewIssueCreated fires on the first unseen issue, excluding PRs (spec §4.2 new_issue_created).
func NewIssueCreated(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	return probeGithubIssues(ctx, deps, w, false)
}

// NewPROpened fires on the first unseen pull request (spec §4.2 new_pr_opened).
func NewPROpened(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	return probeGithubIssues(ctx, deps, w, true)
}

func firstUnseenTrack(ctx context.Context, deps engine.Deps, w *models.Workflow, tracks []providers.SpotifyTrack, format string) (TriggerOutcome, error) {
	for _, t := range tracks {
		fingerprint := fmt.Sprintf(format, t.Name, t.Artists)
		seen, err := deps.AlreadyLogged(ctx, w.ID, fingerprint)
		if err != nil {
			return notFired(), areaerr.InternalError(err)
		}
		if !seen {
			return fired(fingerprint, t), nil
		}
	}
	return notFired(), nil
}

// TrackAddedToPlaylist fires on the first unseen track addition to playlist_id
// (spec §4.2 track_added_to_playlist).
func TrackAddedToPlaylist(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	playlistID, ok := w.ActionConfig.GetString("playlist_id")
	if !ok || playlistID == "" {
		return notFired(), areaerr.ConfigError("missing required config field %q", "playlist_id")
	}
	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	tracks, res := deps.Spotify.ProbePlaylistTracks(ctx, token, playlistID, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}
	return firstUnseenTrack(ctx, deps, w, tracks, "Track added: %s by %s")
}

// TrackSaved fires on the first unseen library addition (spec §4.2 track_saved).
func TrackSaved(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return notFired(), err
	}
	since := nowMinus(deps, deps.LookbackWindow)
	tracks, res := deps.Spotify.ProbeSavedTracks(ctx, token, since)
	if !res.Success {
		return notFired(), providerErr(res)
	}
	return firstUnseenTrack(ctx, deps, w, tracks, "Track saved: %s by %s")
}

// PlaybackStarted fires when the user is currently playing, logged at most once per
// 5-minute window per track (spec §4.2 playback_started, §9 open question preserved as-is):
// a track that has been playing continuously re-fires once LookbackWindow has elapsed since
// the last time this exact fingerprint was logged, matching original_source/server/scheduler/
// actions.py's "if time_since_log < 300: return {'triggered': False}".
func PlaybackStarted(ctx context.Context, deps engine.Deps, w *models.Workflow) (TriggerOutcome, error) {
	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return notFired(), err
	}
	playback, res := deps.Spotify.ProbePlayback(ctx, token)
	if !res.Success {
		return notFired(), providerErr(res)
	}
	if !playback.IsPlaying {
		return notFired(), nil
	}

	fingerprint := fmt.Sprintf("Now playing: %s by %s", playback.TrackName, playback.Artists)
	recent, err := deps.LoggedWithin(ctx, w.ID, fingerprint, deps.LookbackWindow)
	if err != nil {
		return notFired(), areaerr.InternalError(err)
	}
	if recent {
		return notFired(), nil
	}
	return fired(fingerprint, playback), nil
}
