// Package reactions implements the built-in Reaction Executors (spec §4.3): for each
// Reaction kind, perform the configured effect and report the outcome.
package reactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/engine"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/providers"
)

// ExecutionResult is an Executor's verdict (spec §4.3).
type ExecutionResult struct {
	Success bool
	Message string
	Error   string
}

// Executor performs workflow's Reaction. Provider/connection failures are returned as
// areaerr-typed errors; logic failures that are still "the reaction ran, just failed" are
// reported via ExecutionResult.Success=false instead, matching spec §4.3's "Every provider
// client ... returns ExecutionResult-shaped values; HTTP-layer errors are converted to
// {success:false, error} — they are never raised upward".
type Executor func(ctx context.Context, deps engine.Deps, workflow *models.Workflow) (ExecutionResult, error)

func ok(message string) ExecutionResult     { return ExecutionResult{Success: true, Message: message} }
func fail(errMsg string) ExecutionResult    { return ExecutionResult{Success: false, Error: errMsg} }

func required(cfg models.JSONMap, key string) (string, error) {
	v, ok := cfg.GetString(key)
	if !ok || v == "" {
		return "", areaerr.ConfigError("missing required config field %q", key)
	}
	return v, nil
}

// SendEmail dispatches via the SMTP collaborator (spec §4.3 send_email).
func SendEmail(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	to, err := required(w.ReactionConfig, "to")
	if err != nil {
		return ExecutionResult{}, err
	}
	subject, err := required(w.ReactionConfig, "subject")
	if err != nil {
		return ExecutionResult{}, err
	}
	body, err := required(w.ReactionConfig, "body")
	if err != nil {
		return ExecutionResult{}, err
	}

	res := deps.SMTP.Send(to, subject, body, false)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// CreateFile resolves folder_name (if given) and creates a text file in Drive
// (spec §4.3 create_file).
func CreateFile(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	fileName, err := required(w.ReactionConfig, "file_name")
	if err != nil {
		return ExecutionResult{}, err
	}
	content, err := required(w.ReactionConfig, "content")
	if err != nil {
		return ExecutionResult{}, err
	}
	folderName, _ := w.ReactionConfig.GetString("folder_name")

	token, err := deps.ResolveToken(ctx, w.UserID, "drive")
	if err != nil {
		return ExecutionResult{}, err
	}

	folderID, err := resolveFolderID(ctx, deps, token, folderName)
	if err != nil {
		return ExecutionResult{}, err
	}

	_, res := deps.Drive.CreateFile(ctx, token, fileName, folderID, content)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// resolveFolderID looks up a Drive folder's id by name; empty folderName means "root"
// (empty parent). It probes the user's Drive listing and returns the id of the first entry
// whose own name equals folderName, case-insensitively; the entry's type is not checked. If
// no entry with that name is found, the new file is created at the root rather than failing
// the workflow.
func resolveFolderID(ctx context.Context, deps engine.Deps, token, folderName string) (string, error) {
	if folderName == "" {
		return "", nil
	}
	folders, res := deps.Drive.ProbeFiles(ctx, token, "", time.Time{})
	if !res.Success {
		return "", areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	for _, f := range folders {
		if strings.EqualFold(f.Name, folderName) {
			return f.ID, nil
		}
	}
	return "", nil
}

// CreateFolder creates a root-level Drive folder (spec §4.3 create_folder).
func CreateFolder(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	folderName, err := required(w.ReactionConfig, "folder_name")
	if err != nil {
		return ExecutionResult{}, err
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "drive")
	if err != nil {
		return ExecutionResult{}, err
	}

	_, res := deps.Drive.CreateFolder(ctx, token, folderName, "")
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// ShareFile resolves a file by name and grants a permission with notification
// (spec §4.3 share_file). role defaults to "writer" when the workflow doesn't configure one,
// matching HTTPDriveClient.ShareFile's default.
func ShareFile(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	fileName, err := required(w.ReactionConfig, "file_name")
	if err != nil {
		return ExecutionResult{}, err
	}
	email, err := required(w.ReactionConfig, "email")
	if err != nil {
		return ExecutionResult{}, err
	}
	role, _ := w.ReactionConfig.GetString("role")
	if role != "" && role != "reader" && role != "writer" {
		return ExecutionResult{}, areaerr.ConfigError("role must be reader or writer, got %q", role)
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "drive")
	if err != nil {
		return ExecutionResult{}, err
	}

	files, probeRes := deps.Drive.ProbeFiles(ctx, token, "", time.Time{})
	if !probeRes.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", probeRes.Error))
	}
	var fileID string
	for _, f := range files {
		if strings.EqualFold(f.Name, fileName) {
			fileID = f.ID
			break
		}
	}
	if fileID == "" {
		return fail(fmt.Sprintf("file %q not found", fileName)), nil
	}

	res := deps.Drive.ShareFile(ctx, token, fileID, email, role)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// CreatePost posts to Facebook /me/feed (spec §4.3 create_post).
func CreatePost(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	message, err := required(w.ReactionConfig, "message")
	if err != nil {
		return ExecutionResult{}, err
	}
	pageID, _ := w.ReactionConfig.GetString("page_id")
	if pageID == "" {
		pageID = "me"
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "facebook")
	if err != nil {
		return ExecutionResult{}, err
	}

	res := deps.Facebook.CreatePost(ctx, token, pageID, message)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// CreateIssue creates a GitHub issue (spec §4.3 create_issue).
func CreateIssue(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	repoName, err := required(w.ReactionConfig, "repo_name")
	if err != nil {
		return ExecutionResult{}, err
	}
	title, err := required(w.ReactionConfig, "title")
	if err != nil {
		return ExecutionResult{}, err
	}
	body, _ := w.ReactionConfig.GetString("body")

	parts := strings.SplitN(repoName, "/", 2)
	if len(parts) != 2 {
		return ExecutionResult{}, areaerr.ConfigError("repo_name must be \"owner/repo\", got %q", repoName)
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "github")
	if err != nil {
		return ExecutionResult{}, err
	}

	res := deps.GitHub.CreateIssue(ctx, token, parts[0], parts[1], title, body)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// normalizeTrackURI accepts a bare id or a full "spotify:track:…" URI (spec §4.3 add_to_playlist).
func normalizeTrackURI(uri string) string {
	if strings.HasPrefix(uri, "spotify:track:") {
		return uri
	}
	return "spotify:track:" + uri
}

// AddToPlaylist appends a track to a playlist (spec §4.3 add_to_playlist).
func AddToPlaylist(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	playlistID, err := required(w.ReactionConfig, "playlist_id")
	if err != nil {
		return ExecutionResult{}, err
	}
	trackURI, err := required(w.ReactionConfig, "track_uri")
	if err != nil {
		return ExecutionResult{}, err
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return ExecutionResult{}, err
	}

	res := deps.Spotify.AddToPlaylist(ctx, token, playlistID, normalizeTrackURI(trackURI))
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// CreatePlaylist creates a playlist under the current Spotify user (spec §4.3 create_playlist).
// description and public are optional config; public defaults to false.
func CreatePlaylist(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	name, err := required(w.ReactionConfig, "name")
	if err != nil {
		return ExecutionResult{}, err
	}
	description, _ := w.ReactionConfig.GetString("description")
	public, _ := w.ReactionConfig.GetBool("public")

	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return ExecutionResult{}, err
	}

	_, res := deps.Spotify.CreatePlaylist(ctx, token, "me", name, description, public)
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// StartPlayback starts playback of track_uri XOR context_uri (spec §4.3 start_playback).
// track_uri accepts a bare id or full "spotify:track:…" URI and is sent via the "uris" queue
// field; context_uri (album/playlist/artist) is passed through unmodified via the distinct
// "context_uri" field, matching /me/player/play's two mutually exclusive body shapes.
func StartPlayback(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	trackURI, _ := w.ReactionConfig.GetString("track_uri")
	contextURI, _ := w.ReactionConfig.GetString("context_uri")
	if trackURI == "" && contextURI == "" {
		return ExecutionResult{}, areaerr.ConfigError("one of track_uri or context_uri is required")
	}

	token, err := deps.ResolveToken(ctx, w.UserID, "spotify")
	if err != nil {
		return ExecutionResult{}, err
	}

	var res providers.Result
	if contextURI != "" {
		res = deps.Spotify.StartPlayback(ctx, token, "", "", contextURI)
	} else {
		res = deps.Spotify.StartPlayback(ctx, token, "", normalizeTrackURI(trackURI), "")
	}
	if !res.Success {
		return ExecutionResult{}, areaerr.ProviderError(fmt.Errorf("%s", res.Error))
	}
	return ok(res.Message), nil
}

// LogMessage records a workflow-internal message without calling any provider
// (spec §4.3 log_message / send_notification).
func LogMessage(ctx context.Context, deps engine.Deps, w *models.Workflow) (ExecutionResult, error) {
	if message, has := w.ReactionConfig.GetString("message"); has && message != "" {
		return ok(message), nil
	}
	title, _ := w.ReactionConfig.GetString("title")
	body, _ := w.ReactionConfig.GetString("body")
	if title == "" && body == "" {
		return ExecutionResult{}, areaerr.ConfigError("message, or title/body, is required")
	}
	return ok(strings.TrimSpace(fmt.Sprintf("%s: %s", title, body))), nil
}
