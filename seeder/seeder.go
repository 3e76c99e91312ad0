// Package seeder idempotently populates the service/action/reaction catalog on process
// start (spec §4.5), grounded on original_source/server/seed_data.py's seed_all.
package seeder

import (
	"context"

	"github.com/area-engine/core/logging"
	"github.com/area-engine/core/models"
	"github.com/area-engine/core/store"
	"golang.org/x/crypto/bcrypt"
)

// Seeder ensures the built-in catalog and a default admin account exist. It is purely
// additive: EnsureX calls never overwrite an existing row (spec §4.5).
type Seeder struct {
	store store.Store
	log   *logging.ContextLogger
}

func New(s store.Store) *Seeder {
	return &Seeder{store: s, log: logging.Named("seeder")}
}

// Run seeds the admin user and every built-in service/action/reaction. Safe to call on
// every process start; calling it twice changes no row counts (spec §8 idempotence).
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}
	for _, svc := range builtinCatalog() {
		if err := s.seedService(ctx, svc); err != nil {
			return err
		}
	}
	s.log.Info("seeding complete")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hashStr := string(hash)
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@area.local",
		PasswordHash: &hashStr,
	}
	if err := s.store.EnsureUser(ctx, admin); err != nil {
		return err
	}
	s.log.Info("ensured default admin user")
	return nil
}

type catalogAction struct {
	name, displayName, description string
	schema                         models.JSONMap
}

type catalogReaction = catalogAction

type catalogService struct {
	name, displayName, description string
	requiresOAuth                  bool
	actions                        []catalogAction
	reactions                      []catalogReaction
}

func (s *Seeder) seedService(ctx context.Context, c catalogService) error {
	svc, err := s.store.EnsureService(ctx, &models.Service{
		Name:          c.name,
		DisplayName:   c.displayName,
		Description:   c.description,
		RequiresOAuth: c.requiresOAuth,
		IsActive:      true,
	})
	if err != nil {
		return err
	}

	for _, a := range c.actions {
		if _, err := s.store.EnsureAction(ctx, &models.Action{
			ServiceID:    svc.ID,
			Name:         a.name,
			DisplayName:  a.displayName,
			Description:  a.description,
			ConfigSchema: a.schema,
		}); err != nil {
			return err
		}
	}
	for _, r := range c.reactions {
		if _, err := s.store.EnsureReaction(ctx, &models.Reaction{
			ServiceID:    svc.ID,
			Name:         r.name,
			DisplayName:  r.displayName,
			Description:  r.description,
			ConfigSchema: r.schema,
		}); err != nil {
			return err
		}
	}
	return nil
}

func schema(required []string, properties models.JSONMap) models.JSONMap {
	s := models.JSONMap{"type": "object", "properties": properties}
	if len(required) > 0 {
		reqs := make([]interface{}, len(required))
		for i, r := range required {
			reqs[i] = r
		}
		s["required"] = reqs
	}
	return s
}

func prop(typ string) models.JSONMap { return models.JSONMap{"type": typ} }

func propEnum(typ string, values ...string) models.JSONMap {
	enum := make([]interface{}, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return models.JSONMap{"type": typ, "enum": enum}
}

// builtinCatalog mirrors seed_data.py's seed_timer_service through seed_spotify_service,
// one entry per Service, in the same order.
func builtinCatalog() []catalogService {
	return []catalogService{
		{
			name: "timer", displayName: "Timer", description: "Time-based triggers and scheduling",
			actions: []catalogAction{
				{"time_matches", "Time matches HH:MM", "Triggers when current time matches specified time (checks every minute)",
					schema([]string{"time"}, models.JSONMap{"time": prop("string")})},
				{"interval_elapsed", "Every X minutes", "Triggers every specified number of minutes",
					schema([]string{"interval_minutes"}, models.JSONMap{"interval_minutes": prop("integer")})},
			},
		},
		{
			name: "email", displayName: "Email", description: "Send emails via SMTP",
			reactions: []catalogReaction{
				{"send_email", "Send an email", "Sends an email to the specified recipient",
					schema([]string{"to", "subject", "body"}, models.JSONMap{
						"to": prop("string"), "subject": prop("string"), "body": prop("string"),
					})},
			},
		},
		{
			name: "system", displayName: "System", description: "System-level actions and reactions",
			reactions: []catalogReaction{
				{"log_message", "Log a message", "Saves a message to workflow execution logs",
					schema([]string{"message"}, models.JSONMap{"message": prop("string")})},
				{"send_notification", "Send notification", "Logs notification to console (placeholder for real notifications)",
					schema([]string{"title", "body"}, models.JSONMap{"title": prop("string"), "body": prop("string")})},
			},
		},
		{
			name: "gmail", displayName: "Gmail", description: "Email detection and monitoring", requiresOAuth: true,
			actions: []catalogAction{
				{"email_received_from", "Email Received From", "Triggers when email is received from a specific sender",
					schema([]string{"sender"}, models.JSONMap{"sender": prop("string")})},
				{"email_subject_contains", "Email Subject Contains", "Triggers when email subject contains specific keyword",
					schema([]string{"keyword"}, models.JSONMap{"keyword": prop("string")})},
			},
		},
		{
			name: "drive", displayName: "Google Drive", description: "Cloud storage and file management", requiresOAuth: true,
			actions: []catalogAction{
				{"new_file_in_folder", "New File in Folder", "Triggers when a new file is added to a specific folder",
					schema([]string{"folder_name"}, models.JSONMap{"folder_name": prop("string")})},
				{"new_file_uploaded", "New File Uploaded", "Triggers when any new file is uploaded to Drive",
					schema(nil, models.JSONMap{})},
			},
			reactions: []catalogReaction{
				{"create_file", "Create a file", "Creates a new text file in Google Drive",
					schema([]string{"file_name", "content"}, models.JSONMap{
						"file_name": prop("string"), "content": prop("string"), "folder_name": prop("string"),
					})},
				{"create_folder", "Create a folder", "Creates a new folder in Google Drive",
					schema([]string{"folder_name"}, models.JSONMap{"folder_name": prop("string")})},
				{"share_file", "Share a file", "Shares a file with a user by email",
					schema([]string{"file_name", "email", "role"}, models.JSONMap{
						"file_name": prop("string"), "email": prop("string"), "role": propEnum("string", "reader", "writer"),
					})},
			},
		},
		{
			name: "facebook", displayName: "Facebook", description: "Personal timeline post monitoring", requiresOAuth: true,
			actions: []catalogAction{
				{"new_post_created", "New Post Created", "Triggers when you create a new post on your Facebook timeline",
					schema(nil, models.JSONMap{})},
				{"post_contains_keyword", "Post Contains Keyword", "Triggers when your Facebook post contains a specific keyword",
					schema([]string{"keyword"}, models.JSONMap{"keyword": prop("string")})},
			},
			reactions: []catalogReaction{
				{"create_post", "Create Post", "Creates a new post on your Facebook timeline",
					schema([]string{"message"}, models.JSONMap{"message": prop("string")})},
			},
		},
		{
			name: "github", displayName: "GitHub", description: "Repository monitoring and automation", requiresOAuth: true,
			actions: []catalogAction{
				{"new_star_on_repo", "New Star on Repository", "Triggers when someone stars your repository",
					schema([]string{"repo_name"}, models.JSONMap{"repo_name": prop("string")})},
				{"new_issue_created", "New Issue Created", "Triggers when a new issue is created in your repository",
					schema([]string{"repo_name"}, models.JSONMap{"repo_name": prop("string")})},
				{"new_pr_opened", "New Pull Request Opened", "Triggers when a new PR is opened in your repository",
					schema([]string{"repo_name"}, models.JSONMap{"repo_name": prop("string")})},
			},
			reactions: []catalogReaction{
				{"create_issue", "Create Issue", "Creates a new issue in a repository",
					schema([]string{"repo_name", "title", "body"}, models.JSONMap{
						"repo_name": prop("string"), "title": prop("string"), "body": prop("string"),
					})},
			},
		},
		{
			name: "spotify", displayName: "Spotify", description: "Music playback control and playlist management", requiresOAuth: true,
			actions: []catalogAction{
				{"track_added_to_playlist", "Track Added to Playlist", "Triggers when a new track is added to a specific playlist",
					schema([]string{"playlist_id"}, models.JSONMap{"playlist_id": prop("string")})},
				{"track_saved", "Track Saved to Library", "Triggers when you save (like) a new track to your library",
					schema(nil, models.JSONMap{})},
				{"playback_started", "Playback Started", "Triggers when you start playing music on Spotify",
					schema(nil, models.JSONMap{})},
			},
			reactions: []catalogReaction{
				{"add_to_playlist", "Add Track to Playlist", "Add a track to a specific playlist",
					schema([]string{"playlist_id", "track_uri"}, models.JSONMap{
						"playlist_id": prop("string"), "track_uri": prop("string"),
					})},
				{"create_playlist", "Create Playlist", "Create a new playlist in your Spotify account",
					schema([]string{"name"}, models.JSONMap{
						"name": prop("string"), "description": prop("string"), "public": prop("boolean"),
					})},
				{"start_playback", "Start Playback", "Start playing a specific track or playlist",
					schema(nil, models.JSONMap{"track_uri": prop("string"), "context_uri": prop("string")})},
			},
		},
	}
}
