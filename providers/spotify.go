package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SpotifyClient probes playlists and playback state, grounded on
// original_source/server/utils/spotify_client.py's get_playlist_tracks/get_current_playback.
type SpotifyClient interface {
	ProbeSavedTracks(ctx context.Context, accessToken string, since time.Time) ([]SpotifyTrack, Result)
	ProbePlaylistTracks(ctx context.Context, accessToken, playlistID string, since time.Time) ([]SpotifyTrack, Result)
	ProbePlayback(ctx context.Context, accessToken string) (SpotifyPlayback, Result)
	AddToPlaylist(ctx context.Context, accessToken, playlistID, trackURI string) Result
	CreatePlaylist(ctx context.Context, accessToken, userID, name, description string, public bool) (string, Result)
	// StartPlayback starts playback of exactly one of trackURI or contextURI, matching
	// /me/player/play's distinct "uris" (track queue) and "context_uri" (album/playlist/artist)
	// body fields. Callers pass the other as "".
	StartPlayback(ctx context.Context, accessToken, deviceID, trackURI, contextURI string) Result
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrackResource struct {
	URI     string          `json:"uri"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
}

type spotifySavedTrackItem struct {
	AddedAt string               `json:"added_at"`
	Track   spotifyTrackResource `json:"track"`
}

type spotifySavedTracksResponse struct {
	Items []spotifySavedTrackItem `json:"items"`
}

type spotifyPlaylistItemsResponse struct {
	Items []spotifySavedTrackItem `json:"items"`
}

type spotifyPlaybackResource struct {
	IsPlaying bool                 `json:"is_playing"`
	Item      spotifyTrackResource `json:"item"`
}

// HTTPSpotifyClient calls the Spotify Web API directly.
type HTTPSpotifyClient struct{}

func NewHTTPSpotifyClient() *HTTPSpotifyClient { return &HTTPSpotifyClient{} }

func joinArtists(artists []spotifyArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

func (c *HTTPSpotifyClient) ProbeSavedTracks(ctx context.Context, accessToken string, since time.Time) ([]SpotifyTrack, Result) {
	var resp spotifySavedTracksResponse
	if err := doJSON(ctx, "GET", "https://api.spotify.com/v1/me/tracks?limit=20", accessToken, nil, &resp); err != nil {
		return nil, Fail(err)
	}
	return savedItemsSince(resp.Items, since), Ok("fetched")
}

func (c *HTTPSpotifyClient) ProbePlaylistTracks(ctx context.Context, accessToken, playlistID string, since time.Time) ([]SpotifyTrack, Result) {
	url := fmt.Sprintf("https://api.spotify.com/v1/playlists/%s/tracks?limit=20", playlistID)
	var resp spotifyPlaylistItemsResponse
	if err := doJSON(ctx, "GET", url, accessToken, nil, &resp); err != nil {
		return nil, Fail(err)
	}
	return savedItemsSince(resp.Items, since), Ok("fetched")
}

func savedItemsSince(items []spotifySavedTrackItem, since time.Time) []SpotifyTrack {
	tracks := make([]SpotifyTrack, 0, len(items))
	for _, it := range items {
		addedAt, _ := time.Parse(time.RFC3339, it.AddedAt)
		if addedAt.After(since) {
			tracks = append(tracks, SpotifyTrack{
				URI:     it.Track.URI,
				Name:    it.Track.Name,
				Artists: joinArtists(it.Track.Artists),
				AddedAt: addedAt,
			})
		}
	}
	return tracks
}

func (c *HTTPSpotifyClient) ProbePlayback(ctx context.Context, accessToken string) (SpotifyPlayback, Result) {
	var resp spotifyPlaybackResource
	if err := doJSON(ctx, "GET", "https://api.spotify.com/v1/me/player", accessToken, nil, &resp); err != nil {
		return SpotifyPlayback{}, Fail(err)
	}
	return SpotifyPlayback{
		IsPlaying: resp.IsPlaying,
		TrackName: resp.Item.Name,
		Artists:   joinArtists(resp.Item.Artists),
	}, Ok("fetched")
}

func (c *HTTPSpotifyClient) AddToPlaylist(ctx context.Context, accessToken, playlistID, trackURI string) Result {
	url := fmt.Sprintf("https://api.spotify.com/v1/playlists/%s/tracks", playlistID)
	body := map[string]interface{}{"uris": []string{trackURI}}
	if err := doJSON(ctx, "POST", url, accessToken, body, nil); err != nil {
		return Fail(err)
	}
	return Ok(fmt.Sprintf("Track added to playlist %s", playlistID))
}

func (c *HTTPSpotifyClient) CreatePlaylist(ctx context.Context, accessToken, userID, name, description string, public bool) (string, Result) {
	url := fmt.Sprintf("https://api.spotify.com/v1/users/%s/playlists", userID)
	body := map[string]interface{}{"name": name, "public": public}
	if description != "" {
		body["description"] = description
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, "POST", url, accessToken, body, &resp); err != nil {
		return "", Fail(err)
	}
	return resp.ID, Ok(fmt.Sprintf("Playlist %s created", name))
}

func (c *HTTPSpotifyClient) StartPlayback(ctx context.Context, accessToken, deviceID, trackURI, contextURI string) Result {
	url := "https://api.spotify.com/v1/me/player/play"
	if deviceID != "" {
		url += "?device_id=" + deviceID
	}
	var body map[string]interface{}
	if contextURI != "" {
		body = map[string]interface{}{"context_uri": contextURI}
	} else {
		body = map[string]interface{}{"uris": []string{trackURI}}
	}
	if err := doJSON(ctx, "PUT", url, accessToken, body, nil); err != nil {
		return Fail(err)
	}
	return Ok("Playback started")
}

var _ SpotifyClient = (*HTTPSpotifyClient)(nil)
