package providers

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// FacebookClient probes a managed Page's feed and publishes posts, grounded on
// original_source/server/utils/facebook_client.py's get_recent_posts/create_post.
type FacebookClient interface {
	ProbePosts(ctx context.Context, accessToken, pageID string, since time.Time) ([]FacebookPost, Result)
	CreatePost(ctx context.Context, accessToken, pageID, message string) Result
}

type facebookPostResource struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_time"`
}

type facebookFeedResponse struct {
	Data []facebookPostResource `json:"data"`
}

// HTTPFacebookClient calls the Facebook Graph API directly.
type HTTPFacebookClient struct{}

func NewHTTPFacebookClient() *HTTPFacebookClient { return &HTTPFacebookClient{} }

func (c *HTTPFacebookClient) ProbePosts(ctx context.Context, accessToken, pageID string, since time.Time) ([]FacebookPost, Result) {
	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/feed?fields=id,message,created_time&since=%d",
		pageID, since.Unix())

	var feed facebookFeedResponse
	if err := doJSON(ctx, "GET", url, accessToken, nil, &feed); err != nil {
		return nil, Fail(err)
	}

	posts := make([]FacebookPost, 0, len(feed.Data))
	for _, p := range feed.Data {
		created, _ := time.Parse("2006-01-02T15:04:05-0700", p.CreatedAt)
		posts = append(posts, FacebookPost{ID: p.ID, Message: p.Message, CreatedAt: created})
	}
	return posts, Ok("fetched")
}

func (c *HTTPFacebookClient) CreatePost(ctx context.Context, accessToken, pageID, message string) Result {
	url := fmt.Sprintf("https://graph.facebook.com/v19.0/%s/feed", pageID)
	body := map[string]interface{}{"message": message}
	var resp struct {
		ID string `json:"id"`
	}
	if err := doJSON(ctx, "POST", url, accessToken, body, &resp); err != nil {
		return Fail(err)
	}
	return Ok(fmt.Sprintf("Post created: %s", strings.TrimSpace(resp.ID)))
}

var _ FacebookClient = (*HTTPFacebookClient)(nil)
