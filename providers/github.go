package providers

import (
	"context"
	"fmt"
	"time"
)

// GitHubClient probes a repository's stargazers and issues, grounded on
// original_source/server/utils/github_client.py's get_stargazers/get_issues/create_issue.
type GitHubClient interface {
	ProbeStars(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubStar, Result)
	ProbeIssues(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubIssue, Result)
	CreateIssue(ctx context.Context, accessToken, owner, repo, title, body string) Result
}

type githubStarResource struct {
	StarredAt string `json:"starred_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type githubIssueResource struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
	PullRequest *struct {
		URL string `json:"url"`
	} `json:"pull_request"`
}

// HTTPGitHubClient calls the GitHub REST API directly.
type HTTPGitHubClient struct{}

func NewHTTPGitHubClient() *HTTPGitHubClient { return &HTTPGitHubClient{} }

func (c *HTTPGitHubClient) ProbeStars(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubStar, Result) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/stargazers?per_page=30", owner, repo)

	var resources []githubStarResource
	if err := doJSONWithStarAccept(ctx, url, accessToken, &resources); err != nil {
		return nil, Fail(err)
	}

	stars := make([]GitHubStar, 0, len(resources))
	for _, s := range resources {
		starredAt, _ := time.Parse(time.RFC3339, s.StarredAt)
		if starredAt.After(since) {
			stars = append(stars, GitHubStar{User: s.User.Login, StarredAt: starredAt})
		}
	}
	return stars, Ok("fetched")
}

// doJSONWithStarAccept requests the starred_at timestamp, which GitHub only includes when
// the Accept header requests the star+json media type.
func doJSONWithStarAccept(ctx context.Context, url, token string, out interface{}) error {
	return doJSONAccept(ctx, "GET", url, token, "application/vnd.github.star+json", nil, out)
}

func (c *HTTPGitHubClient) ProbeIssues(ctx context.Context, accessToken, owner, repo string, since time.Time) ([]GitHubIssue, Result) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/issues?since=%s&state=all&per_page=30",
		owner, repo, since.UTC().Format(time.RFC3339))

	var resources []githubIssueResource
	if err := doJSON(ctx, "GET", url, accessToken, nil, &resources); err != nil {
		return nil, Fail(err)
	}

	issues := make([]GitHubIssue, 0, len(resources))
	for _, i := range resources {
		createdAt, _ := time.Parse(time.RFC3339, i.CreatedAt)
		issues = append(issues, GitHubIssue{
			Number:    i.Number,
			Title:     i.Title,
			CreatedAt: createdAt,
			IsPR:      i.PullRequest != nil,
		})
	}
	return issues, Ok("fetched")
}

func (c *HTTPGitHubClient) CreateIssue(ctx context.Context, accessToken, owner, repo, title, body string) Result {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/issues", owner, repo)
	reqBody := map[string]interface{}{"title": title, "body": body}
	var resp struct {
		Number int `json:"number"`
	}
	if err := doJSON(ctx, "POST", url, accessToken, reqBody, &resp); err != nil {
		return Fail(err)
	}
	return Ok(fmt.Sprintf("Issue #%d created", resp.Number))
}

var _ GitHubClient = (*HTTPGitHubClient)(nil)
