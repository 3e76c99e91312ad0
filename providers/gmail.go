package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// GmailClient probes a user's Gmail inbox, adapted from
// original_source/server/utils/gmail_client.py's fetch_new_emails/get_email_details onto
// the Gmail REST API directly (no googleapiclient equivalent exists in the example pack).
type GmailClient interface {
	ProbeMessages(ctx context.Context, accessToken string, since time.Time) ([]EmailMessage, Result)
}

type gmailHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type gmailPayload struct {
	Headers []gmailHeader `json:"headers"`
	Body    struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []gmailPayload `json:"parts"`
}

type gmailMessageDetail struct {
	ID            string       `json:"id"`
	Snippet       string       `json:"snippet"`
	InternalDate  string       `json:"internalDate"`
	Payload       gmailPayload `json:"payload"`
}

type gmailListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// HTTPGmailClient calls https://gmail.googleapis.com/gmail/v1 directly.
type HTTPGmailClient struct{}

func NewHTTPGmailClient() *HTTPGmailClient { return &HTTPGmailClient{} }

func (c *HTTPGmailClient) ProbeMessages(ctx context.Context, accessToken string, since time.Time) ([]EmailMessage, Result) {
	query := fmt.Sprintf("after:%d", since.Unix())
	url := fmt.Sprintf("https://gmail.googleapis.com/gmail/v1/users/me/messages?q=%s&maxResults=10", query)

	var list gmailListResponse
	if err := doJSON(ctx, "GET", url, accessToken, nil, &list); err != nil {
		return nil, Fail(err)
	}

	messages := make([]EmailMessage, 0, len(list.Messages))
	for _, m := range list.Messages {
		detailURL := fmt.Sprintf("https://gmail.googleapis.com/gmail/v1/users/me/messages/%s?format=full", m.ID)
		var detail gmailMessageDetail
		if err := doJSON(ctx, "GET", detailURL, accessToken, nil, &detail); err != nil {
			return nil, Fail(err)
		}
		messages = append(messages, EmailMessage{
			ID:        detail.ID,
			Sender:    header(detail.Payload, "From"),
			Subject:   header(detail.Payload, "Subject"),
			Body:      extractBody(detail.Payload),
			Timestamp: internalDateToTime(detail.InternalDate),
		})
	}
	return messages, Ok("fetched")
}

func header(p gmailPayload, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func extractBody(p gmailPayload) string {
	if p.Body.Data != "" {
		return decodeBase64URL(p.Body.Data)
	}
	for _, part := range p.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}
	return ""
}

func decodeBase64URL(s string) string {
	b, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(s)
	if err != nil {
		return ""
	}
	return string(b)
}

func internalDateToTime(ms string) time.Time {
	var n int64
	fmt.Sscanf(ms, "%d", &n)
	if n == 0 {
		return time.Time{}
	}
	return time.UnixMilli(n).UTC()
}

var _ GmailClient = (*HTTPGmailClient)(nil)
