package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient is shared by every provider adapter. No HTTP client library (e.g. go-resty)
// appears anywhere in the example pack, so plain net/http is used directly — matching the
// style of evalgo-org-eve/notification/rapidmail.go, the pack's one other direct net/http
// caller, and justified in DESIGN.md.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// doJSON issues an HTTP request with a bearer token and decodes a JSON response body into
// out (if non-nil). A non-2xx status is returned as an error carrying the status code and
// response body, which ProviderError (areaerr) then surfaces verbatim per spec §7
// ("message carries the upstream error string").
func doJSON(ctx context.Context, method, url, token string, body interface{}, out interface{}) error {
	return doJSONAccept(ctx, method, url, token, "application/json", body, out)
}

// doJSONAccept is doJSON with an overridable Accept header, for endpoints whose response
// shape depends on a non-default media type (e.g. GitHub's star+json).
func doJSONAccept(ctx context.Context, method, url, token, accept string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %d: %s", method, url, resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", url, err)
		}
	}
	return nil
}
