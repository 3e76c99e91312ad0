package providers

import (
	"context"
	"fmt"
	"time"
)

// DriveClient probes Google Drive for newly created files, grounded on
// original_source/server/utils/drive_client.py's list_recent_files/get_folder_name.
type DriveClient interface {
	ProbeFiles(ctx context.Context, accessToken string, folderID string, since time.Time) ([]DriveFile, Result)
	CreateFile(ctx context.Context, accessToken, name, folderID, content string) (DriveFile, Result)
	CreateFolder(ctx context.Context, accessToken, name, parentID string) (DriveFile, Result)
	ShareFile(ctx context.Context, accessToken, fileID, email, role string) Result
}

type driveFileResource struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Parents      []string `json:"parents"`
	CreatedTime  string   `json:"createdTime"`
}

type driveListResponse struct {
	Files []driveFileResource `json:"files"`
}

// HTTPDriveClient calls https://www.googleapis.com/drive/v3 directly.
type HTTPDriveClient struct{}

func NewHTTPDriveClient() *HTTPDriveClient { return &HTTPDriveClient{} }

func (c *HTTPDriveClient) ProbeFiles(ctx context.Context, accessToken string, folderID string, since time.Time) ([]DriveFile, Result) {
	q := fmt.Sprintf("trashed=false and createdTime > '%s'", since.UTC().Format(time.RFC3339))
	if folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", folderID)
	}
	url := fmt.Sprintf("https://www.googleapis.com/drive/v3/files?q=%s&fields=files(id,name,parents,createdTime)", q)

	var list driveListResponse
	if err := doJSON(ctx, "GET", url, accessToken, nil, &list); err != nil {
		return nil, Fail(err)
	}

	files := make([]DriveFile, 0, len(list.Files))
	for _, f := range list.Files {
		created, _ := time.Parse(time.RFC3339, f.CreatedTime)
		folderName := c.folderName(ctx, accessToken, f.Parents)
		files = append(files, DriveFile{ID: f.ID, Name: f.Name, FolderName: folderName, CreatedTime: created})
	}
	return files, Ok("fetched")
}

func (c *HTTPDriveClient) folderName(ctx context.Context, accessToken string, parents []string) string {
	if len(parents) == 0 {
		return ""
	}
	var folder driveFileResource
	url := fmt.Sprintf("https://www.googleapis.com/drive/v3/files/%s?fields=name", parents[0])
	if err := doJSON(ctx, "GET", url, accessToken, nil, &folder); err != nil {
		return ""
	}
	return folder.Name
}

func (c *HTTPDriveClient) CreateFile(ctx context.Context, accessToken, name, folderID, content string) (DriveFile, Result) {
	body := map[string]interface{}{"name": name}
	if folderID != "" {
		body["parents"] = []string{folderID}
	}
	var created driveFileResource
	if err := doJSON(ctx, "POST", "https://www.googleapis.com/drive/v3/files", accessToken, body, &created); err != nil {
		return DriveFile{}, Fail(err)
	}
	return DriveFile{ID: created.ID, Name: created.Name}, Ok(fmt.Sprintf("File %s created", name))
}

func (c *HTTPDriveClient) CreateFolder(ctx context.Context, accessToken, name, parentID string) (DriveFile, Result) {
	body := map[string]interface{}{"name": name, "mimeType": "application/vnd.google-apps.folder"}
	if parentID != "" {
		body["parents"] = []string{parentID}
	}
	var created driveFileResource
	if err := doJSON(ctx, "POST", "https://www.googleapis.com/drive/v3/files", accessToken, body, &created); err != nil {
		return DriveFile{}, Fail(err)
	}
	return DriveFile{ID: created.ID, Name: created.Name}, Ok(fmt.Sprintf("Folder %s created", name))
}

func (c *HTTPDriveClient) ShareFile(ctx context.Context, accessToken, fileID, email, role string) Result {
	if role == "" {
		role = "writer"
	}
	body := map[string]interface{}{"type": "user", "role": role, "emailAddress": email}
	url := fmt.Sprintf("https://www.googleapis.com/drive/v3/files/%s/permissions", fileID)
	if err := doJSON(ctx, "POST", url, accessToken, body, nil); err != nil {
		return Fail(err)
	}
	return Ok(fmt.Sprintf("File shared with %s as %s", email, role))
}

var _ DriveClient = (*HTTPDriveClient)(nil)
