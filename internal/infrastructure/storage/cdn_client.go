package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"laporwarga/internal/domain/service"
)

const cdnProvider = "cdn"

// CdnClient implements the CDN upload strategy: an unsigned multipart POST
// with a preset name. The CDN assigns the final public_id itself, so there
// is no path to plan up front.
type CdnClient struct {
	uploadURL  string
	preset     string
	userFolder bool
	httpClient *http.Client
}

func NewCdnClient(uploadURL, preset string, userFolder bool) *CdnClient {
	return &CdnClient{
		uploadURL:  uploadURL,
		preset:     preset,
		userFolder: userFolder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *CdnClient) Provider() string {
	return cdnProvider
}

// PlanObjectPath returns empty: the CDN mints the reference on upload.
func (c *CdnClient) PlanObjectPath(userID, filename string) string {
	return ""
}

type cdnUploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

func (c *CdnClient) Upload(ctx context.Context, content io.Reader, contentType, userID, complaintID, plannedPath string) (*service.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "upload")
	if err != nil {
		return nil, &service.UploadError{Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, &service.UploadError{Err: fmt.Errorf("failed to buffer upload body: %w", err)}
	}

	if err := writer.WriteField("upload_preset", c.preset); err != nil {
		return nil, &service.UploadError{Err: err}
	}
	if c.userFolder && userID != "" {
		if err := writer.WriteField("folder", "complaints/"+userID); err != nil {
			return nil, &service.UploadError{Err: err}
		}
	}
	if complaintID != "" {
		if err := writer.WriteField("context", "complaint_id="+complaintID); err != nil {
			return nil, &service.UploadError{Err: err}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, &service.UploadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, &service.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &service.UploadError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &service.UploadError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var parsed cdnUploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &service.UploadError{Err: fmt.Errorf("failed to parse upload response: %w", err)}
	}
	if parsed.SecureURL == "" {
		return nil, &service.UploadError{Err: fmt.Errorf("upload response missing secure_url")}
	}

	return &service.UploadResult{
		URL:       parsed.SecureURL,
		Reference: parsed.PublicID,
		Provider:  cdnProvider,
	}, nil
}

// Delete is not supported by the unsigned upload endpoint; removal happens
// through the provider console or a signed admin API outside this service.
func (c *CdnClient) Delete(ctx context.Context, reference string) error {
	return nil
}

func (c *CdnClient) Close() error {
	return nil
}
