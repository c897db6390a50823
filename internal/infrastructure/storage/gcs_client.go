package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"laporwarga/internal/domain/service"
)

const gcsProvider = "gcs"

// CloudStorageClient implements the object-storage upload strategy. Object
// paths are deterministic: the caller plans them before the metadata write
// and the deferred upload reuses the plan verbatim.
type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *CloudStorageClient) Provider() string {
	return gcsProvider
}

// PlanObjectPath builds the object path used both at write time and at
// upload time: complaints/<userID>/<unixnano>.<ext>.
func (c *CloudStorageClient) PlanObjectPath(userID, filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("complaints/%s/%d.%s", userID, time.Now().UnixNano(), ext)
}

func (c *CloudStorageClient) Upload(ctx context.Context, content io.Reader, contentType, userID, complaintID, plannedPath string) (*service.UploadResult, error) {
	path := plannedPath
	if path == "" {
		path = c.PlanObjectPath(userID, "")
	}

	obj := c.client.Bucket(c.bucketName).Object(path)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400" // 1 day caching

	if _, err := io.Copy(wc, content); err != nil {
		wc.Close()
		return nil, &service.UploadError{Err: fmt.Errorf("failed to copy file to GCS: %w", err)}
	}

	if err := wc.Close(); err != nil {
		return nil, &service.UploadError{Err: fmt.Errorf("failed to close writer: %w", err)}
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return nil, &service.UploadError{Err: fmt.Errorf("failed to set ACL: %w", err)}
	}

	return &service.UploadResult{
		URL:       c.downloadURL(path),
		Reference: path,
		Provider:  gcsProvider,
	}, nil
}

func (c *CloudStorageClient) downloadURL(path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, path)
}

func (c *CloudStorageClient) Delete(ctx context.Context, reference string) error {
	obj := c.client.Bucket(c.bucketName).Object(reference)
	if err := obj.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
