package service

import (
	"context"
	"fmt"
	"io"
)

// UploadResult is the durable reference handed back by a media backend.
type UploadResult struct {
	URL       string
	Reference string // GCS object path or CDN public_id
	Provider  string
}

// MediaUploadService uploads complaint media to exactly one configured
// backend. Implementations never retry; the caller decides what a failure
// means.
//
// PlanObjectPath exists because the object-storage backend needs its path
// computed once, before the metadata write, and reused verbatim by the
// deferred upload. Planning it twice would race and orphan the reference
// stored in the record. The CDN backend mints its own reference after the
// upload, so it returns an empty plan and no such race exists there.
type MediaUploadService interface {
	PlanObjectPath(userID, filename string) string
	Upload(ctx context.Context, content io.Reader, contentType, userID, complaintID, plannedPath string) (*UploadResult, error)
	Delete(ctx context.Context, reference string) error
	Provider() string
	Close() error
}

// UploadError carries the backend's verdict for logs and tests.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("media upload failed: status=%d body=%s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("media upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
