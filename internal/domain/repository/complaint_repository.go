package repository

import (
	"context"

	"laporwarga/internal/domain/entity"
)

// ComplaintFilter narrows admin listings. Empty fields are ignored.
type ComplaintFilter struct {
	Status   string
	Category string
	UserID   string
}

type ComplaintRepository interface {
	// Create persists the complaint and fills in the store-assigned ID.
	Create(ctx context.Context, complaint *entity.Complaint) error
	GetByID(ctx context.Context, id string) (*entity.Complaint, error)
	// Patch updates only the given fields plus updatedAt.
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Complaint, int64, error)
	List(ctx context.Context, filter ComplaintFilter, limit, offset int) ([]*entity.Complaint, int64, error)

	// ListenByUser pushes a full snapshot of the user's complaints on every
	// change until the returned stop function is called. Notifications may
	// arrive out of order or duplicated.
	ListenByUser(ctx context.Context, userID string, fn func([]*entity.Complaint)) (func(), error)
	// ListenAll is the privileged variant covering every complaint.
	ListenAll(ctx context.Context, fn func([]*entity.Complaint)) (func(), error)
}
