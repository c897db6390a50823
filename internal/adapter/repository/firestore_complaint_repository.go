package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"laporwarga/internal/domain/entity"
	"laporwarga/internal/domain/repository"
	"laporwarga/pkg/errors"
	"laporwarga/pkg/logger"
)

const complaintCollection = "complaints"

type firestoreComplaintRepository struct {
	client *firestore.Client
}

func NewFirestoreComplaintRepository(client *firestore.Client) repository.ComplaintRepository {
	return &firestoreComplaintRepository{
		client: client,
	}
}

func (r *firestoreComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	// Let the store assign the identifier
	doc := r.client.Collection(complaintCollection).NewDoc()
	complaint.ID = doc.ID

	now := time.Now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now

	if _, err := doc.Set(ctx, complaint); err != nil {
		return errors.Store("Failed to save complaint", err)
	}
	return nil
}

func (r *firestoreComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	doc, err := r.client.Collection(complaintCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Complaint", err)
		}
		return nil, errors.Store("Failed to read complaint", err)
	}

	var complaint entity.Complaint
	if err := doc.DataTo(&complaint); err != nil {
		return nil, errors.Store("Failed to decode complaint", err)
	}
	complaint.ID = doc.Ref.ID

	return &complaint, nil
}

func (r *firestoreComplaintRepository) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updatedAt"] = time.Now()

	_, err := r.client.Collection(complaintCollection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Complaint", err)
		}
		return errors.Store("Failed to update complaint", err)
	}
	return nil
}

func (r *firestoreComplaintRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(complaintCollection).Doc(id).Delete(ctx)
	if err != nil {
		return errors.Store("Failed to delete complaint", err)
	}
	return nil
}

func (r *firestoreComplaintRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Complaint, int64, error) {
	query := r.client.Collection(complaintCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreComplaintRepository) List(ctx context.Context, filter repository.ComplaintFilter, limit, offset int) ([]*entity.Complaint, int64, error) {
	query := r.client.Collection(complaintCollection).Query

	if filter.Status != "" {
		query = query.Where("status", "==", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category", "==", filter.Category)
	}
	if filter.UserID != "" {
		query = query.Where("userId", "==", filter.UserID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	return r.collect(ctx, query, limit, offset)
}

func (r *firestoreComplaintRepository) collect(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Complaint, int64, error) {
	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Store("Failed to count complaints", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var complaints []*entity.Complaint

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Store("Failed to list complaints", err)
		}

		var complaint entity.Complaint
		if err := doc.DataTo(&complaint); err != nil {
			return nil, 0, errors.Store("Failed to decode complaint", err)
		}
		complaint.ID = doc.Ref.ID
		complaints = append(complaints, &complaint)
	}

	return complaints, total, nil
}

func (r *firestoreComplaintRepository) ListenByUser(ctx context.Context, userID string, fn func([]*entity.Complaint)) (func(), error) {
	query := r.client.Collection(complaintCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)

	return r.listen(ctx, query, fn)
}

func (r *firestoreComplaintRepository) ListenAll(ctx context.Context, fn func([]*entity.Complaint)) (func(), error) {
	query := r.client.Collection(complaintCollection).
		OrderBy("createdAt", firestore.Desc)

	return r.listen(ctx, query, fn)
}

// listen pushes a full decoded snapshot to fn on every change until the
// returned stop function is called. Consumers own their unsubscription.
func (r *firestoreComplaintRepository) listen(ctx context.Context, query firestore.Query, fn func([]*entity.Complaint)) (func(), error) {
	listenCtx, cancel := context.WithCancel(ctx)
	snapIter := query.Snapshots(listenCtx)

	go func() {
		defer snapIter.Stop()
		for {
			snap, err := snapIter.Next()
			if err != nil {
				if listenCtx.Err() == nil {
					logger.Warn("Complaint listener stopped: %v", err)
				}
				return
			}

			var complaints []*entity.Complaint
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Warn("Failed to read complaint snapshot: %v", err)
				continue
			}
			for _, doc := range docs {
				var complaint entity.Complaint
				if err := doc.DataTo(&complaint); err != nil {
					logger.Warn("Skipping undecodable complaint %s: %v", doc.Ref.ID, err)
					continue
				}
				complaint.ID = doc.Ref.ID
				complaints = append(complaints, &complaint)
			}

			fn(complaints)
		}
	}()

	return cancel, nil
}
