package usecase

import (
	"bytes"
	"context"
	"strings"
	"time"

	"laporwarga/internal/domain/entity"
	"laporwarga/internal/domain/repository"
	"laporwarga/internal/domain/service"
	"laporwarga/pkg/errors"
	"laporwarga/pkg/logger"
)

// PreviewFunc produces a bounded inline preview from raw image bytes.
type PreviewFunc func(data []byte) (string, error)

type ComplaintUseCase struct {
	complaintRepo repository.ComplaintRepository
	userRepo      repository.UserRepository
	uploader      service.MediaUploadService
	previewFn     PreviewFunc
	attachTimeout time.Duration

	// attachHook lets tests observe the detached attach task. The public
	// contract never depends on it: Submit has already returned by the
	// time it fires.
	attachHook func(complaintID string, err error)
}

func NewComplaintUseCase(
	complaintRepo repository.ComplaintRepository,
	userRepo repository.UserRepository,
	uploader service.MediaUploadService,
	previewFn PreviewFunc,
) *ComplaintUseCase {
	return &ComplaintUseCase{
		complaintRepo: complaintRepo,
		userRepo:      userRepo,
		uploader:      uploader,
		previewFn:     previewFn,
		attachTimeout: 2 * time.Minute,
	}
}

func (uc *ComplaintUseCase) SetAttachHook(hook func(complaintID string, err error)) {
	uc.attachHook = hook
}

type SubmitComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Priority    string `json:"priority,omitempty"`
}

// SubmitFile carries the media payload through the submission. The bytes
// are held in memory so the deferred upload survives the request teardown.
type SubmitFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// Submit validates the input, commits the metadata record, and returns.
// The metadata write is the commit point: once it succeeds the caller gets
// the complaint back regardless of whether the media upload has started,
// finished, or will fail. The upload runs detached and its failure is only
// visible in logs; the record stays valid with empty media fields.
func (uc *ComplaintUseCase) Submit(ctx context.Context, userID string, input SubmitComplaintInput, file *SubmitFile) (*entity.Complaint, error) {
	if userID == "" {
		return nil, errors.Unauthorized("You must be logged in to submit a complaint", nil)
	}

	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	if !entity.ValidPriority(priority) {
		return nil, errors.BadRequest("priority must be one of: low, medium, high", nil)
	}

	// The object path must be planned once, before the metadata write, so
	// the deferred upload reuses exactly the reference the record carries.
	plannedPath := ""
	if file != nil {
		plannedPath = uc.uploader.PlanObjectPath(userID, file.Filename)
	}

	now := time.Now()
	complaint := &entity.Complaint{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Priority:    priority,
		Status:      entity.StatusPending,
		StoragePath: plannedPath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if file != nil && strings.HasPrefix(file.ContentType, "image/") && uc.previewFn != nil {
		preview, err := uc.previewFn(file.Content)
		if err != nil {
			logger.Warn("Preview generation failed, continuing without one: %v", err)
		} else {
			complaint.Preview = preview
		}
	}

	if err := uc.complaintRepo.Create(ctx, complaint); err != nil {
		return nil, err
	}

	if file != nil {
		go uc.attachMedia(complaint.ID, userID, plannedPath, *file)
	}

	return complaint, nil
}

// attachMedia is the detached half of a submission. It runs on its own
// context: the triggering request may be long gone. Failures are logged
// and never retried; the record keeps its null media fields.
func (uc *ComplaintUseCase) attachMedia(complaintID, userID, plannedPath string, file SubmitFile) {
	ctx, cancel := context.WithTimeout(context.Background(), uc.attachTimeout)
	defer cancel()

	result, err := uc.uploader.Upload(ctx, bytes.NewReader(file.Content), file.ContentType, userID, complaintID, plannedPath)
	if err != nil {
		logger.Error("Media attach failed for complaint %s: %v", complaintID, err)
		uc.notifyAttach(complaintID, err)
		return
	}

	err = uc.complaintRepo.Patch(ctx, complaintID, map[string]interface{}{
		"fileURL":       result.URL,
		"storagePath":   result.Reference,
		"mediaProvider": result.Provider,
	})
	if err != nil {
		logger.Error("Failed to link media to complaint %s: %v", complaintID, err)
	}
	uc.notifyAttach(complaintID, err)
}

func (uc *ComplaintUseCase) notifyAttach(complaintID string, err error) {
	if uc.attachHook != nil {
		uc.attachHook(complaintID, err)
	}
}

func validateSubmitInput(input SubmitComplaintInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return errors.BadRequest("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return errors.BadRequest("description is required", nil)
	}
	if strings.TrimSpace(input.Category) == "" {
		return errors.BadRequest("category is required", nil)
	}
	if strings.TrimSpace(input.Location) == "" {
		return errors.BadRequest("location is required", nil)
	}
	return nil
}

func (uc *ComplaintUseCase) GetByID(ctx context.Context, callerID string, id string) (*entity.Complaint, error) {
	complaint, err := uc.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if complaint.UserID != callerID {
		caller, err := uc.userRepo.GetByID(ctx, callerID)
		if err != nil || !caller.IsAdmin() {
			return nil, errors.Forbidden("You don't have permission to view this complaint", nil)
		}
	}

	return complaint, nil
}

func (uc *ComplaintUseCase) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Complaint, int64, error) {
	return uc.complaintRepo.ListByUser(ctx, userID, limit, offset)
}

func (uc *ComplaintUseCase) ListAll(ctx context.Context, callerID string, filter repository.ComplaintFilter, limit, offset int) ([]*entity.Complaint, int64, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, 0, err
	}
	return uc.complaintRepo.List(ctx, filter, limit, offset)
}

type UpdateStatusInput struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// UpdateStatus is the admin triage operation: status, notes and assignee
// are the only fields an administrator may touch.
func (uc *ComplaintUseCase) UpdateStatus(ctx context.Context, callerID, id string, input UpdateStatusInput) (*entity.Complaint, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if !entity.ValidStatus(input.Status) {
		return nil, errors.BadRequest("status must be one of: pending, in_progress, resolved, rejected", nil)
	}

	if _, err := uc.complaintRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"status": input.Status,
	}
	if input.AdminNotes != "" {
		fields["adminNotes"] = input.AdminNotes
	}
	if input.AssignedTo != "" {
		fields["assignedTo"] = input.AssignedTo
	}

	if err := uc.complaintRepo.Patch(ctx, id, fields); err != nil {
		return nil, err
	}

	return uc.complaintRepo.GetByID(ctx, id)
}

// Delete removes the record first and then makes a best-effort attempt at
// the media object; an orphaned blob is preferable to a dangling record.
func (uc *ComplaintUseCase) Delete(ctx context.Context, callerID, id string) error {
	complaint, err := uc.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if complaint.UserID != callerID {
		if err := uc.requireAdmin(ctx, callerID); err != nil {
			return errors.Forbidden("You don't have permission to delete this complaint", nil)
		}
	}

	if err := uc.complaintRepo.Delete(ctx, id); err != nil {
		return err
	}

	if complaint.StoragePath != "" && complaint.FileURL != "" {
		if err := uc.uploader.Delete(ctx, complaint.StoragePath); err != nil {
			logger.Warn("Failed to delete media for complaint %s: %v", id, err)
		}
	}

	return nil
}

func (uc *ComplaintUseCase) ListenByUser(ctx context.Context, userID string, fn func([]*entity.Complaint)) (func(), error) {
	return uc.complaintRepo.ListenByUser(ctx, userID, fn)
}

func (uc *ComplaintUseCase) ListenAll(ctx context.Context, callerID string, fn func([]*entity.Complaint)) (func(), error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return uc.complaintRepo.ListenAll(ctx, fn)
}

func (uc *ComplaintUseCase) requireAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}
	caller, err := uc.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return errors.Forbidden("Admin privileges required", nil)
	}
	return nil
}
