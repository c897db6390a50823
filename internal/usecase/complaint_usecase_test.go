package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laporwarga/internal/domain/entity"
	"laporwarga/internal/domain/repository"
	"laporwarga/internal/domain/service"
	"laporwarga/pkg/errors"
)

type fakeComplaintRepo struct {
	mu          sync.Mutex
	complaints  map[string]*entity.Complaint
	createCalls int
	patchCalls  int
	seq         int
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{complaints: make(map[string]*entity.Complaint)}
}

func (r *fakeComplaintRepo) Create(ctx context.Context, complaint *entity.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	r.seq++
	complaint.ID = fmt.Sprintf("complaint-%d", r.seq)
	stored := *complaint
	r.complaints[complaint.ID] = &stored
	return nil
}

func (r *fakeComplaintRepo) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	complaint, ok := r.complaints[id]
	if !ok {
		return nil, errors.NotFound("Complaint", nil)
	}
	copied := *complaint
	return &copied, nil
}

func (r *fakeComplaintRepo) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patchCalls++
	complaint, ok := r.complaints[id]
	if !ok {
		return errors.NotFound("Complaint", nil)
	}
	if v, ok := fields["fileURL"].(string); ok {
		complaint.FileURL = v
	}
	if v, ok := fields["storagePath"].(string); ok {
		complaint.StoragePath = v
	}
	if v, ok := fields["mediaProvider"].(string); ok {
		complaint.MediaProvider = v
	}
	if v, ok := fields["status"].(string); ok {
		complaint.Status = v
	}
	if v, ok := fields["adminNotes"].(string); ok {
		complaint.AdminNotes = v
	}
	if v, ok := fields["assignedTo"].(string); ok {
		complaint.AssignedTo = v
	}
	complaint.UpdatedAt = time.Now()
	return nil
}

func (r *fakeComplaintRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.complaints, id)
	return nil
}

func (r *fakeComplaintRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Complaint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Complaint
	for _, complaint := range r.complaints {
		if complaint.UserID == userID {
			copied := *complaint
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeComplaintRepo) List(ctx context.Context, filter repository.ComplaintFilter, limit, offset int) ([]*entity.Complaint, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Complaint
	for _, complaint := range r.complaints {
		copied := *complaint
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeComplaintRepo) ListenByUser(ctx context.Context, userID string, fn func([]*entity.Complaint)) (func(), error) {
	return func() {}, nil
}

func (r *fakeComplaintRepo) ListenAll(ctx context.Context, fn func([]*entity.Complaint)) (func(), error) {
	return func() {}, nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id, role string) error {
	user, ok := r.users[id]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	var out []*entity.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

// fakeUploader mimics the object-storage strategy: deterministic planned
// paths, uploads recorded for inspection.
type fakeUploader struct {
	mu            sync.Mutex
	plannedPaths  []string
	uploadedPaths []string
	failWith      error
}

func (u *fakeUploader) PlanObjectPath(userID, filename string) string {
	path := fmt.Sprintf("complaints/%s/planned-%d.jpg", userID, len(u.plannedPaths))
	u.mu.Lock()
	u.plannedPaths = append(u.plannedPaths, path)
	u.mu.Unlock()
	return path
}

func (u *fakeUploader) Upload(ctx context.Context, content io.Reader, contentType, userID, complaintID, plannedPath string) (*service.UploadResult, error) {
	u.mu.Lock()
	u.uploadedPaths = append(u.uploadedPaths, plannedPath)
	u.mu.Unlock()
	if u.failWith != nil {
		return nil, u.failWith
	}
	return &service.UploadResult{
		URL:       "https://storage.googleapis.com/test-bucket/" + plannedPath,
		Reference: plannedPath,
		Provider:  "gcs",
	}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, reference string) error { return nil }
func (u *fakeUploader) Provider() string                                   { return "gcs" }
func (u *fakeUploader) Close() error                                       { return nil }

func validInput() SubmitComplaintInput {
	return SubmitComplaintInput{
		Title:       "Pothole",
		Description: "Large pothole on Main St",
		Category:    "roads",
		Location:    "Main St & 5th",
	}
}

func newTestUseCase(t *testing.T) (*ComplaintUseCase, *fakeComplaintRepo, *fakeUserRepo, *fakeUploader) {
	t.Helper()
	complaintRepo := newFakeComplaintRepo()
	userRepo := newFakeUserRepo()
	uploader := &fakeUploader{}
	uc := NewComplaintUseCase(complaintRepo, userRepo, uploader, nil)
	return uc, complaintRepo, userRepo, uploader
}

func TestSubmitWithoutFile(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, entity.StatusPending, complaint.Status)
	assert.Equal(t, entity.PriorityMedium, complaint.Priority)
	assert.Empty(t, complaint.FileURL)
	assert.Empty(t, complaint.StoragePath)

	// Record is queryable immediately after return
	stored, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pothole", stored.Title)
	assert.Empty(t, stored.FileURL)
}

func TestSubmitMissingFieldsFailBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitComplaintInput)
	}{
		{"title", func(in *SubmitComplaintInput) { in.Title = "" }},
		{"description", func(in *SubmitComplaintInput) { in.Description = "" }},
		{"category", func(in *SubmitComplaintInput) { in.Category = "" }},
		{"location", func(in *SubmitComplaintInput) { in.Location = "  " }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, repo, _, _ := newTestUseCase(t)

			input := validInput()
			tc.mutate(&input)

			_, err := uc.Submit(context.Background(), "user-1", input, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
			assert.Equal(t, 0, repo.createCalls)
		})
	}
}

func TestSubmitUnauthenticated(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)

	_, err := uc.Submit(context.Background(), "", validInput(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
	assert.Contains(t, err.Error(), "must be logged in")
	assert.Equal(t, 0, repo.createCalls)
}

func TestSubmitInvalidPriority(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)

	input := validInput()
	input.Priority = "urgent"

	_, err := uc.Submit(context.Background(), "user-1", input, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Equal(t, 0, repo.createCalls)
}

func TestSubmitWithFileAttachesMediaInBackground(t *testing.T) {
	uc, repo, _, uploader := newTestUseCase(t)

	done := make(chan error, 1)
	uc.SetAttachHook(func(complaintID string, err error) {
		done <- err
	})

	file := &SubmitFile{
		Content:     []byte("jpeg bytes"),
		Filename:    "pothole.jpg",
		ContentType: "image/jpeg",
	}

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), file)
	require.NoError(t, err)
	assert.NotEmpty(t, complaint.ID)

	// Media fields are not yet linked at the commit point
	assert.Empty(t, complaint.FileURL)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("attach task did not complete")
	}

	stored, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.FileURL)
	assert.Equal(t, "gcs", stored.MediaProvider)

	// The path used at write time and at upload time must be byte-identical
	require.Len(t, uploader.plannedPaths, 1)
	require.Len(t, uploader.uploadedPaths, 1)
	assert.Equal(t, uploader.plannedPaths[0], uploader.uploadedPaths[0])
	assert.Equal(t, uploader.plannedPaths[0], stored.StoragePath)
}

func TestSubmitSurvivesUploadFailure(t *testing.T) {
	uc, repo, _, uploader := newTestUseCase(t)
	uploader.failWith = &service.UploadError{StatusCode: 401, Body: "unauthorized"}

	done := make(chan error, 1)
	uc.SetAttachHook(func(complaintID string, err error) {
		done <- err
	})

	file := &SubmitFile{
		Content:     []byte("jpeg bytes"),
		Filename:    "pothole.jpg",
		ContentType: "image/jpeg",
	}

	// Submit succeeds regardless of the upload's fate
	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), file)
	require.NoError(t, err)

	select {
	case err := <-done:
		require.Error(t, err)
		var uploadErr *service.UploadError
		require.ErrorAs(t, err, &uploadErr)
		assert.Equal(t, 401, uploadErr.StatusCode)
	case <-time.After(5 * time.Second):
		t.Fatal("attach task did not complete")
	}

	// The record remains valid with null media fields
	stored, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.FileURL)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestSubmitGeneratesPreviewForImages(t *testing.T) {
	complaintRepo := newFakeComplaintRepo()
	userRepo := newFakeUserRepo()
	uploader := &fakeUploader{}

	previewFn := func(data []byte) (string, error) {
		return "data:image/jpeg;base64,preview", nil
	}
	uc := NewComplaintUseCase(complaintRepo, userRepo, uploader, previewFn)

	done := make(chan error, 1)
	uc.SetAttachHook(func(string, error) { done <- nil })

	file := &SubmitFile{Content: []byte("img"), Filename: "a.jpg", ContentType: "image/jpeg"}
	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), file)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,preview", complaint.Preview)
	<-done
}

func TestSubmitPreviewFailureIsNonFatal(t *testing.T) {
	complaintRepo := newFakeComplaintRepo()
	userRepo := newFakeUserRepo()
	uploader := &fakeUploader{}

	previewFn := func(data []byte) (string, error) {
		return "", fmt.Errorf("corrupt image")
	}
	uc := NewComplaintUseCase(complaintRepo, userRepo, uploader, previewFn)

	done := make(chan error, 1)
	uc.SetAttachHook(func(string, error) { done <- nil })

	file := &SubmitFile{Content: []byte("img"), Filename: "a.jpg", ContentType: "image/jpeg"}
	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), file)
	require.NoError(t, err)
	assert.Empty(t, complaint.Preview)
	<-done
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	uc, repo, userRepo, _ := newTestUseCase(t)

	userRepo.Create(context.Background(), &entity.User{ID: "user-1", Role: entity.RoleUser})

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	_, err = uc.UpdateStatus(context.Background(), "user-1", complaint.ID, UpdateStatusInput{Status: entity.StatusResolved})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// Record unchanged
	stored, err := repo.GetByID(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
}

func TestUpdateStatusAsAdmin(t *testing.T) {
	uc, _, userRepo, _ := newTestUseCase(t)

	userRepo.Create(context.Background(), &entity.User{ID: "user-1", Role: entity.RoleUser})
	userRepo.Create(context.Background(), &entity.User{ID: "admin-1", Role: entity.RoleAdmin})

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	updated, err := uc.UpdateStatus(context.Background(), "admin-1", complaint.ID, UpdateStatusInput{
		Status:     entity.StatusInProgress,
		AdminNotes: "Crew dispatched",
		AssignedTo: "road-crew-3",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, updated.Status)
	assert.Equal(t, "Crew dispatched", updated.AdminNotes)
	assert.Equal(t, "road-crew-3", updated.AssignedTo)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	uc, _, userRepo, _ := newTestUseCase(t)

	userRepo.Create(context.Background(), &entity.User{ID: "admin-1", Role: entity.RoleAdmin})

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	_, err = uc.UpdateStatus(context.Background(), "admin-1", complaint.ID, UpdateStatusInput{Status: "escalated"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestGetByIDOwnershipChecks(t *testing.T) {
	uc, _, userRepo, _ := newTestUseCase(t)

	userRepo.Create(context.Background(), &entity.User{ID: "user-2", Role: entity.RoleUser})
	userRepo.Create(context.Background(), &entity.User{ID: "admin-1", Role: entity.RoleAdmin})

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	// Owner can read
	_, err = uc.GetByID(context.Background(), "user-1", complaint.ID)
	assert.NoError(t, err)

	// Another user cannot
	_, err = uc.GetByID(context.Background(), "user-2", complaint.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	// Admin can
	_, err = uc.GetByID(context.Background(), "admin-1", complaint.ID)
	assert.NoError(t, err)
}

func TestDeleteOwnershipChecks(t *testing.T) {
	uc, repo, userRepo, _ := newTestUseCase(t)

	userRepo.Create(context.Background(), &entity.User{ID: "user-2", Role: entity.RoleUser})

	complaint, err := uc.Submit(context.Background(), "user-1", validInput(), nil)
	require.NoError(t, err)

	err = uc.Delete(context.Background(), "user-2", complaint.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	err = uc.Delete(context.Background(), "user-1", complaint.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), complaint.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}
