package usecase

import (
	"context"

	"laporwarga/internal/domain/entity"
	"laporwarga/internal/domain/repository"
	"laporwarga/pkg/errors"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

type UpdateProfileInput struct {
	DisplayName string
	PhotoURL    string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != "" {
		user.DisplayName = input.DisplayName
	}
	if input.PhotoURL != "" {
		user.PhotoURL = input.PhotoURL
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return uc.userRepo.GetByID(ctx, uid)
}

func (uc *UserUseCase) UpdatePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return err
	}

	if _, _, err := uc.firebaseAuth.SignInWithEmailPassword(user.Email, currentPassword); err != nil {
		return errors.Unauthorized("Current password is incorrect", err)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, uid, newPassword); err != nil {
		return errors.Internal("Failed to update password", err)
	}

	return nil
}

// SetRole promotes or demotes a user. Only an existing admin may call it;
// an admin cannot demote themselves, so the system always keeps one.
func (uc *UserUseCase) SetRole(ctx context.Context, callerID, targetID, role string) (*entity.User, error) {
	caller, err := uc.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, errors.Forbidden("Admin privileges required", nil)
	}

	if !entity.ValidRole(role) {
		return nil, errors.BadRequest("role must be one of: user, admin", nil)
	}

	if callerID == targetID && role != entity.RoleAdmin {
		return nil, errors.BadRequest("You cannot remove your own admin role", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	if err := uc.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}

	return uc.userRepo.GetByID(ctx, targetID)
}

func (uc *UserUseCase) ListUsers(ctx context.Context, callerID string, limit, offset int) ([]*entity.User, int64, error) {
	caller, err := uc.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	if !caller.IsAdmin() {
		return nil, 0, errors.Forbidden("Admin privileges required", nil)
	}

	return uc.userRepo.List(ctx, limit, offset)
}
