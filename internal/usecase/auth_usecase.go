package usecase

import (
	"context"
	"time"

	"laporwarga/internal/domain/entity"
	"laporwarga/internal/domain/repository"
	"laporwarga/pkg/errors"
	"laporwarga/pkg/logger"
)

type AuthUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type AuthResult struct {
	User         *entity.User
	Token        string
	RefreshToken string
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existingUser, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil && existingUser != nil {
		return nil, errors.BadRequest("Email already in use", nil)
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, errors.Internal("Failed to create user in authentication provider", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:          uid,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		Provider:    "password",
		Role:        entity.RoleUser,
		CreatedAt:   now,
		LastLoginAt: now,
		UpdatedAt:   now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, refreshToken, err := uc.firebaseAuth.SignInWithEmailPassword(input.Email, input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	token, refreshToken, err := uc.firebaseAuth.SignInWithEmailPassword(email, password)
	if err != nil {
		logger.Warn("Login failed for %s: %v", email, err)
		return nil, errors.Unauthorized("Invalid credentials", err)
	}

	uid, err := uc.firebaseAuth.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Internal("Failed to verify token", err)
	}

	user, err := uc.SyncSignIn(ctx, uid)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:         user,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

// SyncSignIn applies the sign-in lifecycle to the user record: created on
// the first successful sign-in, profile fields and lastLoginAt refreshed on
// every one after that.
func (uc *AuthUseCase) SyncSignIn(ctx context.Context, uid string) (*entity.User, error) {
	email, displayName, photoURL, provider, err := uc.firebaseAuth.GetUserInfo(ctx, uid)
	if err != nil {
		return nil, errors.Internal("Failed to load identity", err)
	}

	now := time.Now()

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		user = &entity.User{
			ID:          uid,
			Email:       email,
			DisplayName: displayName,
			PhotoURL:    photoURL,
			Provider:    provider,
			Role:        entity.RoleUser,
			CreatedAt:   now,
			LastLoginAt: now,
			UpdatedAt:   now,
		}
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.DisplayName = displayName
	user.PhotoURL = photoURL
	user.Provider = provider
	user.LastLoginAt = now
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *AuthUseCase) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	token, newRefreshToken, err := uc.firebaseAuth.RefreshIdToken(refreshToken)
	if err != nil {
		return "", "", errors.Unauthorized("Invalid refresh token", err)
	}
	return token, newRefreshToken, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
