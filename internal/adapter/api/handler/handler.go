package handler

import (
	"github.com/labstack/echo/v4"

	"laporwarga/internal/usecase"
)

var (
	authHandler      *AuthHandler
	userHandler      *UserHandler
	complaintHandler *ComplaintHandler
	adminHandler     *AdminHandler
)

func Setup(
	authUseCase *usecase.AuthUseCase,
	userUseCase *usecase.UserUseCase,
	complaintUseCase *usecase.ComplaintUseCase,
	maxUploadSize int64,
) {
	authHandler = NewAuthHandler(authUseCase)
	userHandler = NewUserHandler(userUseCase)
	complaintHandler = NewComplaintHandler(complaintUseCase, maxUploadSize)
	adminHandler = NewAdminHandler(complaintUseCase, userUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetComplaintHandler() *ComplaintHandler {
	return complaintHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func getUserIDFromContext(c echo.Context) string {
	if uid, ok := c.Get("uid").(string); ok {
		return uid
	}
	return ""
}
