package router

import (
	"laporwarga/internal/adapter/api/handler"
	"laporwarga/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/complaints", adminHandler.ListComplaints)
	admin.PATCH("/complaints/:id/status", adminHandler.UpdateComplaintStatus)

	admin.GET("/users", adminHandler.ListUsers)
	admin.PATCH("/users/:id/role", adminHandler.SetUserRole)
}
