package router

import (
	"laporwarga/internal/adapter/api/handler"
	"laporwarga/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupComplaintRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	complaintHandler := handler.GetComplaintHandler()
	userHandler := handler.GetUserHandler()

	complaints := e.Group("/v1/complaints")
	complaints.Use(authMiddleware.Authenticate)

	complaints.POST("", complaintHandler.Submit)
	complaints.GET("", complaintHandler.ListMine)
	complaints.GET("/:id", complaintHandler.GetByID)
	complaints.DELETE("/:id", complaintHandler.Delete)

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.PUT("/me/password", userHandler.UpdatePassword)
}
