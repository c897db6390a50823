package handler

import (
	"github.com/labstack/echo/v4"

	"laporwarga/internal/domain/repository"
	"laporwarga/internal/usecase"
	"laporwarga/pkg/errors"
	"laporwarga/pkg/response"
	"laporwarga/pkg/utils"
)

type AdminHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
	userUseCase      *usecase.UserUseCase
}

func NewAdminHandler(complaintUseCase *usecase.ComplaintUseCase, userUseCase *usecase.UserUseCase) *AdminHandler {
	return &AdminHandler{
		complaintUseCase: complaintUseCase,
		userUseCase:      userUseCase,
	}
}

func (h *AdminHandler) ListComplaints(c echo.Context) error {
	uid := getUserIDFromContext(c)
	params := utils.GetPaginationParams(c)

	filter := repository.ComplaintFilter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		UserID:   c.QueryParam("user_id"),
	}

	complaints, total, err := h.complaintUseCase.ListAll(c.Request().Context(), uid, filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, complaints, total, params.Page, params.PageSize)
}

type updateStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=pending in_progress resolved rejected"`
	AdminNotes string `json:"admin_notes"`
	AssignedTo string `json:"assigned_to"`
}

func (h *AdminHandler) UpdateComplaintStatus(c echo.Context) error {
	uid := getUserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Complaint ID is required", nil))
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.UpdateStatus(c.Request().Context(), uid, id, usecase.UpdateStatusInput{
		Status:     req.Status,
		AdminNotes: req.AdminNotes,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, complaint)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	uid := getUserIDFromContext(c)
	params := utils.GetPaginationParams(c)

	users, total, err := h.userUseCase.ListUsers(c.Request().Context(), uid, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, params.Page, params.PageSize)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (h *AdminHandler) SetUserRole(c echo.Context) error {
	uid := getUserIDFromContext(c)
	targetID := c.Param("id")
	if targetID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	var req setRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetRole(c.Request().Context(), uid, targetID, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
