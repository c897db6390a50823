package handler

import (
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"laporwarga/internal/usecase"
	"laporwarga/pkg/errors"
	"laporwarga/pkg/logger"
	"laporwarga/pkg/response"
	"laporwarga/pkg/utils"
)

type ComplaintHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
	maxFileSize      int64
}

func NewComplaintHandler(complaintUseCase *usecase.ComplaintUseCase, maxFileSize int64) *ComplaintHandler {
	return &ComplaintHandler{
		complaintUseCase: complaintUseCase,
		maxFileSize:      maxFileSize,
	}
}

// Submit accepts the complaint fields as a multipart form with an optional
// media file. The response is sent as soon as the metadata record commits;
// the media attach continues in the background.
func (h *ComplaintHandler) Submit(c echo.Context) error {
	uid := getUserIDFromContext(c)

	input := usecase.SubmitComplaintInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
		Location:    c.FormValue("location"),
		Priority:    c.FormValue("priority"),
	}

	var submitFile *usecase.SubmitFile

	file, err := c.FormFile("file")
	if err == nil && file != nil {
		if file.Size > h.maxFileSize {
			return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
		}

		fileType := file.Header.Get("Content-Type")
		if !isAllowedFileType(fileType) {
			return response.Error(c, errors.BadRequest("File type not supported", nil))
		}

		src, err := file.Open()
		if err != nil {
			return response.Error(c, errors.Internal("Unable to read file", err))
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return response.Error(c, errors.Internal("Unable to read file", err))
		}

		submitFile = &usecase.SubmitFile{
			Content:     content,
			Filename:    file.Filename,
			ContentType: fileType,
		}
		logger.Debug("Received complaint media: %s, %d bytes, %s", file.Filename, file.Size, fileType)
	}

	complaint, err := h.complaintUseCase.Submit(c.Request().Context(), uid, input, submitFile)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, complaint)
}

func (h *ComplaintHandler) ListMine(c echo.Context) error {
	uid := getUserIDFromContext(c)
	params := utils.GetPaginationParams(c)

	complaints, total, err := h.complaintUseCase.ListByUser(c.Request().Context(), uid, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, complaints, total, params.Page, params.PageSize)
}

func (h *ComplaintHandler) GetByID(c echo.Context) error {
	uid := getUserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Complaint ID is required", nil))
	}

	complaint, err := h.complaintUseCase.GetByID(c.Request().Context(), uid, id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, complaint)
}

func (h *ComplaintHandler) Delete(c echo.Context) error {
	uid := getUserIDFromContext(c)
	id := c.Param("id")
	if id == "" {
		return response.Error(c, errors.BadRequest("Complaint ID is required", nil))
	}

	if err := h.complaintUseCase.Delete(c.Request().Context(), uid, id); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Complaint deleted successfully",
	})
}

func isAllowedFileType(fileType string) bool {
	allowedTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"application/pdf",
		"video/mp4",
	}

	for _, allowedType := range allowedTypes {
		if fileType == allowedType {
			return true
		}
	}

	return false
}
