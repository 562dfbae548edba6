package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"jasahub/internal/domain/service"
	"jasahub/pkg/errors"
	"jasahub/pkg/logger"
	"jasahub/pkg/response"
)

const maxEvidenceSize = 10 * 1024 * 1024 // 10MB

// EvidenceHandler accepts evidence uploads before a dispute is filed and
// returns the URL the filing request should carry.
type EvidenceHandler struct {
	storage service.EvidenceStorage
}

func NewEvidenceHandler(storage service.EvidenceStorage) *EvidenceHandler {
	return &EvidenceHandler{
		storage: storage,
	}
}

func (h *EvidenceHandler) UploadEvidence(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid file", err))
	}

	if file.Size > maxEvidenceSize {
		return response.Error(c, errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", maxEvidenceSize/(1024*1024)), nil))
	}

	contentType := file.Header.Get("Content-Type")
	if !isAllowedEvidenceType(contentType) {
		return response.Error(c, errors.BadRequest("File type not supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	url, err := h.storage.UploadEvidence(c.Request().Context(), src, contentType)
	if err != nil {
		logger.Error("Evidence upload failed: %v", err)
		return response.Error(c, errors.Internal("Failed to upload evidence", err))
	}

	return response.Created(c, map[string]string{"url": url})
}

func isAllowedEvidenceType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "application/pdf", "video/mp4":
		return true
	}
	return false
}
