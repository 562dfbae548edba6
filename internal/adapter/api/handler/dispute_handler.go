package handler

import (
	"github.com/labstack/echo/v4"

	"jasahub/internal/domain/entity"
	"jasahub/internal/usecase"
	"jasahub/pkg/errors"
	"jasahub/pkg/response"
	"jasahub/pkg/utils"
)

// DisputeHandler is the party-facing surface: customers and providers file
// disputes, follow their progress, and post external messages.
type DisputeHandler struct {
	disputeUseCase *usecase.DisputeUseCase
	messageUseCase *usecase.DisputeMessageUseCase
}

func NewDisputeHandler(disputeUseCase *usecase.DisputeUseCase, messageUseCase *usecase.DisputeMessageUseCase) *DisputeHandler {
	return &DisputeHandler{
		disputeUseCase: disputeUseCase,
		messageUseCase: messageUseCase,
	}
}

type fileDisputeRequest struct {
	BookingID    string   `json:"booking_id" validate:"required"`
	Type         string   `json:"type" validate:"required"`
	Priority     int      `json:"priority" validate:"required,gte=1,lte=5"`
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	FiledAgainst string   `json:"filed_against" validate:"required"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

func (h *DisputeHandler) FileDispute(c echo.Context) error {
	var req fileDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.FileDispute(c.Request().Context(), userID, usecase.FileDisputeInput{
		BookingID:    req.BookingID,
		Type:         entity.DisputeType(req.Type),
		Priority:     req.Priority,
		Title:        req.Title,
		Description:  req.Description,
		FiledAgainst: req.FiledAgainst,
		EvidenceURLs: req.EvidenceURLs,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, dispute)
}

func (h *DisputeHandler) ListMyDisputes(c echo.Context) error {
	status := entity.DisputeStatus(c.QueryParam("status"))
	pagination := utils.GetPaginationParams(c)

	userID := c.Get("uid").(string)

	disputes, total, err := h.disputeUseCase.ListMyDisputes(
		c.Request().Context(),
		userID,
		status,
		pagination.Page,
		pagination.PageSize,
	)

	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, disputes, total, pagination.Page, pagination.PageSize)
}

func (h *DisputeHandler) GetDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	userID := c.Get("uid").(string)

	detail, err := h.disputeUseCase.GetDispute(c.Request().Context(), userID, disputeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

type postMessageRequest struct {
	Content        string   `json:"content" validate:"required"`
	AttachmentURLs []string `json:"attachment_urls,omitempty"`
}

// PostMessage posts an external message on the caller's own dispute.
// Internal messages go through the admin surface.
func (h *DisputeHandler) PostMessage(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messageUseCase.PostMessage(c.Request().Context(), userID, disputeID, usecase.PostMessageInput{
		Content:        req.Content,
		IsInternal:     false,
		AttachmentURLs: req.AttachmentURLs,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}
