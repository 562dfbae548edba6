package handler

import (
	"github.com/labstack/echo/v4"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/internal/usecase"
	"jasahub/pkg/errors"
	"jasahub/pkg/response"
	"jasahub/pkg/utils"
)

// AdminDisputeHandler is the operator surface: triage, assignment, review,
// resolution, escalation, closing, internal messaging and reporting.
type AdminDisputeHandler struct {
	disputeUseCase *usecase.DisputeUseCase
	messageUseCase *usecase.DisputeMessageUseCase
	statsUseCase   *usecase.DisputeStatsUseCase
}

func NewAdminDisputeHandler(
	disputeUseCase *usecase.DisputeUseCase,
	messageUseCase *usecase.DisputeMessageUseCase,
	statsUseCase *usecase.DisputeStatsUseCase,
) *AdminDisputeHandler {
	return &AdminDisputeHandler{
		disputeUseCase: disputeUseCase,
		messageUseCase: messageUseCase,
		statsUseCase:   statsUseCase,
	}
}

func (h *AdminDisputeHandler) ListDisputes(c echo.Context) error {
	status := entity.DisputeStatus(c.QueryParam("status"))
	pagination := utils.GetPaginationParams(c)

	operatorID := c.Get("uid").(string)

	disputes, total, err := h.disputeUseCase.ListDisputes(
		c.Request().Context(),
		operatorID,
		status,
		pagination.Page,
		pagination.PageSize,
	)

	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, disputes, total, pagination.Page, pagination.PageSize)
}

func (h *AdminDisputeHandler) GetDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	operatorID := c.Get("uid").(string)

	detail, err := h.disputeUseCase.GetDispute(c.Request().Context(), operatorID, disputeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

type assignDisputeRequest struct {
	OperatorID string `json:"operator_id,omitempty"`
}

// AssignDispute claims the dispute for an operator, defaulting to the
// caller. Exactly one of two racing claims wins.
func (h *AdminDisputeHandler) AssignDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	var req assignDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	callerID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.AssignDispute(c.Request().Context(), callerID, disputeID, req.OperatorID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

func (h *AdminDisputeHandler) StartReview(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	operatorID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.StartReview(c.Request().Context(), operatorID, disputeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type resolveDisputeRequest struct {
	Resolution    string `json:"resolution" validate:"required"`
	Notes         string `json:"notes" validate:"required"`
	RefundPercent *int   `json:"refund_percent,omitempty"`
}

func (h *AdminDisputeHandler) ResolveDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	var req resolveDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	operatorID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.ResolveDispute(c.Request().Context(), operatorID, disputeID, usecase.ResolveDisputeInput{
		Resolution:    entity.ResolutionType(req.Resolution),
		Notes:         req.Notes,
		RefundPercent: req.RefundPercent,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type escalateDisputeRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *AdminDisputeHandler) EscalateDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	var req escalateDisputeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	operatorID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.EscalateDispute(c.Request().Context(), operatorID, disputeID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

func (h *AdminDisputeHandler) CloseDispute(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	operatorID := c.Get("uid").(string)

	dispute, err := h.disputeUseCase.CloseDispute(c.Request().Context(), operatorID, disputeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, dispute)
}

type postOperatorMessageRequest struct {
	Content        string   `json:"content" validate:"required"`
	IsInternal     bool     `json:"is_internal"`
	AttachmentURLs []string `json:"attachment_urls,omitempty"`
}

func (h *AdminDisputeHandler) PostMessage(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	var req postOperatorMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	operatorID := c.Get("uid").(string)

	message, err := h.messageUseCase.PostMessage(c.Request().Context(), operatorID, disputeID, usecase.PostMessageInput{
		Content:        req.Content,
		IsInternal:     req.IsInternal,
		AttachmentURLs: req.AttachmentURLs,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *AdminDisputeHandler) GetDisputeLogs(c echo.Context) error {
	disputeID := c.Param("id")
	if disputeID == "" {
		return response.Error(c, errors.BadRequest("Dispute ID is required", nil))
	}

	operatorID := c.Get("uid").(string)

	logs, err := h.disputeUseCase.GetDisputeLogs(c.Request().Context(), operatorID, disputeID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, logs)
}

func (h *AdminDisputeHandler) GetStats(c echo.Context) error {
	status := entity.DisputeStatus(c.QueryParam("status"))

	operatorID := c.Get("uid").(string)

	stats, err := h.statsUseCase.GetStats(c.Request().Context(), operatorID, repository.DisputeFilter{Status: status})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}
