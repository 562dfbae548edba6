package handler

import (
	"github.com/labstack/echo/v4"

	"jasahub/internal/usecase"
	"jasahub/pkg/errors"
	"jasahub/pkg/response"
)

// OperatorHandler manages the staff accounts behind the admin surface.
type OperatorHandler struct {
	operatorUseCase *usecase.OperatorUseCase
}

func NewOperatorHandler(operatorUseCase *usecase.OperatorUseCase) *OperatorHandler {
	return &OperatorHandler{
		operatorUseCase: operatorUseCase,
	}
}

type provisionOperatorRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required"`
}

func (h *OperatorHandler) ProvisionOperator(c echo.Context) error {
	var req provisionOperatorRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	callerID := c.Get("uid").(string)

	user, err := h.operatorUseCase.ProvisionOperator(c.Request().Context(), callerID, usecase.ProvisionOperatorInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

type updateOperatorRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=operator admin"`
}

func (h *OperatorHandler) UpdateOperatorRole(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	var req updateOperatorRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	callerID := c.Get("uid").(string)

	user, err := h.operatorUseCase.UpdateOperatorRole(c.Request().Context(), callerID, userID, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
