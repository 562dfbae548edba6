package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/pkg/errors"
	"jasahub/pkg/logger"
)

// BuildSettlementInstruction derives the settlement instruction from a
// resolved dispute. It only guarantees internal consistency; execution,
// idempotency and retry belong to the payment collaborator.
func BuildSettlementInstruction(dispute *entity.Dispute) (*entity.SettlementInstruction, error) {
	if dispute.Status != entity.DisputeStatusResolved {
		return nil, errors.InvalidTransition("settlement requires a resolved dispute")
	}
	if !dispute.Resolution.Valid() {
		return nil, errors.ValidationFailed(fmt.Sprintf("unknown resolution %q", dispute.Resolution), nil)
	}
	if dispute.Resolution == entity.ResolutionPartialRefund {
		if dispute.RefundPercent == nil {
			return nil, errors.ValidationFailed("partial refund without refund percent", nil)
		}
	} else if dispute.RefundPercent != nil {
		return nil, errors.ValidationFailed("refund percent present for non-partial resolution", nil)
	}

	return &entity.SettlementInstruction{
		DisputeID:      dispute.ID,
		BookingID:      dispute.BookingID,
		ResolutionType: dispute.Resolution,
		RefundPercent:  dispute.RefundPercent,
		ComputedAt:     time.Now(),
	}, nil
}

// SettlementService delivers settlement instructions to the payment/escrow
// collaborator. Delivery failures are retried downstream, never by this core;
// a resolved dispute whose refund has not executed yet is a valid state.
type SettlementService interface {
	Submit(ctx context.Context, instruction *entity.SettlementInstruction) error
}

// HTTPSettlementService posts instructions to the payment service API.
type HTTPSettlementService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSettlementService(baseURL, apiKey string) *HTTPSettlementService {
	return &HTTPSettlementService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSettlementService) Submit(ctx context.Context, instruction *entity.SettlementInstruction) error {
	body, err := json.Marshal(instruction)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement instruction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/settlements", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver settlement instruction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("settlement service returned %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Info("Settlement instruction delivered: dispute=%s resolution=%s", instruction.DisputeID, instruction.ResolutionType)
	return nil
}

// SimplifiedSettlementService - logging-only implementation for development
type SimplifiedSettlementService struct{}

func NewSimplifiedSettlementService() *SimplifiedSettlementService {
	return &SimplifiedSettlementService{}
}

func (s *SimplifiedSettlementService) Submit(ctx context.Context, instruction *entity.SettlementInstruction) error {
	if instruction.RefundPercent != nil {
		logger.Info("SIMULATED settlement: dispute=%s resolution=%s refund=%d%%",
			instruction.DisputeID, instruction.ResolutionType, *instruction.RefundPercent)
	} else {
		logger.Info("SIMULATED settlement: dispute=%s resolution=%s",
			instruction.DisputeID, instruction.ResolutionType)
	}
	return nil
}
