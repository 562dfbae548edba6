package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/pkg/logger"
)

// NotificationService dispatches fire-and-forget notifications after state
// changes. A delivery failure must never block or roll back a transition.
type NotificationService interface {
	NotifyDisputeEvent(dispute *entity.Dispute, event string)
}

type HTTPNotificationService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPNotificationService(baseURL string) *HTTPNotificationService {
	return &HTTPNotificationService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type disputeNotification struct {
	Event     string               `json:"event"`
	DisputeID string               `json:"dispute_id"`
	BookingID string               `json:"booking_id"`
	Status    entity.DisputeStatus `json:"status"`
	FiledBy   string               `json:"filed_by"`
	Against   string               `json:"filed_against"`
}

func (s *HTTPNotificationService) NotifyDisputeEvent(dispute *entity.Dispute, event string) {
	// Fire-and-forget: run in the background with a fresh timeout so a slow
	// dispatcher cannot slow the caller down.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload := disputeNotification{
			Event:     event,
			DisputeID: dispute.ID,
			BookingID: dispute.BookingID,
			Status:    dispute.Status,
			FiledBy:   dispute.FiledBy,
			Against:   dispute.FiledAgainst,
		}

		body, err := json.Marshal(payload)
		if err != nil {
			logger.Warn("Notification marshal failed: dispute=%s event=%s error=%v", dispute.ID, event, err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/notifications/dispute", bytes.NewBuffer(body))
		if err != nil {
			logger.Warn("Notification request failed: dispute=%s event=%s error=%v", dispute.ID, event, err)
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			logger.Warn("Notification delivery failed: dispute=%s event=%s error=%v", dispute.ID, event, err)
			return
		}
		resp.Body.Close()

		if resp.StatusCode >= 300 {
			logger.Warn("Notification dispatcher returned %d for dispute=%s event=%s", resp.StatusCode, dispute.ID, event)
		}
	}()
}

// SimplifiedNotificationService - logging-only implementation for development
type SimplifiedNotificationService struct{}

func NewSimplifiedNotificationService() *SimplifiedNotificationService {
	return &SimplifiedNotificationService{}
}

func (s *SimplifiedNotificationService) NotifyDisputeEvent(dispute *entity.Dispute, event string) {
	logger.Info("SIMULATED notification: event=%s dispute=%s status=%s", event, dispute.ID, dispute.Status)
}
