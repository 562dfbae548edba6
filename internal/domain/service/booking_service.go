package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/pkg/errors"
)

// BookingService looks up the originating booking for context display.
// Transition validation never depends on the answer.
type BookingService interface {
	GetBooking(ctx context.Context, bookingID string) (*entity.BookingInfo, error)
}

type HTTPBookingService struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBookingService(baseURL string) *HTTPBookingService {
	return &HTTPBookingService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPBookingService) GetBooking(ctx context.Context, bookingID string) (*entity.BookingInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/bookings/%s", s.baseURL, bookingID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound("Booking", nil)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("booking service returned %d", resp.StatusCode)
	}

	var booking entity.BookingInfo
	if err := json.NewDecoder(resp.Body).Decode(&booking); err != nil {
		return nil, fmt.Errorf("failed to decode booking: %w", err)
	}

	return &booking, nil
}
