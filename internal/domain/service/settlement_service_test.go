package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasahub/internal/domain/entity"
)

func TestBuildSettlementInstruction(t *testing.T) {
	pct := func(v int) *int { return &v }
	now := time.Now()

	t.Run("Partial refund carries the percent", func(t *testing.T) {
		d := newTestDispute(entity.DisputeStatusResolved)
		d.Resolution = entity.ResolutionPartialRefund
		d.RefundPercent = pct(40)
		d.ResolvedAt = &now

		inst, err := BuildSettlementInstruction(d)
		require.NoError(t, err)

		assert.Equal(t, d.ID, inst.DisputeID)
		assert.Equal(t, d.BookingID, inst.BookingID)
		assert.Equal(t, entity.ResolutionPartialRefund, inst.ResolutionType)
		require.NotNil(t, inst.RefundPercent)
		assert.Equal(t, 40, *inst.RefundPercent)
	})

	t.Run("Full refund carries no percent", func(t *testing.T) {
		d := newTestDispute(entity.DisputeStatusResolved)
		d.Resolution = entity.ResolutionFullRefundCustomer
		d.ResolvedAt = &now

		inst, err := BuildSettlementInstruction(d)
		require.NoError(t, err)
		assert.Nil(t, inst.RefundPercent)
	})

	t.Run("Unresolved dispute is rejected", func(t *testing.T) {
		d := newTestDispute(entity.DisputeStatusUnderReview)
		_, err := BuildSettlementInstruction(d)
		assertCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("Inconsistent resolved records are rejected", func(t *testing.T) {
		d := newTestDispute(entity.DisputeStatusResolved)
		d.Resolution = entity.ResolutionPartialRefund
		d.RefundPercent = nil
		_, err := BuildSettlementInstruction(d)
		assertCode(t, err, "VALIDATION_FAILED")

		d.Resolution = entity.ResolutionNoRefund
		d.RefundPercent = pct(10)
		_, err = BuildSettlementInstruction(d)
		assertCode(t, err, "VALIDATION_FAILED")
	})
}

func TestHTTPSettlementService(t *testing.T) {
	t.Run("Posts the instruction with the api key", func(t *testing.T) {
		var gotPath, gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("X-Api-Key")
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		svc := NewHTTPSettlementService(server.URL, "secret")
		err := svc.Submit(context.Background(), &entity.SettlementInstruction{
			DisputeID:      "dispute-1",
			BookingID:      "booking-1",
			ResolutionType: entity.ResolutionNoRefund,
			ComputedAt:     time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, "/v1/settlements", gotPath)
		assert.Equal(t, "secret", gotKey)
	})

	t.Run("Non-2xx response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "queue full", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc := NewHTTPSettlementService(server.URL, "secret")
		err := svc.Submit(context.Background(), &entity.SettlementInstruction{
			DisputeID:      "dispute-1",
			ResolutionType: entity.ResolutionNoRefund,
		})
		assert.Error(t, err)
	})
}
