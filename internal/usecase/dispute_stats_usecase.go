package usecase

import (
	"context"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/pkg/errors"
)

// DisputeStatsUseCase derives aggregate reporting from the store. It is
// read-only and recomputed on demand.
type DisputeStatsUseCase struct {
	disputeRepo repository.DisputeRepository
	userRepo    repository.UserRepository
}

func NewDisputeStatsUseCase(disputeRepo repository.DisputeRepository, userRepo repository.UserRepository) *DisputeStatsUseCase {
	return &DisputeStatsUseCase{
		disputeRepo: disputeRepo,
		userRepo:    userRepo,
	}
}

type DisputeStats struct {
	Total                  int64                          `json:"total"`
	ByStatus               map[entity.DisputeStatus]int64 `json:"byStatus"`
	AvgResolutionTimeHours float64                        `json:"avgResolutionTimeHours"`
}

// GetStats computes total count, count per status, and the mean of
// (resolvedAt - createdAt) over disputes that carry a resolution timestamp.
// Every status key is present in the result, zero-filled, so the by-status
// counts always sum to the total.
func (uc *DisputeStatsUseCase) GetStats(ctx context.Context, operatorID string, filter repository.DisputeFilter) (*DisputeStats, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errors.ValidationFailed("unknown status filter", nil)
	}

	disputes, total, err := uc.disputeRepo.List(ctx, filter, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &DisputeStats{
		Total:    total,
		ByStatus: make(map[entity.DisputeStatus]int64, len(entity.AllDisputeStatuses)),
	}
	for _, status := range entity.AllDisputeStatuses {
		stats.ByStatus[status] = 0
	}

	var resolvedCount int64
	var totalHours float64
	for _, d := range disputes {
		stats.ByStatus[d.Status]++
		if d.ResolvedAt != nil {
			resolvedCount++
			totalHours += d.ResolvedAt.Sub(d.CreatedAt).Hours()
		}
	}

	if resolvedCount > 0 {
		stats.AvgResolutionTimeHours = totalHours / float64(resolvedCount)
	}

	return stats, nil
}

// Unknown callers are non-operators, same as the dispute surfaces.
func (uc *DisputeStatsUseCase) requireOperator(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return errors.Forbidden("Operator privileges required", nil)
		}
		return err
	}
	if !user.IsOperator() {
		return errors.Forbidden("Operator privileges required", nil)
	}
	return nil
}
