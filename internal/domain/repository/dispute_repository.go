package repository

import (
	"context"

	"jasahub/internal/domain/entity"
)

// DisputeFilter narrows dispute listings. Zero values mean "no filter".
type DisputeFilter struct {
	Status entity.DisputeStatus
	Party  string // matches either filedBy or filedAgainst
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *entity.Dispute) error
	GetByID(ctx context.Context, id string) (*entity.Dispute, error)

	// UpdateWithVersion writes the dispute only if the stored version still
	// equals expectedVersion, incrementing it on success. A mismatch returns
	// a CONCURRENT_MODIFICATION error.
	UpdateWithVersion(ctx context.Context, dispute *entity.Dispute, expectedVersion int64) error

	// List returns disputes matching filter ordered by creation time,
	// newest first. limit <= 0 disables pagination.
	List(ctx context.Context, filter DisputeFilter, limit, offset int) ([]*entity.Dispute, int64, error)

	// Message methods. CreateMessage bumps the parent dispute's version in
	// the same atomic write so an append cannot interleave with a close.
	CreateMessage(ctx context.Context, message *entity.DisputeMessage, expectedVersion int64) error
	ListMessagesByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeMessage, error)

	// Audit trail
	CreateLog(ctx context.Context, log *entity.DisputeLog) error
	ListLogsByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeLog, error)
}
