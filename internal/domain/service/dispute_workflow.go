package service

import (
	"fmt"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/pkg/errors"
)

// DisputeWorkflow is the pure lifecycle engine. It validates and applies
// transitions on a loaded dispute and never touches the store itself; the
// use case layer commits the mutated dispute with a compare-and-set write.
//
// State legality is always checked before field-level validation, so a
// caller in an illegal state sees INVALID_TRANSITION even when its payload
// is also malformed.
type DisputeWorkflow struct{}

func NewDisputeWorkflow() *DisputeWorkflow {
	return &DisputeWorkflow{}
}

type disputeCommand string

const (
	commandAssign      disputeCommand = "assign"
	commandStartReview disputeCommand = "start_review"
	commandResolve     disputeCommand = "resolve"
	commandEscalate    disputeCommand = "escalate"
	commandClose       disputeCommand = "close"
)

// disputeTransitions is the single source of truth for lifecycle legality.
// open is the only initial state, closed the only terminal one. Escalated
// disputes may be re-assigned for continued handling.
var disputeTransitions = map[entity.DisputeStatus]map[disputeCommand]entity.DisputeStatus{
	entity.DisputeStatusOpen: {
		commandAssign: entity.DisputeStatusAssigned,
	},
	entity.DisputeStatusAssigned: {
		commandStartReview: entity.DisputeStatusUnderReview,
		commandResolve:     entity.DisputeStatusResolved,
		commandEscalate:    entity.DisputeStatusEscalated,
	},
	entity.DisputeStatusUnderReview: {
		commandResolve:  entity.DisputeStatusResolved,
		commandEscalate: entity.DisputeStatusEscalated,
	},
	entity.DisputeStatusResolved: {
		commandClose: entity.DisputeStatusClosed,
	},
	entity.DisputeStatusEscalated: {
		commandAssign: entity.DisputeStatusAssigned,
	},
}

func (w *DisputeWorkflow) next(current entity.DisputeStatus, cmd disputeCommand) (entity.DisputeStatus, error) {
	if legal, ok := disputeTransitions[current]; ok {
		if to, ok := legal[cmd]; ok {
			return to, nil
		}
	}
	return "", errors.InvalidTransition(
		fmt.Sprintf("cannot %s a dispute in status %s", cmd, current))
}

// NewDispute validates filing input and produces an open dispute. Evidence
// URLs and priority are immutable after this point.
func (w *DisputeWorkflow) NewDispute(bookingID string, disputeType entity.DisputeType, priority int, title, description string, filedBy, filedAgainst string, evidenceURLs []string) (*entity.Dispute, error) {
	if !disputeType.Valid() {
		return nil, errors.ValidationFailed(fmt.Sprintf("unknown dispute type %q", disputeType), nil)
	}
	if priority < 1 || priority > 5 {
		return nil, errors.ValidationFailed("priority must be between 1 and 5", nil)
	}
	if title == "" || description == "" {
		return nil, errors.ValidationFailed("title and description are required", nil)
	}
	if filedBy == "" || filedAgainst == "" {
		return nil, errors.ValidationFailed("both parties are required", nil)
	}
	if filedBy == filedAgainst {
		return nil, errors.ValidationFailed("a dispute cannot be filed against yourself", nil)
	}

	now := time.Now()
	return &entity.Dispute{
		BookingID:    bookingID,
		Type:         disputeType,
		Priority:     priority,
		Title:        title,
		Description:  description,
		EvidenceURLs: evidenceURLs,
		FiledBy:      filedBy,
		FiledAgainst: filedAgainst,
		Status:       entity.DisputeStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Assign binds the dispute to exactly one handling operator. From open the
// dispute must still be unclaimed; escalated disputes keep their previous
// assignee on record until re-assigned here.
func (w *DisputeWorkflow) Assign(dispute *entity.Dispute, operatorID string) error {
	to, err := w.next(dispute.Status, commandAssign)
	if err != nil {
		return err
	}

	if dispute.Status == entity.DisputeStatusOpen && dispute.AssignedTo != "" {
		return errors.InvalidTransition("dispute is already assigned")
	}
	if operatorID == "" {
		return errors.ValidationFailed("operator id is required", nil)
	}

	now := time.Now()
	if dispute.AssignedTo == "" {
		dispute.AssignedAt = &now
	}
	dispute.AssignedTo = operatorID
	dispute.Status = to
	dispute.UpdatedAt = now
	return nil
}

// StartReview moves an assigned dispute into active investigation. Only the
// current assignee may start it.
func (w *DisputeWorkflow) StartReview(dispute *entity.Dispute, operatorID string) error {
	to, err := w.next(dispute.Status, commandStartReview)
	if err != nil {
		return err
	}

	if dispute.AssignedTo != operatorID {
		return errors.Forbidden("only the assigned operator can start the review", nil)
	}

	dispute.Status = to
	dispute.UpdatedAt = time.Now()
	return nil
}

// Resolve records the terminal financial decision. refundPercent must be
// present iff the resolution is a partial refund, and then within [0,100].
func (w *DisputeWorkflow) Resolve(dispute *entity.Dispute, resolution entity.ResolutionType, notes string, refundPercent *int) error {
	to, err := w.next(dispute.Status, commandResolve)
	if err != nil {
		return err
	}

	if !resolution.Valid() {
		return errors.ValidationFailed(fmt.Sprintf("unknown resolution %q", resolution), nil)
	}
	if notes == "" {
		return errors.ValidationFailed("resolution notes are required", nil)
	}
	if resolution == entity.ResolutionPartialRefund {
		if refundPercent == nil {
			return errors.ValidationFailed("refund percent is required for a partial refund", nil)
		}
		if *refundPercent < 0 || *refundPercent > 100 {
			return errors.ValidationFailed("refund percent must be between 0 and 100", nil)
		}
	} else if refundPercent != nil {
		return errors.ValidationFailed("refund percent is only valid for a partial refund", nil)
	}

	now := time.Now()
	dispute.Resolution = resolution
	dispute.ResolutionNotes = notes
	dispute.RefundPercent = refundPercent
	dispute.ResolvedAt = &now
	dispute.Status = to
	dispute.UpdatedAt = now
	return nil
}

// Escalate routes the dispute to the higher-authority review path.
func (w *DisputeWorkflow) Escalate(dispute *entity.Dispute, reason string) error {
	to, err := w.next(dispute.Status, commandEscalate)
	if err != nil {
		return err
	}

	if reason == "" {
		return errors.ValidationFailed("escalation reason is required", nil)
	}

	now := time.Now()
	dispute.EscalationReason = reason
	dispute.EscalatedAt = &now
	dispute.Status = to
	dispute.UpdatedAt = now
	return nil
}

// Close finalizes a resolved dispute. Closed disputes accept no further
// commands; a repeated close fails with INVALID_TRANSITION rather than
// silently succeeding.
func (w *DisputeWorkflow) Close(dispute *entity.Dispute) error {
	to, err := w.next(dispute.Status, commandClose)
	if err != nil {
		return err
	}

	dispute.Status = to
	dispute.UpdatedAt = time.Now()
	return nil
}

// CanPostMessage reports whether the thread is still writable. Parties and
// operators may keep discussing after resolution, up until closing.
func (w *DisputeWorkflow) CanPostMessage(status entity.DisputeStatus) bool {
	return status != entity.DisputeStatusClosed
}
