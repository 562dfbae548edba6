package usecase

import (
	"context"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/internal/domain/service"
	"jasahub/pkg/errors"
	"jasahub/pkg/logger"
)

type DisputeUseCase struct {
	disputeRepo  repository.DisputeRepository
	userRepo     repository.UserRepository
	workflow     *service.DisputeWorkflow
	settlement   service.SettlementService
	booking      service.BookingService
	notification service.NotificationService
}

func NewDisputeUseCase(
	disputeRepo repository.DisputeRepository,
	userRepo repository.UserRepository,
	workflow *service.DisputeWorkflow,
	settlement service.SettlementService,
	booking service.BookingService,
	notification service.NotificationService,
) *DisputeUseCase {
	return &DisputeUseCase{
		disputeRepo:  disputeRepo,
		userRepo:     userRepo,
		workflow:     workflow,
		settlement:   settlement,
		booking:      booking,
		notification: notification,
	}
}

type FileDisputeInput struct {
	BookingID    string
	Type         entity.DisputeType
	Priority     int
	Title        string
	Description  string
	FiledAgainst string
	EvidenceURLs []string
}

// DisputeDetail is the read projection of a dispute: the record, its message
// thread (internal messages already filtered for parties), and booking
// context when available.
type DisputeDetail struct {
	Dispute  *entity.Dispute          `json:"dispute"`
	Messages []*entity.DisputeMessage `json:"messages"`
	Booking  *entity.BookingInfo      `json:"booking,omitempty"`
}

// FileDispute opens a new dispute on behalf of a customer or provider.
func (uc *DisputeUseCase) FileDispute(ctx context.Context, userID string, input FileDisputeInput) (*entity.Dispute, error) {
	dispute, err := uc.workflow.NewDispute(
		input.BookingID,
		input.Type,
		input.Priority,
		input.Title,
		input.Description,
		userID,
		input.FiledAgainst,
		input.EvidenceURLs,
	)
	if err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.Create(ctx, dispute); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, dispute, userID, "", entity.DisputeStatusOpen, "Dispute filed")
	uc.notification.NotifyDisputeEvent(dispute, "dispute_filed")

	return dispute, nil
}

// GetDispute returns the dispute with its message thread. Parties only see
// their own disputes and never internal messages; operators see everything
// plus the booking context.
func (uc *DisputeUseCase) GetDispute(ctx context.Context, userID, disputeID string) (*DisputeDetail, error) {
	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	isOperator, err := uc.isOperator(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isOperator && !dispute.IsParty(userID) {
		return nil, errors.Forbidden("You are not a party to this dispute", nil)
	}

	messages, err := uc.disputeRepo.ListMessagesByDisputeID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if !isOperator {
		messages = filterInternalMessages(messages)
	}

	detail := &DisputeDetail{
		Dispute:  dispute,
		Messages: messages,
	}

	// Booking context is display-only; a lookup failure never fails the read
	if isOperator && dispute.BookingID != "" {
		booking, err := uc.booking.GetBooking(ctx, dispute.BookingID)
		if err != nil {
			logger.Warn("Booking lookup failed for dispute %s: %v", disputeID, err)
		} else {
			detail.Booking = booking
		}
	}

	return detail, nil
}

// ListDisputes is the operator listing over all disputes.
func (uc *DisputeUseCase) ListDisputes(ctx context.Context, operatorID string, status entity.DisputeStatus, page, limit int) ([]*entity.Dispute, int64, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, 0, err
	}

	if status != "" && !status.Valid() {
		return nil, 0, errors.ValidationFailed("unknown status filter", nil)
	}

	offset := (page - 1) * limit
	return uc.disputeRepo.List(ctx, repository.DisputeFilter{Status: status}, limit, offset)
}

// ListMyDisputes lists disputes the caller filed or is accused in.
func (uc *DisputeUseCase) ListMyDisputes(ctx context.Context, userID string, status entity.DisputeStatus, page, limit int) ([]*entity.Dispute, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, errors.ValidationFailed("unknown status filter", nil)
	}

	offset := (page - 1) * limit
	return uc.disputeRepo.List(ctx, repository.DisputeFilter{Status: status, Party: userID}, limit, offset)
}

// AssignDispute claims an open (or escalated) dispute for an operator. Two
// racing claims produce exactly one winner; the loser gets a
// CONCURRENT_MODIFICATION error and must reload.
func (uc *DisputeUseCase) AssignDispute(ctx context.Context, callerID, disputeID, operatorID string) (*entity.Dispute, error) {
	if err := uc.requireOperator(ctx, callerID); err != nil {
		return nil, err
	}
	if operatorID == "" {
		operatorID = callerID
	}
	if operatorID != callerID {
		// Assigning someone else still requires the target to be staff
		if err := uc.requireOperator(ctx, operatorID); err != nil {
			return nil, err
		}
	}

	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	loadedVersion := dispute.Version
	fromStatus := dispute.Status

	if err := uc.workflow.Assign(dispute, operatorID); err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.UpdateWithVersion(ctx, dispute, loadedVersion); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, dispute, callerID, fromStatus, dispute.Status, "Assigned to "+operatorID)
	uc.notification.NotifyDisputeEvent(dispute, "dispute_assigned")

	return dispute, nil
}

// StartReview moves the dispute into active investigation. Only the current
// assignee may do this.
func (uc *DisputeUseCase) StartReview(ctx context.Context, operatorID, disputeID string) (*entity.Dispute, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	loadedVersion := dispute.Version
	fromStatus := dispute.Status

	if err := uc.workflow.StartReview(dispute, operatorID); err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.UpdateWithVersion(ctx, dispute, loadedVersion); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, dispute, operatorID, fromStatus, dispute.Status, "Review started")

	return dispute, nil
}

type ResolveDisputeInput struct {
	Resolution    entity.ResolutionType
	Notes         string
	RefundPercent *int
}

// ResolveDispute records the terminal decision and emits a settlement
// instruction to the payment collaborator. Settlement delivery failures are
// logged and retried downstream, never rolled back here: a resolved dispute
// whose refund has not executed yet is a valid, visible state.
func (uc *DisputeUseCase) ResolveDispute(ctx context.Context, operatorID, disputeID string, input ResolveDisputeInput) (*entity.Dispute, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	loadedVersion := dispute.Version
	fromStatus := dispute.Status

	if err := uc.workflow.Resolve(dispute, input.Resolution, input.Notes, input.RefundPercent); err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.UpdateWithVersion(ctx, dispute, loadedVersion); err != nil {
		return nil, err
	}

	instruction, err := service.BuildSettlementInstruction(dispute)
	if err != nil {
		// The workflow already validated the payload, so this indicates a bug
		logger.Error("Settlement instruction build failed for dispute %s: %v", disputeID, err)
	} else if err := uc.settlement.Submit(ctx, instruction); err != nil {
		logger.Warn("Settlement delivery failed for dispute %s, collaborator will retry: %v", disputeID, err)
	}

	uc.appendLog(ctx, dispute, operatorID, fromStatus, dispute.Status, "Resolved: "+string(input.Resolution))
	uc.notification.NotifyDisputeEvent(dispute, "dispute_resolved")

	return dispute, nil
}

// EscalateDispute routes the dispute to the higher-authority review path.
func (uc *DisputeUseCase) EscalateDispute(ctx context.Context, operatorID, disputeID, reason string) (*entity.Dispute, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	loadedVersion := dispute.Version
	fromStatus := dispute.Status

	if err := uc.workflow.Escalate(dispute, reason); err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.UpdateWithVersion(ctx, dispute, loadedVersion); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, dispute, operatorID, fromStatus, dispute.Status, "Escalated: "+reason)
	uc.notification.NotifyDisputeEvent(dispute, "dispute_escalated")

	return dispute, nil
}

// CloseDispute finalizes a resolved dispute. A second close fails with
// INVALID_TRANSITION, it is not a silent no-op.
func (uc *DisputeUseCase) CloseDispute(ctx context.Context, operatorID, disputeID string) (*entity.Dispute, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	loadedVersion := dispute.Version
	fromStatus := dispute.Status

	if err := uc.workflow.Close(dispute); err != nil {
		return nil, err
	}

	if err := uc.disputeRepo.UpdateWithVersion(ctx, dispute, loadedVersion); err != nil {
		return nil, err
	}

	uc.appendLog(ctx, dispute, operatorID, fromStatus, dispute.Status, "Dispute closed")
	uc.notification.NotifyDisputeEvent(dispute, "dispute_closed")

	return dispute, nil
}

// GetDisputeLogs returns the audit trail, operators only.
func (uc *DisputeUseCase) GetDisputeLogs(ctx context.Context, operatorID, disputeID string) ([]*entity.DisputeLog, error) {
	if err := uc.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	if _, err := uc.disputeRepo.GetByID(ctx, disputeID); err != nil {
		return nil, err
	}

	return uc.disputeRepo.ListLogsByDisputeID(ctx, disputeID)
}

func (uc *DisputeUseCase) isOperator(ctx context.Context, userID string) (bool, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return false, nil
		}
		return false, err
	}
	return user.IsOperator(), nil
}

func (uc *DisputeUseCase) requireOperator(ctx context.Context, userID string) error {
	isOperator, err := uc.isOperator(ctx, userID)
	if err != nil {
		return err
	}
	if !isOperator {
		return errors.Forbidden("Operator privileges required", nil)
	}
	return nil
}

// Audit log failures are logged and swallowed: the transition has already
// committed and must not be reported as failed.
func (uc *DisputeUseCase) appendLog(ctx context.Context, dispute *entity.Dispute, actor string, from, to entity.DisputeStatus, notes string) {
	log := &entity.DisputeLog{
		DisputeID:  dispute.ID,
		Actor:      actor,
		FromStatus: from,
		ToStatus:   to,
		Notes:      notes,
		CreatedAt:  time.Now(),
	}
	if err := uc.disputeRepo.CreateLog(ctx, log); err != nil {
		logger.LogDisputeError(dispute.ID, string(to), err)
	}
}

func filterInternalMessages(messages []*entity.DisputeMessage) []*entity.DisputeMessage {
	filtered := make([]*entity.DisputeMessage, 0, len(messages))
	for _, m := range messages {
		if !m.IsInternal {
			filtered = append(filtered, m)
		}
	}
	return filtered
}
