package usecase

import (
	"context"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/internal/domain/service"
	"jasahub/pkg/errors"
)

// DisputeMessageUseCase owns the append-only message thread. Messages are
// never edited or retracted; corrections are new messages.
type DisputeMessageUseCase struct {
	disputeRepo repository.DisputeRepository
	userRepo    repository.UserRepository
	workflow    *service.DisputeWorkflow
}

func NewDisputeMessageUseCase(
	disputeRepo repository.DisputeRepository,
	userRepo repository.UserRepository,
	workflow *service.DisputeWorkflow,
) *DisputeMessageUseCase {
	return &DisputeMessageUseCase{
		disputeRepo: disputeRepo,
		userRepo:    userRepo,
		workflow:    workflow,
	}
}

type PostMessageInput struct {
	Content        string
	IsInternal     bool
	AttachmentURLs []string
}

// PostMessage appends to the thread. Legal in every non-closed status.
// Parties may only post external messages on their own disputes; internal
// messages are operator-only. The append shares the parent dispute's
// optimistic-concurrency check, so it cannot interleave with a simultaneous
// close.
func (uc *DisputeMessageUseCase) PostMessage(ctx context.Context, authorID, disputeID string, input PostMessageInput) (*entity.DisputeMessage, error) {
	dispute, err := uc.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if !uc.workflow.CanPostMessage(dispute.Status) {
		return nil, errors.InvalidTransition("cannot post messages on a closed dispute")
	}

	isOperator, err := uc.isOperator(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if !isOperator {
		if !dispute.IsParty(authorID) {
			return nil, errors.Forbidden("You are not a party to this dispute", nil)
		}
		if input.IsInternal {
			return nil, errors.Forbidden("Internal messages are operator-only", nil)
		}
	}

	if input.Content == "" {
		return nil, errors.ValidationFailed("message content is required", nil)
	}

	message := &entity.DisputeMessage{
		DisputeID:      disputeID,
		Author:         authorID,
		Content:        input.Content,
		IsInternal:     input.IsInternal,
		AttachmentURLs: input.AttachmentURLs,
		CreatedAt:      time.Now(),
	}

	if err := uc.disputeRepo.CreateMessage(ctx, message, dispute.Version); err != nil {
		return nil, err
	}

	return message, nil
}

// ListMessages returns the thread in creation order. Internal messages are
// filtered out of party-scoped views at this read boundary; there is no
// separate storage partition.
func (uc *DisputeMessageUseCase) ListMessages(ctx context.Context, userID, disputeID string) ([]*entity.DisputeMessage, error) {
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

	return messages, nil
}

func (uc *DisputeMessageUseCase) isOperator(ctx context.Context, userID string) (bool, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return false, nil
		}
		return false, err
	}
	return user.IsOperator(), nil
}
