package usecase

import (
	"context"
	"time"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/pkg/errors"
	"jasahub/pkg/logger"
)

// IdentityClient mints accounts with the external identity provider.
type IdentityClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
}

// OperatorUseCase provisions and manages the staff accounts that handle
// disputes. Only admins may grow or change the operator pool.
type OperatorUseCase struct {
	userRepo repository.UserRepository
	identity IdentityClient
}

func NewOperatorUseCase(userRepo repository.UserRepository, identity IdentityClient) *OperatorUseCase {
	return &OperatorUseCase{
		userRepo: userRepo,
		identity: identity,
	}
}

type ProvisionOperatorInput struct {
	Email    string
	Password string
	Username string
}

// ProvisionOperator creates an identity-provider account and the matching
// operator record. The identity account is the source of truth for login;
// the local record only carries the role the dispute surface checks.
func (uc *OperatorUseCase) ProvisionOperator(ctx context.Context, callerID string, input ProvisionOperatorInput) (*entity.User, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		return nil, errors.ValidationFailed("email, password and username are required", nil)
	}

	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.ValidationFailed("a user with this email already exists", nil)
	} else if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	uid, err := uc.identity.CreateUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		return nil, errors.Internal("Failed to create identity account", err)
	}

	user := &entity.User{
		ID:       uid,
		Email:    input.Email,
		Username: input.Username,
		Role:     entity.RoleOperator,
		Status:   "active",
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		// The identity account now exists without a local record; surface
		// the failure and leave reconciliation to a retried provision.
		logger.Error("Operator record creation failed for uid %s: %v", uid, err)
		return nil, err
	}

	logger.Info("Operator provisioned: uid=%s email=%s by=%s", uid, input.Email, callerID)
	return user, nil
}

// UpdateOperatorRole promotes an operator to admin or demotes an admin back
// to operator. Admins cannot change their own role.
func (uc *OperatorUseCase) UpdateOperatorRole(ctx context.Context, callerID, userID, role string) (*entity.User, error) {
	if err := uc.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	if role != entity.RoleOperator && role != entity.RoleAdmin {
		return nil, errors.ValidationFailed("role must be operator or admin", nil)
	}
	if callerID == userID {
		return nil, errors.Forbidden("You cannot change your own role", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsOperator() {
		return nil, errors.ValidationFailed("user is not a staff account", nil)
	}

	user.Role = role
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *OperatorUseCase) requireAdmin(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			return errors.Forbidden("Admin privileges required", nil)
		}
		return err
	}
	if user.Role != entity.RoleAdmin {
		return errors.Forbidden("Admin privileges required", nil)
	}
	return nil
}
