package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasahub/internal/domain/entity"
)

// stubIdentity mints deterministic uids; fail makes CreateUser error.
type stubIdentity struct {
	created []string
	fail    bool
}

func (s *stubIdentity) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if s.fail {
		return "", fmt.Errorf("identity provider unavailable")
	}
	s.created = append(s.created, email)
	return fmt.Sprintf("uid-%d", len(s.created)), nil
}

func newOperatorFixture() (*OperatorUseCase, *memUserRepository, *stubIdentity) {
	userRepo := newMemUserRepository(
		&entity.User{ID: "admin-1", Email: "admin@jasahub.id", Role: entity.RoleAdmin},
		&entity.User{ID: "operator-1", Email: "op1@jasahub.id", Role: entity.RoleOperator},
		&entity.User{ID: "customer-1", Email: "c1@jasahub.id", Role: entity.RoleCustomer},
	)
	identity := &stubIdentity{}
	return NewOperatorUseCase(userRepo, identity), userRepo, identity
}

func TestProvisionOperator(t *testing.T) {
	ctx := context.Background()

	input := ProvisionOperatorInput{
		Email:    "op2@jasahub.id",
		Password: "s3cret-enough",
		Username: "operator-two",
	}

	t.Run("Admin provisions a new operator", func(t *testing.T) {
		uc, userRepo, identity := newOperatorFixture()

		user, err := uc.ProvisionOperator(ctx, "admin-1", input)
		require.NoError(t, err)

		assert.Equal(t, entity.RoleOperator, user.Role)
		assert.Equal(t, "op2@jasahub.id", user.Email)
		require.Len(t, identity.created, 1)

		stored, err := userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsOperator())
	})

	t.Run("Operators cannot provision", func(t *testing.T) {
		uc, _, identity := newOperatorFixture()

		_, err := uc.ProvisionOperator(ctx, "operator-1", input)
		assertCode(t, err, "FORBIDDEN")
		assert.Empty(t, identity.created)
	})

	t.Run("Unknown callers are forbidden", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.ProvisionOperator(ctx, "ghost", input)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("Duplicate email is rejected before the identity call", func(t *testing.T) {
		uc, _, identity := newOperatorFixture()

		dup := input
		dup.Email = "op1@jasahub.id"
		_, err := uc.ProvisionOperator(ctx, "admin-1", dup)
		assertCode(t, err, "VALIDATION_FAILED")
		assert.Empty(t, identity.created)
	})

	t.Run("Identity provider failure surfaces as internal", func(t *testing.T) {
		uc, _, identity := newOperatorFixture()
		identity.fail = true

		_, err := uc.ProvisionOperator(ctx, "admin-1", input)
		assertCode(t, err, "INTERNAL_ERROR")
	})

	t.Run("Missing fields are rejected", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.ProvisionOperator(ctx, "admin-1", ProvisionOperatorInput{Email: "x@jasahub.id"})
		assertCode(t, err, "VALIDATION_FAILED")
	})
}

func TestUpdateOperatorRole(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin promotes an operator", func(t *testing.T) {
		uc, userRepo, _ := newOperatorFixture()

		user, err := uc.UpdateOperatorRole(ctx, "admin-1", "operator-1", entity.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, user.Role)

		stored, err := userRepo.GetByID(ctx, "operator-1")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, stored.Role)
	})

	t.Run("Admins cannot change their own role", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.UpdateOperatorRole(ctx, "admin-1", "admin-1", entity.RoleOperator)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("Only staff roles are assignable", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.UpdateOperatorRole(ctx, "admin-1", "operator-1", entity.RoleCustomer)
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("Non-staff accounts cannot be managed here", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.UpdateOperatorRole(ctx, "admin-1", "customer-1", entity.RoleOperator)
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("Operators cannot promote", func(t *testing.T) {
		uc, _, _ := newOperatorFixture()

		_, err := uc.UpdateOperatorRole(ctx, "operator-1", "operator-1", entity.RoleAdmin)
		assertCode(t, err, "FORBIDDEN")
	})
}
