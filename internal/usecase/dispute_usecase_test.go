package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/internal/domain/service"
	"jasahub/pkg/errors"
)

// memDisputeRepository is an in-memory DisputeRepository with the same
// compare-and-set semantics as the Firestore adapter. A single mutex per
// store stands in for Firestore transactions.
type memDisputeRepository struct {
	mu       sync.Mutex
	disputes map[string]*entity.Dispute
	messages []*entity.DisputeMessage
	logs     []*entity.DisputeLog
}

func newMemDisputeRepository() *memDisputeRepository {
	return &memDisputeRepository{disputes: make(map[string]*entity.Dispute)}
}

func (r *memDisputeRepository) Create(ctx context.Context, dispute *entity.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if dispute.ID == "" {
		dispute.ID = uuid.New().String()
	}
	if _, exists := r.disputes[dispute.ID]; exists {
		return errors.Internal("dispute already exists", nil)
	}
	dispute.Version = 1
	copied := *dispute
	r.disputes[dispute.ID] = &copied
	return nil
}

func (r *memDisputeRepository) GetByID(ctx context.Context, id string) (*entity.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.disputes[id]
	if !ok {
		return nil, errors.NotFound("Dispute", nil)
	}
	copied := *stored
	return &copied, nil
}

func (r *memDisputeRepository) UpdateWithVersion(ctx context.Context, dispute *entity.Dispute, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.disputes[dispute.ID]
	if !ok {
		return errors.NotFound("Dispute", nil)
	}
	if stored.Version != expectedVersion {
		return errors.ConcurrentModification("Dispute")
	}
	dispute.Version = expectedVersion + 1
	copied := *dispute
	r.disputes[dispute.ID] = &copied
	return nil
}

func (r *memDisputeRepository) List(ctx context.Context, filter repository.DisputeFilter, limit, offset int) ([]*entity.Dispute, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Dispute
	for _, d := range r.disputes {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Party != "" && !d.IsParty(filter.Party) {
			continue
		}
		copied := *d
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if limit <= 0 {
		return matched, total, nil
	}
	if offset >= len(matched) {
		return []*entity.Dispute{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memDisputeRepository) CreateMessage(ctx context.Context, message *entity.DisputeMessage, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.disputes[message.DisputeID]
	if !ok {
		return errors.NotFound("Dispute", nil)
	}
	if stored.Version != expectedVersion {
		return errors.ConcurrentModification("Dispute")
	}
	stored.Version++
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memDisputeRepository) ListMessagesByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.DisputeMessage
	for _, m := range r.messages {
		if m.DisputeID == disputeID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memDisputeRepository) CreateLog(ctx context.Context, log *entity.DisputeLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	copied := *log
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *memDisputeRepository) ListLogsByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.DisputeLog
	for _, l := range r.logs {
		if l.DisputeID == disputeID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memUserRepository struct {
	users map[string]*entity.User
}

func newMemUserRepository(users ...*entity.User) *memUserRepository {
	r := &memUserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *memUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memUserRepository) Update(ctx context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

// recordingSettlement captures submitted instructions; fail makes Submit error.
type recordingSettlement struct {
	mu        sync.Mutex
	submitted []*entity.SettlementInstruction
	fail      bool
}

func (s *recordingSettlement) Submit(ctx context.Context, instruction *entity.SettlementInstruction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("settlement service unavailable")
	}
	s.submitted = append(s.submitted, instruction)
	return nil
}

type stubBooking struct {
	booking *entity.BookingInfo
	err     error
}

func (s *stubBooking) GetBooking(ctx context.Context, bookingID string) (*entity.BookingInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

type noopNotification struct{}

func (noopNotification) NotifyDisputeEvent(dispute *entity.Dispute, event string) {}

type disputeFixture struct {
	repo       *memDisputeRepository
	settlement *recordingSettlement
	uc         *DisputeUseCase
	messages   *DisputeMessageUseCase
	stats      *DisputeStatsUseCase
}

func newDisputeFixture(t *testing.T) *disputeFixture {
	t.Helper()

	disputeRepo := newMemDisputeRepository()
	userRepo := newMemUserRepository(
		&entity.User{ID: "customer-1", Role: entity.RoleCustomer},
		&entity.User{ID: "provider-1", Role: entity.RoleProvider},
		&entity.User{ID: "outsider-1", Role: entity.RoleCustomer},
		&entity.User{ID: "operator-1", Role: entity.RoleOperator},
		&entity.User{ID: "operator-2", Role: entity.RoleOperator},
		&entity.User{ID: "admin-1", Role: entity.RoleAdmin},
	)
	settlement := &recordingSettlement{}
	booking := &stubBooking{booking: &entity.BookingInfo{
		ID:         "booking-1",
		Status:     "completed",
		Amount:     250000,
		CustomerID: "customer-1",
		ProviderID: "provider-1",
	}}
	workflow := service.NewDisputeWorkflow()

	return &disputeFixture{
		repo:       disputeRepo,
		settlement: settlement,
		uc:         NewDisputeUseCase(disputeRepo, userRepo, workflow, settlement, booking, noopNotification{}),
		messages:   NewDisputeMessageUseCase(disputeRepo, userRepo, workflow),
		stats:      NewDisputeStatsUseCase(disputeRepo, userRepo),
	}
}

func (f *disputeFixture) file(t *testing.T) *entity.Dispute {
	t.Helper()
	d, err := f.uc.FileDispute(context.Background(), "customer-1", FileDisputeInput{
		BookingID:    "booking-1",
		Type:         entity.DisputeTypePoorQuality,
		Priority:     3,
		Title:        "Job left unfinished",
		Description:  "Only half the agreed work was done",
		FiledAgainst: "provider-1",
	})
	require.NoError(t, err)
	return d
}

func TestFileDispute(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()

	d := f.file(t)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, entity.DisputeStatusOpen, d.Status)
	assert.Equal(t, int64(1), d.Version)

	logs, err := f.uc.GetDisputeLogs(ctx, "operator-1", d.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.DisputeStatusOpen, logs[0].ToStatus)
	assert.Equal(t, "customer-1", logs[0].Actor)
}

// Full happy path: file, assign, review, message, resolve, close. The audit
// trail must record every transition and settlement must fire exactly once.
func TestDisputeLifecycle(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()
	d := f.file(t)

	_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
	require.NoError(t, err)

	_, err = f.uc.StartReview(ctx, "operator-1", d.ID)
	require.NoError(t, err)

	_, err = f.messages.PostMessage(ctx, "customer-1", d.ID, PostMessageInput{Content: "Here are photos of the unfinished work"})
	require.NoError(t, err)
	_, err = f.messages.PostMessage(ctx, "operator-1", d.ID, PostMessageInput{Content: "Provider history looks spotty", IsInternal: true})
	require.NoError(t, err)

	pct := 50
	resolved, err := f.uc.ResolveDispute(ctx, "operator-1", d.ID, ResolveDisputeInput{
		Resolution:    entity.ResolutionPartialRefund,
		Notes:         "Work was half completed, refunding half",
		RefundPercent: &pct,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	require.Len(t, f.settlement.submitted, 1)
	inst := f.settlement.submitted[0]
	assert.Equal(t, d.ID, inst.DisputeID)
	assert.Equal(t, entity.ResolutionPartialRefund, inst.ResolutionType)
	require.NotNil(t, inst.RefundPercent)
	assert.Equal(t, 50, *inst.RefundPercent)

	closed, err := f.uc.CloseDispute(ctx, "operator-1", d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusClosed, closed.Status)

	logs, err := f.uc.GetDisputeLogs(ctx, "operator-1", d.ID)
	require.NoError(t, err)
	require.Len(t, logs, 5)

	// Log from/to chain mirrors the lifecycle
	var transitions []string
	for _, l := range logs {
		transitions = append(transitions, string(l.FromStatus)+">"+string(l.ToStatus))
	}
	assert.Contains(t, transitions, ">open")
	assert.Contains(t, transitions, "open>assigned")
	assert.Contains(t, transitions, "assigned>under_review")
	assert.Contains(t, transitions, "under_review>resolved")
	assert.Contains(t, transitions, "resolved>closed")
}

func TestAssignDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults to the caller", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		assigned, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "operator-1", assigned.AssignedTo)
		assert.Equal(t, int64(2), assigned.Version)
	})

	t.Run("Assigning a non-operator target is rejected", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "customer-1")
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("Parties cannot assign", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.AssignDispute(ctx, "customer-1", d.ID, "")
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("Racing claims produce one winner", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i, op := range []string{"operator-1", "operator-2"} {
			wg.Add(1)
			go func(i int, op string) {
				defer wg.Done()
				_, results[i] = f.uc.AssignDispute(ctx, op, d.ID, "")
			}(i, op)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, "CONCURRENT_MODIFICATION") || errors.Is(err, "INVALID_TRANSITION"):
				// Loser either lost the version race or reloaded an
				// already-assigned dispute; both are the same outcome.
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 1, conflicts)

		final, err := f.repo.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.DisputeStatusAssigned, final.Status)
		assert.NotEmpty(t, final.AssignedTo)
	})

	t.Run("Stale version write is rejected", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		stale, err := f.repo.GetByID(ctx, d.ID)
		require.NoError(t, err)

		_, err = f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
		require.NoError(t, err)

		err = f.repo.UpdateWithVersion(ctx, stale, stale.Version)
		assertCode(t, err, "CONCURRENT_MODIFICATION")
	})
}

func TestStartReviewRequiresAssignee(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()
	d := f.file(t)

	_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
	require.NoError(t, err)

	_, err = f.uc.StartReview(ctx, "operator-2", d.ID)
	assertCode(t, err, "FORBIDDEN")

	_, err = f.uc.StartReview(ctx, "operator-1", d.ID)
	require.NoError(t, err)
}

func TestResolveDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("Settlement failure does not roll back the resolution", func(t *testing.T) {
		f := newDisputeFixture(t)
		f.settlement.fail = true
		d := f.file(t)

		_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
		require.NoError(t, err)

		resolved, err := f.uc.ResolveDispute(ctx, "operator-1", d.ID, ResolveDisputeInput{
			Resolution: entity.ResolutionFullRefundCustomer,
			Notes:      "Provider no-show confirmed",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.DisputeStatusResolved, resolved.Status)

		stored, err := f.repo.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.DisputeStatusResolved, stored.Status)
	})

	t.Run("Resolving an open dispute is an invalid transition", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.ResolveDispute(ctx, "operator-1", d.ID, ResolveDisputeInput{
			Resolution: entity.ResolutionNoRefund,
			Notes:      "n/a",
		})
		assertCode(t, err, "INVALID_TRANSITION")
		assert.Empty(t, f.settlement.submitted)
	})
}

func TestEscalateAndReassign(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()
	d := f.file(t)

	_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
	require.NoError(t, err)
	_, err = f.uc.StartReview(ctx, "operator-1", d.ID)
	require.NoError(t, err)

	escalated, err := f.uc.EscalateDispute(ctx, "operator-1", d.ID, "Suspected organized fraud")
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusEscalated, escalated.Status)
	assert.Equal(t, "Suspected organized fraud", escalated.EscalationReason)
	require.NotNil(t, escalated.EscalatedAt)

	// A senior operator picks it back up
	reassigned, err := f.uc.AssignDispute(ctx, "admin-1", d.ID, "operator-2")
	require.NoError(t, err)
	assert.Equal(t, entity.DisputeStatusAssigned, reassigned.Status)
	assert.Equal(t, "operator-2", reassigned.AssignedTo)
}

func TestCloseDispute(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()
	d := f.file(t)

	_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
	require.NoError(t, err)
	_, err = f.uc.ResolveDispute(ctx, "operator-1", d.ID, ResolveDisputeInput{
		Resolution: entity.ResolutionNoRefund,
		Notes:      "Complaint unsubstantiated",
	})
	require.NoError(t, err)

	_, err = f.uc.CloseDispute(ctx, "operator-1", d.ID)
	require.NoError(t, err)

	// Closed is terminal
	_, err = f.uc.CloseDispute(ctx, "operator-1", d.ID)
	assertCode(t, err, "INVALID_TRANSITION")
	_, err = f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
	assertCode(t, err, "INVALID_TRANSITION")
	_, err = f.messages.PostMessage(ctx, "customer-1", d.ID, PostMessageInput{Content: "One more thing"})
	assertCode(t, err, "INVALID_TRANSITION")
}

func TestGetDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("Parties see their dispute without internal messages", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
		require.NoError(t, err)
		_, err = f.messages.PostMessage(ctx, "operator-1", d.ID, PostMessageInput{Content: "Checking provider history", IsInternal: true})
		require.NoError(t, err)
		_, err = f.messages.PostMessage(ctx, "provider-1", d.ID, PostMessageInput{Content: "The customer changed the scope on site"})
		require.NoError(t, err)

		detail, err := f.uc.GetDispute(ctx, "customer-1", d.ID)
		require.NoError(t, err)
		require.Len(t, detail.Messages, 1)
		assert.False(t, detail.Messages[0].IsInternal)
		assert.Nil(t, detail.Booking)
	})

	t.Run("Operators see everything plus booking context", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.AssignDispute(ctx, "operator-1", d.ID, "")
		require.NoError(t, err)
		_, err = f.messages.PostMessage(ctx, "operator-1", d.ID, PostMessageInput{Content: "note", IsInternal: true})
		require.NoError(t, err)

		detail, err := f.uc.GetDispute(ctx, "operator-1", d.ID)
		require.NoError(t, err)
		require.Len(t, detail.Messages, 1)
		require.NotNil(t, detail.Booking)
		assert.Equal(t, "booking-1", detail.Booking.ID)
	})

	t.Run("Booking lookup failure does not fail the read", func(t *testing.T) {
		f := newDisputeFixture(t)
		f.uc.booking = &stubBooking{err: fmt.Errorf("booking service down")}
		d := f.file(t)

		detail, err := f.uc.GetDispute(ctx, "operator-1", d.ID)
		require.NoError(t, err)
		assert.Nil(t, detail.Booking)
	})

	t.Run("Outsiders are rejected", func(t *testing.T) {
		f := newDisputeFixture(t)
		d := f.file(t)

		_, err := f.uc.GetDispute(ctx, "outsider-1", d.ID)
		assertCode(t, err, "FORBIDDEN")
	})
}

func TestListDisputes(t *testing.T) {
	f := newDisputeFixture(t)
	ctx := context.Background()

	d1 := f.file(t)
	f.file(t)
	_, err := f.uc.AssignDispute(ctx, "operator-1", d1.ID, "")
	require.NoError(t, err)

	t.Run("Operator listing filters by status", func(t *testing.T) {
		disputes, total, err := f.uc.ListDisputes(ctx, "operator-1", entity.DisputeStatusOpen, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, disputes, 1)
		assert.Equal(t, entity.DisputeStatusOpen, disputes[0].Status)
	})

	t.Run("Parties cannot use the operator listing", func(t *testing.T) {
		_, _, err := f.uc.ListDisputes(ctx, "customer-1", "", 1, 20)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("Party listing covers both sides", func(t *testing.T) {
		mine, total, err := f.uc.ListMyDisputes(ctx, "provider-1", "", 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, mine, 2)

		none, total, err := f.uc.ListMyDisputes(ctx, "outsider-1", "", 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, none)
	})

	t.Run("Unknown status filter is rejected", func(t *testing.T) {
		_, _, err := f.uc.ListDisputes(ctx, "operator-1", "limbo", 1, 20)
		assertCode(t, err, "VALIDATION_FAILED")
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, code), "expected %s, got %v", code, err)
}
