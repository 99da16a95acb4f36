package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
	customError "lendbook/pkg/errors"
	"lendbook/tests/mocks"
)

func testSession() auth.Session {
	return auth.Session{UserID: uuid.New(), Email: "owner@example.com"}
}

func memberRequest() *domain.CreateMemberRequest {
	return &domain.CreateMemberRequest{
		Name:          "Budi",
		Phone:         "08123456789",
		InitialAmount: decimal.NewFromInt(1000),
		InterestRate:  decimal.NewFromInt(10),
		JoinDate:      "2024-01-01",
	}
}

func newLedgerWithStore(store *memoryStore) *LedgerService {
	return NewLedgerService(store, transactionView{store: store}, nil)
}

func TestCreateMember_Success(t *testing.T) {
	mockMemberRepo := &mocks.MockMemberRepository{}
	mockTxRepo := &mocks.MockTransactionRepository{}
	mockNotifier := &mocks.MockNotifier{}
	sess := testSession()

	service := NewLedgerService(mockMemberRepo, mockTxRepo, mockNotifier)

	mockMemberRepo.On("Create", mock.Anything, mock.MatchedBy(func(m *domain.Member) bool {
		return m.UserID == sess.UserID && m.Name == "Budi"
	})).Return(nil)
	mockNotifier.On("Publish", mock.Anything, sess.UserID.String()).Return(nil)

	member, err := service.CreateMember(context.Background(), sess, memberRequest())

	require.NoError(t, err)
	assert.True(t, member.DueAmount.Equal(decimal.NewFromInt(1100)), "due = 1000 * 1.10, got %v", member.DueAmount)
	assert.True(t, member.TotalCollected.IsZero())
	assert.Nil(t, member.LastPayment)
	assert.NotEqual(t, uuid.Nil, member.ID)

	mockMemberRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestCreateMember_Validation(t *testing.T) {
	service := NewLedgerService(&mocks.MockMemberRepository{}, &mocks.MockTransactionRepository{}, nil)
	sess := testSession()

	tests := []struct {
		name   string
		mutate func(*domain.CreateMemberRequest)
	}{
		{"empty name", func(r *domain.CreateMemberRequest) { r.Name = "" }},
		{"empty phone", func(r *domain.CreateMemberRequest) { r.Phone = "" }},
		{"zero amount", func(r *domain.CreateMemberRequest) { r.InitialAmount = decimal.Zero }},
		{"negative amount", func(r *domain.CreateMemberRequest) { r.InitialAmount = decimal.NewFromInt(-5) }},
		{"zero rate", func(r *domain.CreateMemberRequest) { r.InterestRate = decimal.Zero }},
		{"bad join date", func(r *domain.CreateMemberRequest) { r.JoinDate = "01/01/2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := memberRequest()
			tt.mutate(req)

			_, err := service.CreateMember(context.Background(), sess, req)
			assert.ErrorIs(t, err, customError.ErrValidation)
		})
	}
}

func TestLedger_Unauthenticated(t *testing.T) {
	service := NewLedgerService(&mocks.MockMemberRepository{}, &mocks.MockTransactionRepository{}, nil)
	ctx := context.Background()
	none := auth.Session{}

	_, err := service.CreateMember(ctx, none, memberRequest())
	assert.ErrorIs(t, err, customError.ErrUnauthenticated)

	_, err = service.RecordPayment(ctx, none, uuid.New(), &domain.RecordPaymentRequest{
		Amount: decimal.NewFromInt(10), Description: "x", Date: "2024-01-01",
	})
	assert.ErrorIs(t, err, customError.ErrUnauthenticated)

	err = service.DeleteMember(ctx, none, uuid.New())
	assert.ErrorIs(t, err, customError.ErrUnauthenticated)

	_, err = service.ListMembers(ctx, none)
	assert.ErrorIs(t, err, customError.ErrUnauthenticated)

	_, err = service.ListTransactions(ctx, none)
	assert.ErrorIs(t, err, customError.ErrUnauthenticated)
}

// Walks the full repayment scenario: 1000 at 10% -> due 1100; pay 300 ->
// due 800; pay 800 -> due 0; pay 1 -> rejected, nothing changes.
func TestRecordPayment_Scenario(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	store := newMemoryStore()
	service := newLedgerWithStore(store)

	member, err := service.CreateMember(ctx, sess, memberRequest())
	require.NoError(t, err)
	require.True(t, member.DueAmount.Equal(decimal.NewFromInt(1100)))

	pay := func(amount int64) (*domain.RecordPaymentResponse, error) {
		return service.RecordPayment(ctx, sess, member.ID, &domain.RecordPaymentRequest{
			Amount:      decimal.NewFromInt(amount),
			Description: "installment",
			Date:        "2024-02-01",
		})
	}

	resp, err := pay(300)
	require.NoError(t, err)
	assert.True(t, resp.Member.TotalCollected.Equal(decimal.NewFromInt(300)))
	assert.True(t, resp.Member.DueAmount.Equal(decimal.NewFromInt(800)))
	require.NotNil(t, resp.Member.LastPayment)

	resp, err = pay(800)
	require.NoError(t, err)
	assert.True(t, resp.Member.DueAmount.IsZero())
	assert.True(t, resp.Member.TotalCollected.Equal(decimal.NewFromInt(1100)))

	_, err = pay(1)
	assert.ErrorIs(t, err, customError.ErrInsufficientDue)

	// Rejected payment left no trace.
	final, err := service.GetMember(ctx, sess, member.ID)
	require.NoError(t, err)
	assert.True(t, final.TotalCollected.Equal(decimal.NewFromInt(1100)))
	history, err := service.MemberTransactions(ctx, sess, member.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRecordPayment_OverpayByOneCent(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	store := newMemoryStore()
	service := newLedgerWithStore(store)

	member, err := service.CreateMember(ctx, sess, memberRequest())
	require.NoError(t, err)

	_, err = service.RecordPayment(ctx, sess, member.ID, &domain.RecordPaymentRequest{
		Amount:      decimal.NewFromFloat(1100.01),
		Description: "too much",
		Date:        "2024-02-01",
	})
	assert.ErrorIs(t, err, customError.ErrInsufficientDue)

	unchanged, err := service.GetMember(ctx, sess, member.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.TotalCollected.IsZero())
	assert.True(t, unchanged.DueAmount.Equal(decimal.NewFromInt(1100)))
	assert.Nil(t, unchanged.LastPayment)
}

func TestRecordPayment_Validation(t *testing.T) {
	service := NewLedgerService(&mocks.MockMemberRepository{}, &mocks.MockTransactionRepository{}, nil)
	sess := testSession()

	_, err := service.RecordPayment(context.Background(), sess, uuid.New(), &domain.RecordPaymentRequest{
		Amount: decimal.Zero, Description: "x", Date: "2024-01-01",
	})
	assert.ErrorIs(t, err, customError.ErrValidation)

	_, err = service.RecordPayment(context.Background(), sess, uuid.New(), &domain.RecordPaymentRequest{
		Amount: decimal.NewFromInt(10), Description: "", Date: "2024-01-01",
	})
	assert.ErrorIs(t, err, customError.ErrValidation)

	_, err = service.RecordPayment(context.Background(), sess, uuid.New(), &domain.RecordPaymentRequest{
		Amount: decimal.NewFromInt(10), Description: "x", Date: "yesterday",
	})
	assert.ErrorIs(t, err, customError.ErrValidation)
}

func TestRecordPayment_MemberNotFound(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	service := newLedgerWithStore(newMemoryStore())

	_, err := service.RecordPayment(ctx, sess, uuid.New(), &domain.RecordPaymentRequest{
		Amount:      decimal.NewFromInt(10),
		Description: "ghost",
		Date:        "2024-01-01",
	})
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)
}

// Two concurrent payments of 600 against a due of 1100: exactly one must
// apply. A lost update would let both through and over-collect.
func TestRecordPayment_ConcurrentNoLostUpdate(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	store := newMemoryStore()
	service := newLedgerWithStore(store)

	member, err := service.CreateMember(ctx, sess, memberRequest())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = service.RecordPayment(ctx, sess, member.ID, &domain.RecordPaymentRequest{
				Amount:      decimal.NewFromInt(600),
				Description: "concurrent installment",
				Date:        "2024-02-01",
			})
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, customError.ErrInsufficientDue)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two payments must be rejected")

	final, err := service.GetMember(ctx, sess, member.ID)
	require.NoError(t, err)
	assert.True(t, final.TotalCollected.Equal(decimal.NewFromInt(600)))
	assert.True(t, final.DueAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t,
		final.DueAmount.Add(final.TotalCollected).Equal(decimal.NewFromInt(1100)),
		"balance invariant broken")
}

func TestDeleteMember_HasTransactions(t *testing.T) {
	mockMemberRepo := &mocks.MockMemberRepository{}
	mockTxRepo := &mocks.MockTransactionRepository{}
	sess := testSession()
	memberID := uuid.New()

	service := NewLedgerService(mockMemberRepo, mockTxRepo, nil)

	mockTxRepo.On("CountByMember", mock.Anything, sess.UserID, memberID).Return(3, nil)

	err := service.DeleteMember(context.Background(), sess, memberID)
	assert.ErrorIs(t, err, customError.ErrHasTransactions)

	mockMemberRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	mockTxRepo.AssertExpectations(t)
}

func TestDeleteMember_Success(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	store := newMemoryStore()
	service := newLedgerWithStore(store)

	member, err := service.CreateMember(ctx, sess, memberRequest())
	require.NoError(t, err)

	require.NoError(t, service.DeleteMember(ctx, sess, member.ID))

	_, err = service.GetMember(ctx, sess, member.ID)
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)

	list, err := service.ListMembers(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, list.Members)
}

func TestDeleteMember_NotFound(t *testing.T) {
	mockMemberRepo := &mocks.MockMemberRepository{}
	mockTxRepo := &mocks.MockTransactionRepository{}
	sess := testSession()
	memberID := uuid.New()

	service := NewLedgerService(mockMemberRepo, mockTxRepo, nil)

	mockTxRepo.On("CountByMember", mock.Anything, sess.UserID, memberID).Return(0, nil)
	mockMemberRepo.On("Delete", mock.Anything, sess.UserID, memberID).Return(sql.ErrNoRows)

	err := service.DeleteMember(context.Background(), sess, memberID)
	assert.ErrorIs(t, err, customError.ErrMemberNotFound)
}

func TestRecordPayment_PersistenceFailureWrapped(t *testing.T) {
	mockMemberRepo := &mocks.MockMemberRepository{}
	sess := testSession()

	service := NewLedgerService(mockMemberRepo, &mocks.MockTransactionRepository{}, nil)

	mockMemberRepo.On("ApplyPayment", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	_, err := service.RecordPayment(context.Background(), sess, uuid.New(), &domain.RecordPaymentRequest{
		Amount:      decimal.NewFromInt(10),
		Description: "flaky network",
		Date:        "2024-01-01",
	})

	var be *customError.BusinessError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, customError.ErrCodePersistence, be.Code)
}

func TestAuditBalances_RepairsSkew(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	store := newMemoryStore()
	service := newLedgerWithStore(store)

	member, err := service.CreateMember(ctx, sess, memberRequest())
	require.NoError(t, err)

	// Skew the cached due amount behind the service's back.
	store.mu.Lock()
	store.members[member.ID].DueAmount = decimal.NewFromFloat(1099.97)
	store.mu.Unlock()

	repaired, err := service.AuditBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	fixed, err := service.GetMember(ctx, sess, member.ID)
	require.NoError(t, err)
	assert.True(t, fixed.DueAmount.Equal(decimal.NewFromInt(1100)))

	// A second pass finds nothing to do.
	repaired, err = service.AuditBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
}
