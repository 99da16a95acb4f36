package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
	"lendbook/internal/ledger"
	"lendbook/internal/metrics"
	"lendbook/internal/repository"
	"lendbook/internal/watch"
	customError "lendbook/pkg/errors"
	"lendbook/pkg/utils"
)

// LedgerService owns every mutation of member balances. Each operation is
// scoped to the session passed in and either fully applies or fully fails.
type LedgerService struct {
	memberRepo repository.MemberRepository
	txRepo     repository.TransactionRepository
	notifier   watch.Notifier
}

func NewLedgerService(
	memberRepo repository.MemberRepository,
	txRepo repository.TransactionRepository,
	notifier watch.Notifier,
) *LedgerService {
	return &LedgerService{
		memberRepo: memberRepo,
		txRepo:     txRepo,
		notifier:   notifier,
	}
}

// CreateMember registers a new member with an interest-bearing balance.
func (s *LedgerService) CreateMember(ctx context.Context, sess auth.Session, request *domain.CreateMemberRequest) (*domain.Member, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	if request.Name == "" || request.Phone == "" {
		return nil, customError.WrapValidation("name and phone are required")
	}
	if !request.InitialAmount.IsPositive() {
		return nil, customError.WrapValidation("initial amount must be greater than zero")
	}
	if !request.InterestRate.IsPositive() {
		return nil, customError.WrapValidation("interest rate must be greater than zero")
	}

	joinDate, err := time.Parse(time.DateOnly, request.JoinDate)
	if err != nil {
		return nil, customError.WrapValidation("join date must be formatted as YYYY-MM-DD")
	}

	now := time.Now().UTC()
	principal := request.InitialAmount.Round(2)
	member := &domain.Member{
		ID:             uuid.New(),
		UserID:         sess.UserID,
		Name:           request.Name,
		Phone:          request.Phone,
		JoinDate:       joinDate,
		InitialAmount:  principal,
		InterestRate:   request.InterestRate,
		TotalCollected: decimal.Zero,
		DueAmount:      utils.TotalWithInterest(principal, request.InterestRate),
		LastPayment:    nil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, customError.WrapPersistence(err)
	}

	metrics.MembersCreated.Inc()
	s.publish(ctx, sess)

	return member, nil
}

// RecordPayment applies a payment against a member's due amount. The
// validate-and-apply runs as one database transaction under a row lock, so
// two concurrent payments for the same member cannot lose an update or
// collect past zero.
func (s *LedgerService) RecordPayment(ctx context.Context, sess auth.Session, memberID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	if !request.Amount.IsPositive() {
		return nil, customError.WrapValidation("payment amount must be greater than zero")
	}
	if request.Description == "" {
		return nil, customError.WrapValidation("description is required")
	}

	date, err := time.Parse(time.DateOnly, request.Date)
	if err != nil {
		return nil, customError.WrapValidation("date must be formatted as YYYY-MM-DD")
	}

	// Payments are income unless the caller tagged them otherwise.
	txType := request.Type
	if txType == nil {
		income := domain.TransactionTypeIncome
		txType = &income
	}

	payment := &domain.Transaction{
		ID:          uuid.New(),
		MemberID:    memberID,
		UserID:      sess.UserID,
		Amount:      request.Amount.Round(2),
		Description: request.Description,
		Date:        date,
		Type:        txType,
		Category:    request.Category,
		CreatedAt:   time.Now().UTC(),
	}

	member, err := s.memberRepo.ApplyPayment(ctx, payment)
	if err != nil {
		wrapped := wrapRepoError(err)
		metrics.PaymentsRejected.WithLabelValues(customError.CodeOf(wrapped)).Inc()
		return nil, wrapped
	}

	metrics.PaymentsRecorded.Inc()
	s.publish(ctx, sess)

	return &domain.RecordPaymentResponse{
		Transaction: payment,
		Member:      member,
	}, nil
}

// DeleteMember removes a member. Members with recorded transactions cannot
// be deleted; there is no transaction-deletion path.
func (s *LedgerService) DeleteMember(ctx context.Context, sess auth.Session, memberID uuid.UUID) error {
	if !sess.Valid() {
		return customError.WrapUnauthenticated()
	}

	count, err := s.txRepo.CountByMember(ctx, sess.UserID, memberID)
	if err != nil {
		return customError.WrapPersistence(err)
	}
	if count > 0 {
		return customError.WrapHasTransactions(memberID.String(), count)
	}

	if err := s.memberRepo.Delete(ctx, sess.UserID, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapMemberNotFound(memberID.String())
		}
		return customError.WrapPersistence(err)
	}

	metrics.MembersDeleted.Inc()
	s.publish(ctx, sess)

	return nil
}

// GetMember returns one of the session owner's members.
func (s *LedgerService) GetMember(ctx context.Context, sess auth.Session, memberID uuid.UUID) (*domain.Member, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	member, err := s.memberRepo.GetByID(ctx, sess.UserID, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(memberID.String())
		}
		return nil, customError.WrapPersistence(err)
	}

	return member, nil
}

// ListMembers returns all of the session owner's members with headline totals.
func (s *LedgerService) ListMembers(ctx context.Context, sess auth.Session) (*domain.MemberListResponse, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	members, err := s.memberRepo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	collected := decimal.Zero
	for _, m := range members {
		collected = collected.Add(m.TotalCollected)
	}

	return &domain.MemberListResponse{
		Members:        members,
		TotalDue:       ledger.OutstandingTotal(members),
		TotalCollected: collected,
	}, nil
}

// ListTransactions returns all of the session owner's transactions.
func (s *LedgerService) ListTransactions(ctx context.Context, sess auth.Session) ([]*domain.Transaction, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	transactions, err := s.txRepo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	return transactions, nil
}

// MemberTransactions returns one member's payment history.
func (s *LedgerService) MemberTransactions(ctx context.Context, sess auth.Session, memberID uuid.UUID) ([]*domain.Transaction, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	if _, err := s.GetMember(ctx, sess, memberID); err != nil {
		return nil, err
	}

	transactions, err := s.txRepo.ListByMember(ctx, sess.UserID, memberID)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	return transactions, nil
}

// AuditBalances recomputes every member's due amount from the invariant
// formula and repairs any stored value that has skewed. Returns the number
// of members repaired.
func (s *LedgerService) AuditBalances(ctx context.Context) (int, error) {
	members, err := s.memberRepo.ListAll(ctx)
	if err != nil {
		return 0, customError.WrapPersistence(err)
	}

	repaired := 0
	for _, m := range members {
		due := utils.CalculateDueAmount(m.InitialAmount, m.InterestRate, m.TotalCollected)
		if due.Equal(m.DueAmount) {
			continue
		}

		slog.WarnContext(ctx, "repairing skewed balance",
			"member_id", m.ID,
			"stored_due", m.DueAmount,
			"computed_due", due)

		if err := s.memberRepo.UpdateBalances(ctx, m.ID, m.TotalCollected, due); err != nil {
			return repaired, customError.WrapPersistence(err)
		}
		metrics.BalancesRepaired.Inc()
		repaired++
	}

	return repaired, nil
}

// publish is best effort: the mutation is already durable, a missed
// notification only delays the next snapshot.
func (s *LedgerService) publish(ctx context.Context, sess auth.Session) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, sess.UserID.String()); err != nil {
		slog.WarnContext(ctx, "change notification failed", "user_id", sess.UserID, "error", err)
	}
}

func wrapRepoError(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapPersistence(err)
}
