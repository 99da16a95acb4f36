package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
	"lendbook/internal/ledger"
	"lendbook/internal/repository"
	customError "lendbook/pkg/errors"
)

// DashboardSummary is the figure set the dashboard screen renders.
type DashboardSummary struct {
	TotalCollected   decimal.Decimal            `json:"total_collected"`
	TodayCollected   decimal.Decimal            `json:"today_collected"`
	WeekCollected    decimal.Decimal            `json:"week_collected"`
	MonthCollected   decimal.Decimal            `json:"month_collected"`
	TotalOutstanding decimal.Decimal            `json:"total_outstanding"`
	MemberCount      int                        `json:"member_count"`
	ByCategory       map[string]decimal.Decimal `json:"by_category"`
	ByType           map[string]decimal.Decimal `json:"by_type"`
	Recent           []*domain.Transaction      `json:"recent"`
}

// DashboardService derives read-only dashboard figures from the owner's
// full member and transaction sets.
type DashboardService struct {
	memberRepo repository.MemberRepository
	txRepo     repository.TransactionRepository
}

func NewDashboardService(memberRepo repository.MemberRepository, txRepo repository.TransactionRepository) *DashboardService {
	return &DashboardService{
		memberRepo: memberRepo,
		txRepo:     txRepo,
	}
}

// Summary loads the owner's ledger once and derives every dashboard figure
// from that snapshot. now anchors the calendar windows.
func (s *DashboardService) Summary(ctx context.Context, sess auth.Session, now time.Time) (*DashboardSummary, error) {
	if !sess.Valid() {
		return nil, customError.WrapUnauthenticated()
	}

	members, err := s.memberRepo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	transactions, err := s.txRepo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	return &DashboardSummary{
		TotalCollected:   ledger.TotalCollected(transactions),
		TodayCollected:   ledger.TodayTotal(transactions, now),
		WeekCollected:    ledger.WeekTotal(transactions, now),
		MonthCollected:   ledger.MonthTotal(transactions, now),
		TotalOutstanding: ledger.OutstandingTotal(members),
		MemberCount:      len(members),
		ByCategory:       ledger.ByCategory(transactions),
		ByType:           ledger.ByType(transactions),
		Recent:           ledger.RecentN(transactions, 5),
	}, nil
}
