// Package ledger holds the pure aggregation functions the dashboard and the
// member screens derive their figures from. Everything here is deterministic
// and side-effect free: callers pass in whatever snapshot they have and the
// same inputs always produce the same outputs.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendbook/internal/domain"
	"lendbook/pkg/utils"
)

// TotalCollected sums the amounts of all transactions.
func TotalCollected(transactions []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	return total
}

// TotalInRange sums the amounts of transactions whose date falls in the
// half-open window [start, end).
func TotalInRange(transactions []*domain.Transaction, start, end time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if utils.InRange(tx.Date, start, end) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// TodayTotal sums transactions dated on the calendar day of now.
func TodayTotal(transactions []*domain.Transaction, now time.Time) decimal.Decimal {
	start, end := utils.TodayWindow(now)
	return TotalInRange(transactions, start, end)
}

// WeekTotal sums transactions from the last 7 days inclusive of today.
func WeekTotal(transactions []*domain.Transaction, now time.Time) decimal.Decimal {
	start, end := utils.WeekWindow(now)
	return TotalInRange(transactions, start, end)
}

// MonthTotal sums transactions from the last calendar month inclusive of today.
func MonthTotal(transactions []*domain.Transaction, now time.Time) decimal.Decimal {
	start, end := utils.MonthWindow(now)
	return TotalInRange(transactions, start, end)
}

// ByCategory buckets transaction amounts by category label. Transactions
// without a category are excluded rather than bucketed under a sentinel.
func ByCategory(transactions []*domain.Transaction) map[string]decimal.Decimal {
	buckets := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Category == nil || *tx.Category == "" {
			continue
		}
		buckets[*tx.Category] = buckets[*tx.Category].Add(tx.Amount)
	}
	return buckets
}

// ByType buckets transaction amounts by type tag (income/expense).
// Untyped transactions are excluded.
func ByType(transactions []*domain.Transaction) map[string]decimal.Decimal {
	buckets := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Type == nil || *tx.Type == "" {
			continue
		}
		buckets[*tx.Type] = buckets[*tx.Type].Add(tx.Amount)
	}
	return buckets
}

// RecentN returns the n most recently dated transactions, newest first.
// Ties on date keep the input order. The input slice is not modified.
func RecentN(transactions []*domain.Transaction, n int) []*domain.Transaction {
	if n <= 0 {
		return nil
	}

	sorted := make([]*domain.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// MemberTransactions filters transactions down to a single member's history.
func MemberTransactions(transactions []*domain.Transaction, memberID uuid.UUID) []*domain.Transaction {
	var out []*domain.Transaction
	for _, tx := range transactions {
		if tx.MemberID == memberID {
			out = append(out, tx)
		}
	}
	return out
}

// OutstandingTotal sums the due amounts across a set of members.
func OutstandingTotal(members []*domain.Member) decimal.Decimal {
	total := decimal.Zero
	for _, m := range members {
		total = total.Add(m.DueAmount)
	}
	return total
}
