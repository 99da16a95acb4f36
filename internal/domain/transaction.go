package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction type tags. Optional on a transaction; payments recorded through
// the ledger default to TransactionTypeIncome.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a single payment event against a member's due amount.
// Transactions are append-only: never mutated and never deleted.
type Transaction struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	Date        time.Time       `json:"date" db:"date"`
	Type        *string         `json:"type,omitempty" db:"type"`
	Category    *string         `json:"category,omitempty" db:"category"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Type        *string         `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Category    *string         `json:"category,omitempty"`
}

type RecordPaymentResponse struct {
	Transaction *Transaction `json:"transaction"`
	Member      *Member      `json:"member"`
}
