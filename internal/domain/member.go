package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Member represents a person with an interest-bearing balance.
// Principal and rate are fixed at creation; the collected/due/last-payment
// triple only changes through recorded payments. The invariant
// DueAmount + TotalCollected == InitialAmount * (1 + InterestRate/100)
// holds for every persisted member.
type Member struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Name           string          `json:"name" db:"name"`
	Phone          string          `json:"phone" db:"phone"`
	JoinDate       time.Time       `json:"join_date" db:"join_date"`
	InitialAmount  decimal.Decimal `json:"initial_amount" db:"initial_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalCollected decimal.Decimal `json:"total_collected" db:"total_collected"`
	DueAmount      decimal.Decimal `json:"due_amount" db:"due_amount"`
	LastPayment    *time.Time      `json:"last_payment,omitempty" db:"last_payment"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateMemberRequest struct {
	Name          string          `json:"name" validate:"required"`
	Phone         string          `json:"phone" validate:"required"`
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"required"`
	InterestRate  decimal.Decimal `json:"interest_rate" validate:"required"`
	JoinDate      string          `json:"join_date" validate:"required,datetime=2006-01-02"`
}

type MemberListResponse struct {
	Members        []*Member       `json:"members"`
	TotalDue       decimal.Decimal `json:"total_due"`
	TotalCollected decimal.Decimal `json:"total_collected"`
}
