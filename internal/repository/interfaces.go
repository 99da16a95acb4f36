package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendbook/internal/domain"
)

// MemberRepository defines the interface for member data operations.
// Every read and write except ListAll is scoped to an owning user.
type MemberRepository interface {
	// Create persists a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves one of the owner's members
	GetByID(ctx context.Context, userID, memberID uuid.UUID) (*domain.Member, error)

	// ListByOwner retrieves all of the owner's members
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Member, error)

	// ListAll retrieves every member regardless of owner (balance audit only)
	ListAll(ctx context.Context) ([]*domain.Member, error)

	// Delete removes a member, refusing while transactions still reference it
	Delete(ctx context.Context, userID, memberID uuid.UUID) error

	// ApplyPayment atomically records a payment transaction and updates the
	// member's collected/due/last-payment fields in one database transaction
	ApplyPayment(ctx context.Context, payment *domain.Transaction) (*domain.Member, error)

	// UpdateBalances overwrites a member's derived balance fields (audit repair)
	UpdateBalances(ctx context.Context, memberID uuid.UUID, collected, due decimal.Decimal) error
}

// TransactionRepository defines the interface for transaction data operations.
// Transactions are only ever created through MemberRepository.ApplyPayment.
type TransactionRepository interface {
	// ListByOwner retrieves all of the owner's transactions
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)

	// ListByMember retrieves one member's payment history
	ListByMember(ctx context.Context, userID, memberID uuid.UUID) ([]*domain.Transaction, error)

	// CountByMember counts transactions referencing a member
	CountByMember(ctx context.Context, userID, memberID uuid.UUID) (int, error)
}

// UserRepository defines the interface for account data operations
type UserRepository interface {
	// Create persists a new account
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves an account by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID retrieves an account by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
