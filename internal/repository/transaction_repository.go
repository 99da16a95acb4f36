package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lendbook/internal/domain"
)

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, member_id, user_id, amount, description, date, type, category, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
	`

	var transactions []*domain.Transaction
	err := r.db.SelectContext(ctx, &transactions, query, userID)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepository) ListByMember(ctx context.Context, userID, memberID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, member_id, user_id, amount, description, date, type, category, created_at
		FROM transactions
		WHERE user_id = $1 AND member_id = $2
		ORDER BY date DESC, created_at DESC
	`

	var transactions []*domain.Transaction
	err := r.db.SelectContext(ctx, &transactions, query, userID, memberID)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepository) CountByMember(ctx context.Context, userID, memberID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND member_id = $2
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID, memberID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
