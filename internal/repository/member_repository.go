package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"lendbook/internal/domain"
	customError "lendbook/pkg/errors"
	"lendbook/pkg/utils"
)

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (id, user_id, name, phone, join_date, initial_amount, interest_rate, total_collected, due_amount, last_payment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.UserID,
		member.Name,
		member.Phone,
		member.JoinDate,
		member.InitialAmount,
		member.InterestRate,
		member.TotalCollected,
		member.DueAmount,
		member.LastPayment,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return err
}

func (r *memberRepository) GetByID(ctx context.Context, userID, memberID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, user_id, name, phone, join_date, initial_amount, interest_rate, total_collected, due_amount, last_payment, created_at, updated_at
		FROM members
		WHERE id = $1 AND user_id = $2
	`

	var member domain.Member
	err := r.db.GetContext(ctx, &member, query, memberID, userID)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Member, error) {
	query := `
		SELECT id, user_id, name, phone, join_date, initial_amount, interest_rate, total_collected, due_amount, last_payment, created_at, updated_at
		FROM members
		WHERE user_id = $1
		ORDER BY created_at
	`

	var members []*domain.Member
	err := r.db.SelectContext(ctx, &members, query, userID)
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) ListAll(ctx context.Context) ([]*domain.Member, error) {
	query := `
		SELECT id, user_id, name, phone, join_date, initial_amount, interest_rate, total_collected, due_amount, last_payment, created_at, updated_at
		FROM members
		ORDER BY created_at
	`

	var members []*domain.Member
	err := r.db.SelectContext(ctx, &members, query)
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (r *memberRepository) Delete(ctx context.Context, userID, memberID uuid.UUID) error {
	// The NOT EXISTS guard keeps the delete correct even if a payment lands
	// between the caller's transaction-count check and this statement.
	query := `
		DELETE FROM members
		WHERE id = $1 AND user_id = $2
		  AND NOT EXISTS (SELECT 1 FROM transactions WHERE member_id = $1)
	`

	result, err := r.db.ExecContext(ctx, query, memberID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ApplyPayment performs the read-modify-write for a payment as a single
// database transaction: the member row is locked, the due amount re-derived
// from the invariant formula, the payment validated against it, and both the
// transaction insert and the member update commit together or not at all.
func (r *memberRepository) ApplyPayment(ctx context.Context, payment *domain.Transaction) (*domain.Member, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT id, user_id, name, phone, join_date, initial_amount, interest_rate, total_collected, due_amount, last_payment, created_at, updated_at
		FROM members
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	var member domain.Member
	if err := tx.GetContext(ctx, &member, lockQuery, payment.MemberID, payment.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapMemberNotFound(payment.MemberID.String())
		}
		return nil, err
	}

	due := utils.CalculateDueAmount(member.InitialAmount, member.InterestRate, member.TotalCollected)
	if payment.Amount.GreaterThan(due) {
		return nil, customError.WrapInsufficientDue(due.String(), payment.Amount.String())
	}

	insertQuery := `
		INSERT INTO transactions (id, member_id, user_id, amount, description, date, type, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		payment.ID,
		payment.MemberID,
		payment.UserID,
		payment.Amount,
		payment.Description,
		payment.Date,
		payment.Type,
		payment.Category,
		payment.CreatedAt,
	); err != nil {
		return nil, err
	}

	member.TotalCollected = member.TotalCollected.Add(payment.Amount)
	member.DueAmount = utils.CalculateDueAmount(member.InitialAmount, member.InterestRate, member.TotalCollected)
	member.LastPayment = &payment.Date
	member.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE members
		SET total_collected = $2, due_amount = $3, last_payment = $4, updated_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateQuery,
		member.ID,
		member.TotalCollected,
		member.DueAmount,
		member.LastPayment,
		member.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) UpdateBalances(ctx context.Context, memberID uuid.UUID, collected, due decimal.Decimal) error {
	query := `
		UPDATE members
		SET total_collected = $2, due_amount = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, memberID, collected, due, time.Now().UTC())
	return err
}
