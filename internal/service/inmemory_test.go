package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendbook/internal/domain"
	customError "lendbook/pkg/errors"
	"lendbook/pkg/utils"
)

// memoryStore is an in-memory stand-in for the Postgres repositories. Its
// ApplyPayment holds the same contract as the real one: validate-and-apply
// under a single lock, standing in for the row lock, so it is usable for
// exercising concurrent payments.
type memoryStore struct {
	mu           sync.Mutex
	members      map[uuid.UUID]*domain.Member
	transactions []*domain.Transaction
}

func newMemoryStore() *memoryStore {
	return &memoryStore{members: make(map[uuid.UUID]*domain.Member)}
}

func (s *memoryStore) Create(_ context.Context, member *domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *member
	s.members[member.ID] = &copied
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, userID, memberID uuid.UUID) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.UserID != userID {
		return nil, sql.ErrNoRows
	}
	copied := *m
	return &copied, nil
}

func (s *memoryStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Member
	for _, m := range s.members {
		if m.UserID == userID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Member
	for _, m := range s.members {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memoryStore) Delete(_ context.Context, userID, memberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok || m.UserID != userID {
		return sql.ErrNoRows
	}
	for _, tx := range s.transactions {
		if tx.MemberID == memberID {
			return sql.ErrNoRows
		}
	}
	delete(s.members, memberID)
	return nil
}

func (s *memoryStore) ApplyPayment(_ context.Context, payment *domain.Transaction) (*domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[payment.MemberID]
	if !ok || m.UserID != payment.UserID {
		return nil, customError.WrapMemberNotFound(payment.MemberID.String())
	}

	due := utils.CalculateDueAmount(m.InitialAmount, m.InterestRate, m.TotalCollected)
	if payment.Amount.GreaterThan(due) {
		return nil, customError.WrapInsufficientDue(due.String(), payment.Amount.String())
	}

	copied := *payment
	s.transactions = append(s.transactions, &copied)

	m.TotalCollected = m.TotalCollected.Add(payment.Amount)
	m.DueAmount = utils.CalculateDueAmount(m.InitialAmount, m.InterestRate, m.TotalCollected)
	m.LastPayment = &payment.Date
	m.UpdatedAt = time.Now().UTC()

	result := *m
	return &result, nil
}

func (s *memoryStore) UpdateBalances(_ context.Context, memberID uuid.UUID, collected, due decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[memberID]
	if !ok {
		return sql.ErrNoRows
	}
	m.TotalCollected = collected
	m.DueAmount = due
	return nil
}

func (s *memoryStore) ListByOwnerTx(_ context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			copied := *tx
			out = append(out, &copied)
		}
	}
	return out, nil
}

// transactionView adapts memoryStore to repository.TransactionRepository.
type transactionView struct {
	store *memoryStore
}

func (v transactionView) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return v.store.ListByOwnerTx(ctx, userID)
}

func (v transactionView) ListByMember(_ context.Context, userID, memberID uuid.UUID) ([]*domain.Transaction, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	var out []*domain.Transaction
	for _, tx := range v.store.transactions {
		if tx.UserID == userID && tx.MemberID == memberID {
			copied := *tx
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (v transactionView) CountByMember(_ context.Context, userID, memberID uuid.UUID) (int, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	count := 0
	for _, tx := range v.store.transactions {
		if tx.UserID == userID && tx.MemberID == memberID {
			count++
		}
	}
	return count, nil
}
