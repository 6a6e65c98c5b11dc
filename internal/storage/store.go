// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMemberInUse is returned when removing a member that still pays
	// an expense or owns a split.
	ErrMemberInUse = errors.New("member is referenced by expenses")

	// ErrDuplicate is returned when a unique field (member name, group code)
	// is already taken.
	ErrDuplicate = errors.New("already exists")
)

// GroupStore manages groups and their members.
type GroupStore interface {
	// CreateGroup persists a new group. ID, Code and CreatedAt are
	// generated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetGroupByCode(ctx context.Context, code string) (*models.Group, error)
	RenameGroup(ctx context.Context, groupID, name string) error

	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	// ListMembers returns the group's members ordered by name.
	ListMembers(ctx context.Context, groupID string) ([]*models.Member, error)
	RenameMember(ctx context.Context, memberID, name string) error
	// RemoveMember deletes a member. Returns ErrMemberInUse if the member
	// pays an expense or owns a split.
	RemoveMember(ctx context.Context, memberID string) error
}

// ExpenseStore manages expenses and their splits.
type ExpenseStore interface {
	// CreateExpense persists an expense together with its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// UpdateExpense replaces the expense fields and all of its splits.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpenses returns the group's expenses, newest first, with splits.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)
}

// SettlementStore manages recorded settlements.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error
}

// Store defines the interface for all ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	GroupStore
	ExpenseStore
	SettlementStore

	// LoadLedger reads members, expenses with splits and settlements of a
	// group in a single read transaction.
	LoadLedger(ctx context.Context, groupID string) (*models.Ledger, error)

	// Close releases any resources held by the store.
	Close() error
}
