package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

// storageError maps a storage error to the matching Connect code.
func storageError(err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrMemberInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrDuplicate):
		return connect.NewError(connect.CodeAlreadyExists, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireName trims a display name and rejects empty ones.
func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidArgument("%s required", field)
	}
	return name, nil
}

func validAmount(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount > 0
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Code:      g.Code,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIMember(m *models.Member) *api.Member {
	return &api.Member{
		ID:        m.ID,
		GroupID:   m.GroupID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func toAPIMembers(members []*models.Member) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = toAPIMember(m)
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	splits := make([]*api.ExpenseSplit, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = &api.ExpenseSplit{MemberID: s.MemberID, Amount: s.Amount}
	}
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		Category:    e.Category,
		SplitMethod: e.SplitMethod,
		SplitConfig: e.SplitConfig,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		CreatedAt:    s.CreatedAt,
		Note:         s.Note,
	}
}

func toAPIBalances(balances []calculator.Balance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			Balance:    b.Balance,
		}
	}
	return out
}

// ledgerInputs converts a stored ledger into calculator inputs.
func ledgerInputs(ledger *models.Ledger) ([]calculator.Member, []calculator.Expense, map[string][]calculator.Split, []calculator.Settlement) {
	members := make([]calculator.Member, len(ledger.Members))
	for i, m := range ledger.Members {
		members[i] = calculator.Member{ID: m.ID, Name: m.Name}
	}

	expenses := make([]calculator.Expense, len(ledger.Expenses))
	splits := make(map[string][]calculator.Split, len(ledger.Expenses))
	for i, e := range ledger.Expenses {
		expenses[i] = calculator.Expense{ID: e.ID, Amount: e.Amount, PaidBy: e.PaidBy}
		for _, s := range e.Splits {
			splits[e.ID] = append(splits[e.ID], calculator.Split{MemberID: s.MemberID, Amount: s.Amount})
		}
	}

	settlements := make([]calculator.Settlement, len(ledger.Settlements))
	for i, s := range ledger.Settlements {
		settlements[i] = calculator.Settlement{
			ID:           s.ID,
			FromMemberID: s.FromMemberID,
			ToMemberID:   s.ToMemberID,
			Amount:       s.Amount,
		}
	}

	return members, expenses, splits, settlements
}

// logSkipped is the skip hook used for every balance calculation.
func logSkipped(groupID string) func(calculator.Skipped) {
	return func(s calculator.Skipped) {
		slog.Warn("Skipping ledger record in balance calculation",
			"group_id", groupID,
			"kind", s.Kind,
			"record_id", s.RecordID,
			"member_id", s.MemberID,
			"reason", s.Reason,
		)
	}
}
