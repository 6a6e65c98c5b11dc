package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	apiconnect.UnimplementedExpenseServiceHandler
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// allocate validates the split method of an expense input and divides the
// amount among the participants.
func allocate(amount float64, kind string, memberIDs []string, config map[string]float64) (calculator.SplitMethod, []calculator.Split, error) {
	if !validAmount(amount) {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrInvalidAmount)
	}

	method, err := calculator.NewSplitMethod(calculator.SplitKind(kind), memberIDs, config)
	if err != nil {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	splits, err := method.Allocate(amount)
	if err != nil {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return method, splits, nil
}

// buildExpense validates input against the group's members and fills in
// expense with the computed splits.
func (s *ExpenseService) buildExpense(ctx context.Context, expense *models.Expense, in api.ExpenseInput) error {
	description, err := requireName("description", in.Description)
	if err != nil {
		return err
	}

	members, err := s.store.ListMembers(ctx, expense.GroupID)
	if err != nil {
		return storageError(err)
	}
	inGroup := make(map[string]bool, len(members))
	for _, m := range members {
		inGroup[m.ID] = true
	}

	if !inGroup[in.PaidBy] {
		return invalidArgument("payer %q is not a member of group %s", in.PaidBy, expense.GroupID)
	}

	method, splits, err := allocate(in.Amount, in.SplitMethod, in.MemberIDs, in.SplitConfig)
	if err != nil {
		return err
	}
	if err := calculator.ValidateSplits(in.Amount, splits); err != nil {
		slog.Error("Allocated splits do not add up", "group_id", expense.GroupID, "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}

	expense.Splits = make([]models.ExpenseSplit, len(splits))
	for i, split := range splits {
		if !inGroup[split.MemberID] {
			return invalidArgument("participant %q is not a member of group %s", split.MemberID, expense.GroupID)
		}
		expense.Splits[i] = models.ExpenseSplit{
			ExpenseID: expense.ID,
			MemberID:  split.MemberID,
			Amount:    split.Amount,
		}
	}

	expense.Description = description
	expense.Amount = in.Amount
	expense.PaidBy = in.PaidBy
	expense.Category = strings.TrimSpace(in.Category)
	expense.SplitMethod = string(method.Kind())
	expense.SplitConfig = method.Config()
	return nil
}

// AddExpense records a new expense and its splits.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"paid_by", req.Msg.PaidBy,
		"split_method", req.Msg.SplitMethod,
	)

	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storageError(err)
	}

	expense := &models.Expense{GroupID: req.Msg.GroupID}
	if err := s.buildExpense(ctx, expense, req.Msg.ExpenseInput); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", expense.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense added",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"splits_count", len(expense.Splits),
	)

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense replaces an expense's fields and recomputes its splits.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"amount", req.Msg.Amount,
		"split_method", req.Msg.SplitMethod,
	)

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, storageError(err)
	}

	if err := s.buildExpense(ctx, expense, req.Msg.ExpenseInput); err != nil {
		return nil, err
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID)

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses lists a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storageError(err)
	}

	expenses, err := s.store.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// PreviewSplit computes the splits of an amount without storing anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	_, splits, err := allocate(req.Msg.Amount, req.Msg.SplitMethod, req.Msg.MemberIDs, req.Msg.SplitConfig)
	if err != nil {
		slog.Debug("PreviewSplit rejected", "error", err)
		return nil, err
	}

	out := make([]*api.ExpenseSplit, len(splits))
	for i, split := range splits {
		out[i] = &api.ExpenseSplit{MemberID: split.MemberID, Amount: split.Amount}
	}

	return connect.NewResponse(&api.PreviewSplitResponse{Splits: out}), nil
}
