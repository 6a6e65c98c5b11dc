package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func splitsByMember(splits []*api.ExpenseSplit) map[string]float64 {
	out := make(map[string]float64, len(splits))
	for _, s := range splits {
		out[s.MemberID] = s.Amount
	}
	return out
}

func TestAddExpense_EqualSplit(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Roommates", "Alice", "Bob", "Charlie")

	expense := addEqualExpense(t, c, groupID, ids["Alice"], 10, ids["Alice"], ids["Bob"], ids["Charlie"])

	if expense.ID == "" {
		t.Error("expected non-empty expense ID")
	}
	if expense.Category != "General" {
		t.Errorf("category: expected 'General', got '%s'", expense.Category)
	}
	if expense.SplitMethod != "equal" {
		t.Errorf("split method: expected 'equal', got '%s'", expense.SplitMethod)
	}
	if len(expense.Splits) != 3 {
		t.Fatalf("splits: expected 3, got %d", len(expense.Splits))
	}

	// The leftover cent goes to the first participant.
	want := []float64{3.34, 3.33, 3.33}
	var sum float64
	for i, s := range expense.Splits {
		if !almostEqual(s.Amount, want[i]) {
			t.Errorf("split %d: expected %.2f, got %.2f", i, want[i], s.Amount)
		}
		sum += s.Amount
	}
	if !almostEqual(sum, 10) {
		t.Errorf("splits add up to %.2f, want 10.00", sum)
	}
}

func TestAddExpense_PercentageSplit(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Trip", "Alice", "Bob", "Charlie")

	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		GroupID: groupID,
		ExpenseInput: api.ExpenseInput{
			Description: "Cabin",
			Amount:      300,
			PaidBy:      ids["Bob"],
			Category:    "Lodging",
			SplitMethod: "percentage",
			SplitConfig: map[string]float64{
				ids["Alice"]:   50,
				ids["Bob"]:     30,
				ids["Charlie"]: 20,
			},
		},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	expense := resp.Msg.Expense
	if expense.Category != "Lodging" {
		t.Errorf("category: expected 'Lodging', got '%s'", expense.Category)
	}
	if expense.SplitConfig[ids["Alice"]] != 50 {
		t.Errorf("split config not stored: %v", expense.SplitConfig)
	}

	got := splitsByMember(expense.Splits)
	want := map[string]float64{ids["Alice"]: 150, ids["Bob"]: 90, ids["Charlie"]: 60}
	for id, amount := range want {
		if !almostEqual(got[id], amount) {
			t.Errorf("split for %s: expected %.2f, got %.2f", id, amount, got[id])
		}
	}
}

func TestAddExpense_FixedAmountSplit(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Dinner", "Alice", "Bob")

	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		GroupID: groupID,
		ExpenseInput: api.ExpenseInput{
			Description: "Dinner",
			Amount:      42.5,
			PaidBy:      ids["Alice"],
			SplitMethod: "amount",
			SplitConfig: map[string]float64{
				ids["Alice"]: 30,
				ids["Bob"]:   12.5,
			},
		},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	got := splitsByMember(resp.Msg.Expense.Splits)
	if !almostEqual(got[ids["Alice"]], 30) || !almostEqual(got[ids["Bob"]], 12.5) {
		t.Errorf("unexpected splits: %v", got)
	}
}

func TestAddExpense_SplitsAddUpToAmount(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Flat", "Alice", "Bob", "Carol")
	a, b, cc := ids["Alice"], ids["Bob"], ids["Carol"]

	tests := []struct {
		name   string
		amount float64
		method string
		config map[string]float64
	}{
		{name: "equal thirds", amount: 100, method: "equal"},
		{name: "uneven percentages", amount: 100.01, method: "percentage", config: map[string]float64{a: 33.33, b: 33.33, cc: 33.34}},
		{name: "sub-cent amounts", amount: 10, method: "amount", config: map[string]float64{a: 3.333, b: 3.333, cc: 3.334}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
				GroupID: groupID,
				ExpenseInput: api.ExpenseInput{
					Description: tt.name,
					Amount:      tt.amount,
					PaidBy:      a,
					SplitMethod: tt.method,
					MemberIDs:   []string{a, b, cc},
					SplitConfig: tt.config,
				},
			}))
			if err != nil {
				t.Fatalf("AddExpense failed: %v", err)
			}

			var sum float64
			for _, split := range resp.Msg.Expense.Splits {
				sum += split.Amount
			}
			if !almostEqual(sum, tt.amount) {
				t.Errorf("splits add up to %.4f, want %.2f", sum, tt.amount)
			}
		})
	}
}

func TestAddExpense_Validation(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Roommates", "Alice", "Bob")
	_, otherIDs := createGroup(t, c, "Elsewhere", "Mallory")

	valid := func() api.ExpenseInput {
		return api.ExpenseInput{
			Description: "Groceries",
			Amount:      20,
			PaidBy:      ids["Alice"],
			SplitMethod: "equal",
			MemberIDs:   []string{ids["Alice"], ids["Bob"]},
		}
	}

	tests := []struct {
		name    string
		groupID string
		modify  func(in *api.ExpenseInput)
		code    connect.Code
	}{
		{
			name:    "unknown group",
			groupID: "nonexistent-id",
			modify:  func(in *api.ExpenseInput) {},
			code:    connect.CodeNotFound,
		},
		{
			name:   "zero amount",
			modify: func(in *api.ExpenseInput) { in.Amount = 0 },
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "negative amount",
			modify: func(in *api.ExpenseInput) { in.Amount = -5 },
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "missing description",
			modify: func(in *api.ExpenseInput) { in.Description = " " },
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "payer outside group",
			modify: func(in *api.ExpenseInput) { in.PaidBy = otherIDs["Mallory"] },
			code:   connect.CodeInvalidArgument,
		},
		{
			name: "participant outside group",
			modify: func(in *api.ExpenseInput) {
				in.MemberIDs = []string{ids["Alice"], otherIDs["Mallory"]}
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name:   "no participants",
			modify: func(in *api.ExpenseInput) { in.MemberIDs = nil },
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "duplicate participant",
			modify: func(in *api.ExpenseInput) { in.MemberIDs = []string{ids["Bob"], ids["Bob"]} },
			code:   connect.CodeInvalidArgument,
		},
		{
			name:   "unknown split method",
			modify: func(in *api.ExpenseInput) { in.SplitMethod = "shares" },
			code:   connect.CodeInvalidArgument,
		},
		{
			name: "percentages not adding up to 100",
			modify: func(in *api.ExpenseInput) {
				in.SplitMethod = "percentage"
				in.SplitConfig = map[string]float64{ids["Alice"]: 60, ids["Bob"]: 30}
			},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "amounts not adding up to total",
			modify: func(in *api.ExpenseInput) {
				in.SplitMethod = "amount"
				in.SplitConfig = map[string]float64{ids["Alice"]: 10, ids["Bob"]: 5}
			},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.modify(&in)
			gid := tt.groupID
			if gid == "" {
				gid = groupID
			}
			_, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
				GroupID:      gid,
				ExpenseInput: in,
			}))
			assertCode(t, err, tt.code)
		})
	}

	// Nothing was stored by the rejected requests.
	list, err := c.expenses.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{
		GroupID: groupID,
	}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 0 {
		t.Errorf("expected no expenses, got %d", len(list.Msg.Expenses))
	}
}

func TestUpdateExpense(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Roommates", "Alice", "Bob", "Charlie")
	expense := addEqualExpense(t, c, groupID, ids["Alice"], 30, ids["Alice"], ids["Bob"], ids["Charlie"])

	resp, err := c.expenses.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: expense.ID,
		ExpenseInput: api.ExpenseInput{
			Description: "Groceries (corrected)",
			Amount:      40,
			PaidBy:      ids["Bob"],
			SplitMethod: "amount",
			SplitConfig: map[string]float64{
				ids["Alice"]: 25,
				ids["Bob"]:   15,
			},
		},
	}))
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}

	updated := resp.Msg.Expense
	if updated.ID != expense.ID {
		t.Errorf("ID changed: %s -> %s", expense.ID, updated.ID)
	}
	if updated.PaidBy != ids["Bob"] || updated.Amount != 40 || updated.SplitMethod != "amount" {
		t.Errorf("fields not updated: %+v", updated)
	}
	if updated.UpdatedAt < updated.CreatedAt {
		t.Errorf("UpdatedAt %d before CreatedAt %d", updated.UpdatedAt, updated.CreatedAt)
	}

	// Splits are replaced, Charlie no longer owes anything.
	balances := balancesByID(t, c, groupID)
	want := map[string]float64{ids["Alice"]: -25, ids["Bob"]: 25, ids["Charlie"]: 0}
	for id, b := range want {
		if !almostEqual(balances[id], b) {
			t.Errorf("balance for %s: expected %.2f, got %.2f", id, b, balances[id])
		}
	}
}

func TestUpdateExpense_NotFound(t *testing.T) {
	c := setupTestServer(t)

	_, err := c.expenses.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: "nonexistent-id",
		ExpenseInput: api.ExpenseInput{
			Description: "Nothing",
			Amount:      10,
			PaidBy:      "nobody",
		},
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestUpdateExpense_InvalidLeavesExpenseUnchanged(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Roommates", "Alice", "Bob")
	expense := addEqualExpense(t, c, groupID, ids["Alice"], 30, ids["Alice"], ids["Bob"])

	_, err := c.expenses.UpdateExpense(context.Background(), connect.NewRequest(&api.UpdateExpenseRequest{
		ExpenseID: expense.ID,
		ExpenseInput: api.ExpenseInput{
			Description: "Groceries",
			Amount:      30,
			PaidBy:      ids["Alice"],
			SplitMethod: "percentage",
			SplitConfig: map[string]float64{ids["Alice"]: 10},
		},
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	balances := balancesByID(t, c, groupID)
	if !almostEqual(balances[ids["Alice"]], 15) || !almostEqual(balances[ids["Bob"]], -15) {
		t.Errorf("balances changed after rejected update: %v", balances)
	}
}

func TestDeleteExpense(t *testing.T) {
	c := setupTestServer(t)
	groupID, ids := createGroup(t, c, "Roommates", "Alice", "Bob")
	expense := addEqualExpense(t, c, groupID, ids["Alice"], 50, ids["Alice"], ids["Bob"])
	addEqualExpense(t, c, groupID, ids["Bob"], 10, ids["Alice"], ids["Bob"])

	if _, err := c.expenses.DeleteExpense(context.Background(), connect.NewRequest(&api.DeleteExpenseRequest{
		ExpenseID: expense.ID,
	})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	list, err := c.expenses.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{
		GroupID: groupID,
	}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(list.Msg.Expenses))
	}
	if len(list.Msg.Expenses[0].Splits) != 2 {
		t.Errorf("expected 2 splits on the remaining expense, got %d", len(list.Msg.Expenses[0].Splits))
	}

	// Only Bob's 10 remains.
	balances := balancesByID(t, c, groupID)
	if !almostEqual(balances[ids["Alice"]], -5) || !almostEqual(balances[ids["Bob"]], 5) {
		t.Errorf("unexpected balances after delete: %v", balances)
	}

	_, err = c.expenses.DeleteExpense(context.Background(), connect.NewRequest(&api.DeleteExpenseRequest{
		ExpenseID: expense.ID,
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestListExpenses_NotFound(t *testing.T) {
	c := setupTestServer(t)

	_, err := c.expenses.ListExpenses(context.Background(), connect.NewRequest(&api.ListExpensesRequest{
		GroupID: "nonexistent-id",
	}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestPreviewSplit(t *testing.T) {
	c := setupTestServer(t)

	tests := []struct {
		name    string
		req     *api.PreviewSplitRequest
		want    map[string]float64
		wantErr bool
	}{
		{
			name: "equal",
			req: &api.PreviewSplitRequest{
				Amount:    100,
				MemberIDs: []string{"a", "b", "c"},
			},
			want: map[string]float64{"a": 33.34, "b": 33.33, "c": 33.33},
		},
		{
			name: "percentage",
			req: &api.PreviewSplitRequest{
				Amount:      80,
				SplitMethod: "percentage",
				SplitConfig: map[string]float64{"a": 25, "b": 75},
			},
			want: map[string]float64{"a": 20, "b": 60},
		},
		{
			name: "amounts with sub-cent digits",
			req: &api.PreviewSplitRequest{
				Amount:      10,
				SplitMethod: "amount",
				SplitConfig: map[string]float64{"a": 3.333, "b": 3.333, "c": 3.334},
			},
			want: map[string]float64{"a": 3.34, "b": 3.33, "c": 3.33},
		},
		{
			name: "invalid amount",
			req: &api.PreviewSplitRequest{
				Amount:    -1,
				MemberIDs: []string{"a"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.expenses.PreviewSplit(context.Background(), connect.NewRequest(tt.req))
			if tt.wantErr {
				assertCode(t, err, connect.CodeInvalidArgument)
				return
			}
			if err != nil {
				t.Fatalf("PreviewSplit failed: %v", err)
			}
			got := splitsByMember(resp.Msg.Splits)
			for id, amount := range tt.want {
				if !almostEqual(got[id], amount) {
					t.Errorf("split for %s: expected %.2f, got %.2f", id, amount, got[id])
				}
			}
		})
	}
}
