package service

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

type testClients struct {
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
}

// setupTestServer starts all three services over a fresh SQLite database,
// with the same interceptors the server uses.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		groups:      apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		settlements: apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

// createGroup creates a group and returns its ID and member IDs keyed by name.
func createGroup(t *testing.T, c *testClients, name string, members ...string) (string, map[string]string) {
	t.Helper()

	resp, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	ids := make(map[string]string, len(resp.Msg.Members))
	for _, m := range resp.Msg.Members {
		ids[m.Name] = m.ID
	}
	return resp.Msg.Group.ID, ids
}

// addEqualExpense adds an expense split equally among participants.
func addEqualExpense(t *testing.T, c *testClients, groupID, paidBy string, amount float64, participants ...string) *api.Expense {
	t.Helper()

	resp, err := c.expenses.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		GroupID: groupID,
		ExpenseInput: api.ExpenseInput{
			Description: "Shared cost",
			Amount:      amount,
			PaidBy:      paidBy,
			SplitMethod: "equal",
			MemberIDs:   participants,
		},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

// balancesByID fetches a group's balances keyed by member ID.
func balancesByID(t *testing.T, c *testClients, groupID string) map[string]float64 {
	t.Helper()

	resp, err := c.settlements.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{
		GroupID: groupID,
	}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}

	out := make(map[string]float64, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		out[b.MemberID] = b.Balance
	}
	return out
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected %v, got %v (%v)", want, got, err)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}
