package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

// blockingStore holds the first LoadLedger call open after it has read its
// snapshot, until release is closed.
type blockingStore struct {
	storage.Store

	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (b *blockingStore) LoadLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	ledger, err := b.Store.LoadLedger(ctx, groupID)
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.loaded)
		<-b.release
	}
	return ledger, err
}

func newSQLiteStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func balanceOf(balances []calculator.Balance, memberID string) float64 {
	for _, b := range balances {
		if b.MemberID == memberID {
			return b.Balance
		}
	}
	return 0
}

func TestComputeBalances_SeesWritesCommittedDuringSlowRead(t *testing.T) {
	ctx := context.Background()
	inner := newSQLiteStore(t)

	group := &models.Group{Name: "Flat"}
	if err := inner.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	alice := &models.Member{GroupID: group.ID, Name: "Alice"}
	bob := &models.Member{GroupID: group.ID, Name: "Bob"}
	for _, m := range []*models.Member{alice, bob} {
		if err := inner.AddMember(ctx, m); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}

	store := &blockingStore{
		Store:   inner,
		loaded:  make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewSettlementService(store)

	slow := make(chan []calculator.Balance, 1)
	go func() {
		balances, err := svc.computeBalances(ctx, group.ID)
		if err != nil {
			t.Errorf("slow computeBalances failed: %v", err)
		}
		slow <- balances
	}()
	<-store.loaded

	expense := &models.Expense{
		GroupID:     group.ID,
		Description: "Groceries",
		Amount:      10,
		PaidBy:      alice.ID,
		SplitMethod: "equal",
		Splits: []models.ExpenseSplit{
			{MemberID: alice.ID, Amount: 5},
			{MemberID: bob.ID, Amount: 5},
		},
	}
	if err := inner.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	balances, err := svc.computeBalances(ctx, group.ID)
	close(store.release)
	if err != nil {
		t.Fatalf("computeBalances failed: %v", err)
	}
	if got := balanceOf(balances, alice.ID); !almostEqual(got, 5) {
		t.Errorf("Alice balance = %v, want 5", got)
	}
	if got := balanceOf(balances, bob.ID); !almostEqual(got, -5) {
		t.Errorf("Bob balance = %v, want -5", got)
	}

	// The slow read started before the expense and must not include it.
	stale := <-slow
	if got := balanceOf(stale, alice.ID); !almostEqual(got, 0) {
		t.Errorf("slow read Alice balance = %v, want 0", got)
	}
}
