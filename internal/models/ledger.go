package models

// Ledger is a consistent snapshot of everything that affects a group's
// balances.
type Ledger struct {
	GroupID     string
	Members     []*Member     // ordered by name
	Expenses    []*Expense    // newest first, with splits
	Settlements []*Settlement // newest first
}
