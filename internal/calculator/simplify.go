package calculator

import (
	"cmp"
	"math"
	"slices"
)

// Transaction is a suggested payment from a debtor to a creditor.
type Transaction struct {
	From   string // Name of the member who pays
	To     string // Name of the member who is paid
	Amount float64
}

// Simplification is the result of SimplifyDebts.
type Simplification struct {
	Transactions []Transaction

	// Savings is how many fewer payments are needed than if every debtor
	// paid every creditor.
	Savings int

	CreditorCount int
	DebtorCount   int
	NaiveCount    int // CreditorCount × DebtorCount
}

// party is a creditor or debtor with its outstanding amount (always positive).
type party struct {
	name      string
	remaining float64
}

// SimplifyDebts turns net balances into a short list of payments that brings
// every balance to zero.
//
// Algorithm (greedy largest-magnitude matching):
//   - Creditors have balance > Tolerance, debtors < -Tolerance
//   - Both lists are sorted by magnitude, descending, ties keep input order
//   - The largest debtor pays the largest creditor min(debt, credit)
//   - A side whose remaining amount drops below Tolerance is done
//
// The transaction count is at most creditors + debtors - 1.
func SimplifyDebts(balances []Balance) Simplification {
	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Balance > Tolerance:
			creditors = append(creditors, party{name: b.MemberName, remaining: b.Balance})
		case b.Balance < -Tolerance:
			debtors = append(debtors, party{name: b.MemberName, remaining: -b.Balance})
		}
	}

	byRemainingDesc := func(a, b party) int {
		return cmp.Compare(b.remaining, a.remaining)
	}
	slices.SortStableFunc(creditors, byRemainingDesc)
	slices.SortStableFunc(debtors, byRemainingDesc)

	transactions := []Transaction{}
	c, d := 0, 0
	for c < len(creditors) && d < len(debtors) {
		creditor := &creditors[c]
		debtor := &debtors[d]

		amount := math.Min(creditor.remaining, debtor.remaining)
		if amount > Tolerance {
			transactions = append(transactions, Transaction{
				From:   debtor.name,
				To:     creditor.name,
				Amount: amount,
			})
		}

		// Decrement even below the emit threshold so the smaller side always
		// reaches zero and a cursor advances.
		creditor.remaining -= amount
		debtor.remaining -= amount

		if creditor.remaining < Tolerance {
			c++
		}
		if debtor.remaining < Tolerance {
			d++
		}
	}

	naive := len(creditors) * len(debtors)
	return Simplification{
		Transactions:  transactions,
		Savings:       max(0, naive-len(transactions)),
		CreditorCount: len(creditors),
		DebtorCount:   len(debtors),
		NaiveCount:    naive,
	}
}
