package calculator

// Member is a group member as seen by the balance calculation.
type Member struct {
	ID   string
	Name string
}

// Expense is the minimal expense information needed for balance calculations.
type Expense struct {
	ID     string
	Amount float64
	PaidBy string // member ID of the payer
}

// Split is one member's owed share of an expense.
type Split struct {
	MemberID string
	Amount   float64
}

// Settlement is a recorded payment between two members.
type Settlement struct {
	ID           string
	FromMemberID string // Who paid (debtor settling up)
	ToMemberID   string // Who received (creditor being paid)
	Amount       float64
}

// Balance is the net position of one member.
type Balance struct {
	MemberID   string
	MemberName string
	Balance    float64 // Positive = owed money, Negative = owes money
}

// SkipKind identifies which kind of ledger record was skipped.
type SkipKind string

const (
	SkipExpense    SkipKind = "expense"
	SkipSplit      SkipKind = "split"
	SkipSettlement SkipKind = "settlement"
)

// Skipped describes a ledger record (or one side of it) left out of the
// balance calculation.
type Skipped struct {
	Kind     SkipKind
	RecordID string // expense or settlement ID
	MemberID string // the unresolved member, empty for non-finite amounts
	Reason   string
}

// Option configures ComputeBalances.
type Option func(*options)

type options struct {
	onSkip func(Skipped)
}

// WithSkipHook registers a callback invoked for every skipped record.
func WithSkipHook(fn func(Skipped)) Option {
	return func(o *options) {
		o.onSkip = fn
	}
}

// ComputeBalances computes the net balance of every member from a group's
// expenses, their splits and the recorded settlements.
//
// Algorithm:
//   - For each expense: payer gets +amount, each split member gets -split
//   - For each settlement: receiver gets +amount, payer gets -amount
//   - References to unknown members are skipped for that accumulator only
//
// The result has one entry per member, in the order members were given.
func ComputeBalances(members []Member, expenses []Expense, splitsByExpense map[string][]Split, settlements []Settlement, opts ...Option) []Balance {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	skip := func(s Skipped) {
		if o.onSkip != nil {
			o.onSkip(s)
		}
	}

	balances := make(map[string]float64, len(members))
	for _, m := range members {
		balances[m.ID] = 0
	}

	for _, expense := range expenses {
		if !isFinite(expense.Amount) {
			skip(Skipped{Kind: SkipExpense, RecordID: expense.ID, Reason: "non-finite amount"})
			continue
		}

		if _, ok := balances[expense.PaidBy]; ok {
			balances[expense.PaidBy] += expense.Amount
		} else {
			skip(Skipped{Kind: SkipExpense, RecordID: expense.ID, MemberID: expense.PaidBy, Reason: "unknown payer"})
		}

		for _, split := range splitsByExpense[expense.ID] {
			if !isFinite(split.Amount) {
				skip(Skipped{Kind: SkipSplit, RecordID: expense.ID, MemberID: split.MemberID, Reason: "non-finite amount"})
				continue
			}
			if _, ok := balances[split.MemberID]; !ok {
				skip(Skipped{Kind: SkipSplit, RecordID: expense.ID, MemberID: split.MemberID, Reason: "unknown member"})
				continue
			}
			balances[split.MemberID] -= split.Amount
		}
	}

	for _, s := range settlements {
		if !isFinite(s.Amount) {
			skip(Skipped{Kind: SkipSettlement, RecordID: s.ID, Reason: "non-finite amount"})
			continue
		}
		if _, ok := balances[s.ToMemberID]; ok {
			balances[s.ToMemberID] += s.Amount
		} else {
			skip(Skipped{Kind: SkipSettlement, RecordID: s.ID, MemberID: s.ToMemberID, Reason: "unknown receiver"})
		}
		if _, ok := balances[s.FromMemberID]; ok {
			balances[s.FromMemberID] -= s.Amount
		} else {
			skip(Skipped{Kind: SkipSettlement, RecordID: s.ID, MemberID: s.FromMemberID, Reason: "unknown payer"})
		}
	}

	result := make([]Balance, 0, len(members))
	for _, m := range members {
		bal := balances[m.ID]
		if isSettled(bal) {
			bal = 0
		}
		result = append(result, Balance{
			MemberID:   m.ID,
			MemberName: m.Name,
			Balance:    bal,
		})
	}
	return result
}
