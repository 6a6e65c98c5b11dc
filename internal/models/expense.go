package models

// DefaultCategory is used when an expense is added without a category.
const DefaultCategory = "General"

// Expense is a payment one member made on behalf of others.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is what the money was spent on (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount float64

	// PaidBy is the member ID of the payer.
	PaidBy string

	// Category is a free-form label, "General" by default.
	Category string

	// SplitMethod is the split tag: "equal", "percentage" or "amount".
	SplitMethod string

	// SplitConfig holds the per-member percentages or amounts as entered.
	// Empty for equal splits.
	SplitConfig map[string]float64

	// Splits are the owed shares. Their amounts add up to Amount within 0.01.
	Splits []ExpenseSplit

	// CreatedAt is the Unix timestamp when the expense was added.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}

// ExpenseSplit is one member's owed share of an expense.
type ExpenseSplit struct {
	ExpenseID string
	MemberID  string
	Amount    float64
}
