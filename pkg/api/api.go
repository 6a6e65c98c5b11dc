// Package api defines the request and response messages of the settleup.v1
// RPC services. Messages travel as JSON; see package apiconnect for the
// Connect handlers and clients.
package api

// Group is a set of people sharing expenses.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt int64  `json:"createdAt"`
}

// Member is a person within a group.
type Member struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// ExpenseSplit is one member's owed share of an expense.
type ExpenseSplit struct {
	MemberID string  `json:"memberId"`
	Amount   float64 `json:"amount"`
}

// Expense is a payment one member made on behalf of others.
type Expense struct {
	ID          string             `json:"id"`
	GroupID     string             `json:"groupId"`
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	PaidBy      string             `json:"paidBy"`
	Category    string             `json:"category"`
	SplitMethod string             `json:"splitMethod"`
	SplitConfig map[string]float64 `json:"splitConfig,omitempty"`
	Splits      []*ExpenseSplit    `json:"splits"`
	CreatedAt   int64              `json:"createdAt"`
	UpdatedAt   int64              `json:"updatedAt"`
}

// Settlement is a recorded payment between two members.
type Settlement struct {
	ID           string  `json:"id"`
	GroupID      string  `json:"groupId"`
	FromMemberID string  `json:"fromMemberId"`
	ToMemberID   string  `json:"toMemberId"`
	Amount       float64 `json:"amount"`
	CreatedAt    int64   `json:"createdAt"`
	Note         string  `json:"note,omitempty"`
}

// MemberBalance is a member's net position: positive is owed money,
// negative owes money.
type MemberBalance struct {
	MemberID   string  `json:"memberId"`
	MemberName string  `json:"memberName"`
	Balance    float64 `json:"balance"`
}

// Transaction is a suggested payment between two members, by name.
type Transaction struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members,omitempty"` // initial member names
}

type CreateGroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group   *Group    `json:"group"`
	Members []*Member `json:"members"`
}

type GetGroupByCodeRequest struct {
	Code string `json:"code"`
}

type GetGroupByCodeResponse struct {
	Group *Group `json:"group"`
}

type RenameGroupRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type RenameGroupResponse struct {
	Group *Group `json:"group"`
}

type AddMemberRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct {
	GroupID string `json:"groupId"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type RenameMemberRequest struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
}

type RenameMemberResponse struct {
	Member *Member `json:"member"`
}

type RemoveMemberRequest struct {
	MemberID string `json:"memberId"`
}

type RemoveMemberResponse struct{}

// ExpenseService messages.

// ExpenseInput is the editable part of an expense.
// MemberIDs lists the participants of an equal split; SplitConfig holds
// percentages or amounts keyed by member ID for the other split methods.
type ExpenseInput struct {
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	PaidBy      string             `json:"paidBy"`
	Category    string             `json:"category,omitempty"`
	SplitMethod string             `json:"splitMethod"`
	MemberIDs   []string           `json:"memberIds,omitempty"`
	SplitConfig map[string]float64 `json:"splitConfig,omitempty"`
}

type AddExpenseRequest struct {
	GroupID string `json:"groupId"`
	ExpenseInput
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
	ExpenseInput
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type PreviewSplitRequest struct {
	Amount      float64            `json:"amount"`
	SplitMethod string             `json:"splitMethod"`
	MemberIDs   []string           `json:"memberIds,omitempty"`
	SplitConfig map[string]float64 `json:"splitConfig,omitempty"`
}

type PreviewSplitResponse struct {
	Splits []*ExpenseSplit `json:"splits"`
}

// SettlementService messages.

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}

type GetBalancesBatchRequest struct {
	GroupIDs []string `json:"groupIds"`
}

type GroupBalances struct {
	GroupID  string           `json:"groupId"`
	Balances []*MemberBalance `json:"balances"`
}

type GetBalancesBatchResponse struct {
	Groups []*GroupBalances `json:"groups"`
}

type SimplifyDebtsRequest struct {
	GroupID string `json:"groupId"`
}

type SimplifyDebtsResponse struct {
	Transactions  []*Transaction `json:"transactions"`
	Savings       int32          `json:"savings"`
	CreditorCount int32          `json:"creditorCount"`
	DebtorCount   int32          `json:"debtorCount"`
	NaiveCount    int32          `json:"naiveCount"`
}

type RecordSettlementRequest struct {
	GroupID      string  `json:"groupId"`
	FromMemberID string  `json:"fromMemberId"`
	ToMemberID   string  `json:"toMemberId"`
	Amount       float64 `json:"amount"`
	Note         string  `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}
