package calculator

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// SplitKind is the tag stored with every expense.
type SplitKind string

const (
	SplitEqual      SplitKind = "equal"
	SplitPercentage SplitKind = "percentage"
	SplitAmount     SplitKind = "amount"
)

var (
	ErrInvalidAmount      = errors.New("amount must be a positive finite number")
	ErrNoParticipants     = errors.New("must have at least one participant")
	ErrDuplicateMember    = errors.New("member listed more than once")
	ErrNegativeShare      = errors.New("share must be a non-negative finite number")
	ErrPercentTotal       = errors.New("percentages must add up to 100")
	ErrAmountTotal        = errors.New("amounts must add up to the expense amount")
	ErrSplitTotal         = errors.New("splits must add up to the expense amount")
	ErrUnknownSplitMethod = errors.New("unknown split method")
)

// SplitMethod decides how an expense amount is shared among members.
// It is one of EqualSplit, PercentageSplit or FixedAmountSplit.
type SplitMethod interface {
	Kind() SplitKind

	// Config returns the raw per-member values as entered, nil for equal splits.
	Config() map[string]float64

	// Allocate divides amount into per-member splits that add up to amount.
	Allocate(amount float64) ([]Split, error)
}

// EqualSplit shares an amount evenly. Leftover cents go to the first members.
type EqualSplit struct {
	MemberIDs []string
}

// PercentageSplit shares an amount by per-member percentages.
type PercentageSplit struct {
	Percents map[string]float64
}

// FixedAmountSplit assigns explicit per-member amounts.
type FixedAmountSplit struct {
	Amounts map[string]float64
}

// NewSplitMethod builds and validates a split method from its stored tag.
// memberIDs is used for equal splits; config holds percentages or amounts
// for the other kinds.
func NewSplitMethod(kind SplitKind, memberIDs []string, config map[string]float64) (SplitMethod, error) {
	var m SplitMethod
	switch kind {
	case SplitEqual, "":
		m = EqualSplit{MemberIDs: memberIDs}
	case SplitPercentage:
		m = PercentageSplit{Percents: config}
	case SplitAmount:
		m = FixedAmountSplit{Amounts: config}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitMethod, kind)
	}
	if err := validateShares(m); err != nil {
		return nil, err
	}
	return m, nil
}

func validateShares(m SplitMethod) error {
	switch m := m.(type) {
	case EqualSplit:
		if len(m.MemberIDs) == 0 {
			return ErrNoParticipants
		}
		seen := make(map[string]bool, len(m.MemberIDs))
		for _, id := range m.MemberIDs {
			if seen[id] {
				return fmt.Errorf("%w: %s", ErrDuplicateMember, id)
			}
			seen[id] = true
		}
		return nil
	case PercentageSplit:
		return validateConfig(m.Percents)
	case FixedAmountSplit:
		return validateConfig(m.Amounts)
	}
	return nil
}

func validateConfig(values map[string]float64) error {
	if len(values) == 0 {
		return ErrNoParticipants
	}
	for id, v := range values {
		if !isFinite(v) || v < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeShare, id)
		}
	}
	return nil
}

func (EqualSplit) Kind() SplitKind       { return SplitEqual }
func (PercentageSplit) Kind() SplitKind  { return SplitPercentage }
func (FixedAmountSplit) Kind() SplitKind { return SplitAmount }

func (EqualSplit) Config() map[string]float64         { return nil }
func (m PercentageSplit) Config() map[string]float64  { return m.Percents }
func (m FixedAmountSplit) Config() map[string]float64 { return m.Amounts }

// Allocate splits amount evenly, e.g. 10.00 over three members gives
// 3.34, 3.33, 3.33.
func (m EqualSplit) Allocate(amount float64) ([]Split, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := validateShares(m); err != nil {
		return nil, err
	}

	total := toCents(amount)
	n := int64(len(m.MemberIDs))
	base, rem := total/n, total%n

	splits := make([]Split, len(m.MemberIDs))
	for i, id := range m.MemberIDs {
		cents := base
		if int64(i) < rem {
			cents++
		}
		splits[i] = Split{MemberID: id, Amount: fromCents(cents)}
	}
	return splits, nil
}

// Allocate splits amount by percentage. Rounding residue is handed out one
// cent at a time in member ID order.
func (m PercentageSplit) Allocate(amount float64) ([]Split, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := validateConfig(m.Percents); err != nil {
		return nil, err
	}

	var totalPercent float64
	for _, p := range m.Percents {
		totalPercent += p
	}
	if math.Abs(totalPercent-100) >= Tolerance {
		return nil, fmt.Errorf("%w: got %.2f", ErrPercentTotal, totalPercent)
	}

	ids := sortedKeys(m.Percents)
	total := toCents(amount)
	cents := make([]int64, len(ids))
	var allocated int64
	for i, id := range ids {
		cents[i] = toCents(amount * m.Percents[id] / 100)
		allocated += cents[i]
	}

	distributeResidue(cents, total-allocated)

	splits := make([]Split, len(ids))
	for i, id := range ids {
		splits[i] = Split{MemberID: id, Amount: fromCents(cents[i])}
	}
	return splits, nil
}

// Allocate returns the configured amounts, which must add up to amount
// within Tolerance. Rounding residue is handed out one cent at a time in
// member ID order.
func (m FixedAmountSplit) Allocate(amount float64) ([]Split, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := validateConfig(m.Amounts); err != nil {
		return nil, err
	}

	var sum float64
	for _, a := range m.Amounts {
		sum += a
	}
	if math.Abs(sum-amount) >= Tolerance {
		return nil, fmt.Errorf("%w: got %.2f, want %.2f", ErrAmountTotal, sum, amount)
	}

	ids := sortedKeys(m.Amounts)
	cents := make([]int64, len(ids))
	var allocated int64
	for i, id := range ids {
		cents[i] = toCents(m.Amounts[id])
		allocated += cents[i]
	}
	distributeResidue(cents, toCents(amount)-allocated)

	splits := make([]Split, len(ids))
	for i, id := range ids {
		splits[i] = Split{MemberID: id, Amount: fromCents(cents[i])}
	}
	return splits, nil
}

// distributeResidue adds (or removes) residue cents one at a time, cycling
// through cents from the start. A share is never taken below zero.
func distributeResidue(cents []int64, residue int64) {
	step := int64(1)
	if residue < 0 {
		step = -1
	}
	for i := 0; residue != 0; i = (i + 1) % len(cents) {
		if step < 0 && cents[i] == 0 {
			continue
		}
		cents[i] += step
		residue -= step
	}
}

// ValidateSplits checks that splits add up to amount within Tolerance.
func ValidateSplits(amount float64, splits []Split) error {
	var sum float64
	for _, s := range splits {
		if !isFinite(s.Amount) || s.Amount < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeShare, s.MemberID)
		}
		sum += s.Amount
	}
	if math.Abs(sum-amount) >= Tolerance {
		return fmt.Errorf("%w: got %.2f, want %.2f", ErrSplitTotal, sum, amount)
	}
	return nil
}

func checkAmount(amount float64) error {
	if !isFinite(amount) || amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
