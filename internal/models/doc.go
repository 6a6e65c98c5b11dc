// Package models defines the core domain models for SettleUp.
//
// # Ledger Models
//
// A group's ledger is made of three kinds of records:
//   - Expense: one member paid an amount on behalf of the group
//   - ExpenseSplit: one member's owed share of an expense
//   - Settlement: one member paid another directly to square a debt
//
// Balances and suggested payments are never stored. They are derived from
// the ledger on demand by the calculator package.
//
// # Design Principles
//
//  1. **Flat records**: relationships use ID strings, not pointers
//  2. **Raw input kept**: expenses store the split configuration as entered,
//     next to the computed splits, so the entry form can be reproduced
//  3. **Snapshot reads**: Ledger bundles everything needed for one balance
//     calculation, read in a single transaction
package models
