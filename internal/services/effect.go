package services

import (
	"errors"
	"sort"
)

const (
	AccountTypeChecking   = "checking"
	AccountTypeSavings    = "savings"
	AccountTypeCredit     = "credit"
	AccountTypeInvestment = "investment"
)

const (
	TransactionTypeDebit    = "debit"
	TransactionTypeCredit   = "credit"
	TransactionTypeTransfer = "transfer"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

func ValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeInvestment:
		return true
	}
	return false
}

func ValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeDebit, TransactionTypeCredit, TransactionTypeTransfer:
		return true
	}
	return false
}

// balanceDelta is one signed balance adjustment against a single account.
type balanceDelta struct {
	accountID string
	amount    int64
}

// effectOf is the single source of truth for how each transaction type moves
// money: a debit takes from the source, a credit adds to it, a transfer does
// both against source and destination. Reversal is invert(effectOf(...)).
func effectOf(transactionType string, amount int64, accountID string, destinationID *string) []balanceDelta {
	switch transactionType {
	case TransactionTypeDebit:
		return []balanceDelta{{accountID: accountID, amount: -amount}}
	case TransactionTypeCredit:
		return []balanceDelta{{accountID: accountID, amount: amount}}
	case TransactionTypeTransfer:
		if destinationID == nil {
			return nil
		}
		return []balanceDelta{
			{accountID: accountID, amount: -amount},
			{accountID: *destinationID, amount: amount},
		}
	}
	return nil
}

func invert(deltas []balanceDelta) []balanceDelta {
	inverted := make([]balanceDelta, len(deltas))
	for i, delta := range deltas {
		inverted[i] = balanceDelta{accountID: delta.accountID, amount: -delta.amount}
	}
	return inverted
}

// ensureBalanced checks that a transfer's legs cancel out exactly.
func ensureBalanced(deltas []balanceDelta) error {
	var sum int64
	for _, delta := range deltas {
		sum += delta.amount
	}
	if sum != 0 {
		return errors.New("transfer deltas are not balanced")
	}
	return nil
}

// sortedByAccount fixes the row-lock acquisition order so that two operations
// touching the same pair of accounts cannot deadlock each other.
func sortedByAccount(deltas []balanceDelta) []balanceDelta {
	ordered := make([]balanceDelta, len(deltas))
	copy(ordered, deltas)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].accountID < ordered[j].accountID
	})
	return ordered
}
