package handlers

import (
	"context"

	"ledger/internal/services"
	"ledger/internal/store"
)

type AccountService interface {
	Create(ctx context.Context, input services.CreateAccountInput) (store.Account, error)
	Get(ctx context.Context, accountID string) (store.Account, error)
	Update(ctx context.Context, accountID string, input services.UpdateAccountInput) (store.Account, error)
	Delete(ctx context.Context, accountID string) error
	AdjustBalance(ctx context.Context, accountID string, amount int64, direction string) (store.Account, error)
	List(ctx context.Context) ([]store.Account, error)
	ListByType(ctx context.Context, accountType string) ([]store.Account, error)
	TotalBalance(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (services.AccountStatistics, error)
}

type LedgerService interface {
	CreateTransaction(ctx context.Context, input services.CreateTransactionInput) (store.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID string, input services.UpdateTransactionInput) (store.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string) error
	Get(ctx context.Context, transactionID string) (store.Transaction, error)
	List(ctx context.Context, filter store.TransactionFilter) ([]store.Transaction, error)
	ListByAccount(ctx context.Context, accountID string) ([]store.Transaction, error)
	Statistics(ctx context.Context, filter store.TransactionFilter) (services.TransactionStatistics, error)
}
