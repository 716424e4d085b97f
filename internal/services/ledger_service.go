package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ledger/internal/apperr"
	"ledger/internal/db"
	"ledger/internal/money"
	"ledger/internal/store"
	"ledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetByID(ctx context.Context, transactionID string) (store.Transaction, error)
	GetForUpdate(ctx context.Context, tx store.Getter, transactionID string) (store.Transaction, error)
	Update(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	Delete(ctx context.Context, tx store.Execer, transactionID string) error
	List(ctx context.Context, filter store.TransactionFilter) ([]store.Transaction, error)
	ListByAccount(ctx context.Context, accountID string) ([]store.Transaction, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
	GroupByType(ctx context.Context, filter store.TransactionFilter) ([]store.TransactionTypeSummary, error)
}

// LedgerService keeps stored transactions and account balances consistent.
// Each lifecycle operation runs its balance effect and its row write inside
// one serializable unit of work, so a failed leg rolls back everything.
type LedgerService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	hub          BalanceHub
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		hub:          hub,
	}
}

type CreateTransactionInput struct {
	Type                 string
	Amount               int64
	Description          string
	AccountID            string
	DestinationAccountID *string
	TransactionDate      *time.Time
}

type UpdateTransactionInput struct {
	Type            *string
	Amount          *int64
	Description     *string
	TransactionDate *time.Time
}

type TransactionStatistics struct {
	TotalTransactions int64
	TotalAmount       int64
	ByType            []store.TransactionTypeSummary
}

func (s *LedgerService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (store.Transaction, error) {
	if !ValidTransactionType(input.Type) {
		return store.Transaction{}, apperr.New(apperr.KindValidation, "invalid transaction type")
	}
	if input.Amount <= 0 {
		return store.Transaction{}, apperr.New(apperr.KindValidation, "amount must be greater than zero")
	}
	if input.AccountID == "" {
		return store.Transaction{}, apperr.New(apperr.KindValidation, "source account is required")
	}
	destination := input.DestinationAccountID
	if input.Type == TransactionTypeTransfer {
		if destination == nil || *destination == "" {
			return store.Transaction{}, apperr.New(apperr.KindValidation, "destination account is required for transfers")
		}
		if *destination == input.AccountID {
			return store.Transaction{}, apperr.New(apperr.KindValidation, "cannot transfer to the same account")
		}
	} else {
		// Destination is meaningless outside transfers; never store one.
		destination = nil
	}
	transactionDate := time.Now().UTC()
	if input.TransactionDate != nil {
		transactionDate = input.TransactionDate.UTC()
	}

	transactionID := uuid.NewString()
	var touched []store.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		touched = touched[:0]
		deltas := effectOf(input.Type, input.Amount, input.AccountID, destination)
		if input.Type == TransactionTypeTransfer {
			if err := ensureBalanced(deltas); err != nil {
				return apperr.Wrap(apperr.KindValidation, "invalid transfer", err)
			}
		}
		accounts, err := s.applyDeltas(ctx, tx, deltas)
		if err != nil {
			return err
		}
		touched = accounts
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:                   transactionID,
			Type:                 input.Type,
			Amount:               input.Amount,
			Description:          input.Description,
			TransactionDate:      transactionDate,
			AccountID:            input.AccountID,
			DestinationAccountID: destination,
		}); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to create transaction", err)
		}
		return nil
	})
	if err != nil {
		return store.Transaction{}, err
	}
	s.broadcast(touched)
	return s.Get(ctx, transactionID)
}

// UpdateTransaction fully reverses the stored balance effect before applying
// the edited one. Reversal plus fresh application handles amount and type
// changes uniformly, including debit/credit flips.
func (s *LedgerService) UpdateTransaction(ctx context.Context, transactionID string, input UpdateTransactionInput) (store.Transaction, error) {
	if input.Type != nil && !ValidTransactionType(*input.Type) {
		return store.Transaction{}, apperr.New(apperr.KindValidation, "invalid transaction type")
	}
	if input.Amount != nil && *input.Amount <= 0 {
		return store.Transaction{}, apperr.New(apperr.KindValidation, "amount must be greater than zero")
	}
	var touched []store.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		touched = touched[:0]
		existing, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return transactionLookupError(err)
		}
		updated := existing
		if input.Type != nil {
			updated.Type = *input.Type
		}
		if input.Amount != nil {
			updated.Amount = *input.Amount
		}
		if input.Description != nil {
			updated.Description = *input.Description
		}
		if input.TransactionDate != nil {
			updated.TransactionDate = input.TransactionDate.UTC()
		}
		if updated.Type == TransactionTypeTransfer && updated.DestinationAccountID == nil {
			return apperr.New(apperr.KindValidation, "destination account is required for transfers")
		}
		reversal := invert(effectOf(existing.Type, existing.Amount, existing.AccountID, existing.DestinationAccountID))
		reversed, err := s.applyDeltas(ctx, tx, reversal)
		if err != nil {
			return err
		}
		applied, err := s.applyDeltas(ctx, tx, effectOf(updated.Type, updated.Amount, updated.AccountID, updated.DestinationAccountID))
		if err != nil {
			return err
		}
		touched = append(reversed, applied...)
		if err := s.transactions.Update(ctx, tx, store.TransactionInput{
			ID:              updated.ID,
			Type:            updated.Type,
			Amount:          updated.Amount,
			Description:     updated.Description,
			TransactionDate: updated.TransactionDate,
		}); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to update transaction", err)
		}
		return nil
	})
	if err != nil {
		return store.Transaction{}, err
	}
	s.broadcast(touched)
	return s.Get(ctx, transactionID)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	var touched []store.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		touched = touched[:0]
		existing, err := s.transactions.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return transactionLookupError(err)
		}
		reversal := invert(effectOf(existing.Type, existing.Amount, existing.AccountID, existing.DestinationAccountID))
		accounts, err := s.applyDeltas(ctx, tx, reversal)
		if err != nil {
			return err
		}
		touched = accounts
		if err := s.transactions.Delete(ctx, tx, transactionID); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to delete transaction", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.broadcast(touched)
	return nil
}

func (s *LedgerService) Get(ctx context.Context, transactionID string) (store.Transaction, error) {
	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return store.Transaction{}, transactionLookupError(err)
	}
	return transaction, nil
}

func (s *LedgerService) List(ctx context.Context, filter store.TransactionFilter) ([]store.Transaction, error) {
	transactions, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "unable to list transactions", err)
	}
	return transactions, nil
}

func (s *LedgerService) ListByAccount(ctx context.Context, accountID string) ([]store.Transaction, error) {
	transactions, err := s.transactions.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "unable to list transactions", err)
	}
	return transactions, nil
}

func (s *LedgerService) Statistics(ctx context.Context, filter store.TransactionFilter) (TransactionStatistics, error) {
	byType, err := s.transactions.GroupByType(ctx, filter)
	if err != nil {
		return TransactionStatistics{}, apperr.Wrap(apperr.KindStorage, "unable to group transactions", err)
	}
	stats := TransactionStatistics{ByType: byType}
	for _, summary := range byType {
		stats.TotalTransactions += summary.Count
		stats.TotalAmount += summary.TotalAmount
	}
	return stats, nil
}

// applyDeltas walks the effect in account-id order so row locks are always
// acquired in the same order regardless of transfer direction.
func (s *LedgerService) applyDeltas(ctx context.Context, tx store.Tx, deltas []balanceDelta) ([]store.Account, error) {
	accounts := make([]store.Account, 0, len(deltas))
	for _, delta := range sortedByAccount(deltas) {
		account, err := applyDelta(ctx, tx, s.accounts, delta)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *LedgerService) broadcast(accounts []store.Account) {
	// Later entries win when the same account appears twice (reversal then
	// re-application during an update).
	latest := make(map[string]int64, len(accounts))
	for _, account := range accounts {
		latest[account.ID] = account.Balance
	}
	for accountID, balance := range latest {
		s.hub.BroadcastBalance(accountID, websocket.BalanceUpdate{
			AccountID: accountID,
			Balance:   money.FormatMinor(balance),
		})
	}
}

func transactionLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, "transaction not found")
	}
	return apperr.Wrap(apperr.KindStorage, "unable to load transaction", err)
}
