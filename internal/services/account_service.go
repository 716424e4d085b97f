package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ledger/internal/apperr"
	"ledger/internal/db"
	"ledger/internal/money"
	"ledger/internal/store"
	"ledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, accountType string, balance int64) error
	GetByID(ctx context.Context, accountID string) (store.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	List(ctx context.Context) ([]store.Account, error)
	ListByType(ctx context.Context, accountType string) ([]store.Account, error)
	UpdateDetails(ctx context.Context, tx store.Execer, accountID, name, accountType string) error
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
	Delete(ctx context.Context, tx store.Execer, accountID string) error
	Count(ctx context.Context) (int64, error)
	TotalBalance(ctx context.Context) (int64, error)
	GroupByType(ctx context.Context) ([]store.AccountTypeSummary, error)
}

type BalanceHub interface {
	BroadcastBalance(accountID string, update websocket.BalanceUpdate)
}

type AccountService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	hub          BalanceHub
}

func NewAccountService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, hub BalanceHub) *AccountService {
	return &AccountService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		hub:          hub,
	}
}

type CreateAccountInput struct {
	Name           string
	Type           string
	InitialBalance int64
}

type UpdateAccountInput struct {
	Name *string
	Type *string
}

type AccountStatistics struct {
	TotalAccounts int64
	TotalBalance  int64
	ByType        []store.AccountTypeSummary
}

func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (store.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return store.Account{}, apperr.New(apperr.KindValidation, "account name is required")
	}
	if !ValidAccountType(input.Type) {
		return store.Account{}, apperr.New(apperr.KindValidation, "invalid account type")
	}
	if input.InitialBalance < 0 {
		return store.Account{}, apperr.New(apperr.KindValidation, "initial balance cannot be negative")
	}
	accountID := uuid.NewString()
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, accountID, name, input.Type, input.InitialBalance); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to create account", err)
		}
		return nil
	})
	if err != nil {
		return store.Account{}, err
	}
	return s.Get(ctx, accountID)
}

func (s *AccountService) Get(ctx context.Context, accountID string) (store.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return store.Account{}, accountLookupError(err)
	}
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, accountID string, input UpdateAccountInput) (store.Account, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return store.Account{}, apperr.New(apperr.KindValidation, "account name is required")
	}
	if input.Type != nil && !ValidAccountType(*input.Type) {
		return store.Account{}, apperr.New(apperr.KindValidation, "invalid account type")
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			return accountLookupError(err)
		}
		name := account.Name
		accountType := account.Type
		if input.Name != nil {
			name = strings.TrimSpace(*input.Name)
		}
		if input.Type != nil {
			accountType = *input.Type
		}
		if err := s.accounts.UpdateDetails(ctx, tx, accountID, name, accountType); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to update account", err)
		}
		return nil
	})
	if err != nil {
		return store.Account{}, err
	}
	return s.Get(ctx, accountID)
}

// Delete refuses to remove an account while any transaction still references
// it as source or destination; the reference check runs before any mutation.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if _, err := s.Get(ctx, accountID); err != nil {
		return err
	}
	references, err := s.transactions.CountByAccount(ctx, accountID)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "unable to check account references", err)
	}
	if references > 0 {
		return apperr.New(apperr.KindConflict, "account has transactions and cannot be deleted")
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Delete(ctx, tx, accountID); err != nil {
			return apperr.Wrap(apperr.KindStorage, "unable to delete account", err)
		}
		return nil
	})
}

// AdjustBalance is the direct credit/debit entry point. It funnels into the
// same applyDelta primitive the ledger engine uses, so every balance change
// in the system is validated in one place under a row lock.
func (s *AccountService) AdjustBalance(ctx context.Context, accountID string, amount int64, direction string) (store.Account, error) {
	if amount <= 0 {
		return store.Account{}, apperr.New(apperr.KindValidation, "amount must be greater than zero")
	}
	delta := balanceDelta{accountID: accountID, amount: amount}
	switch direction {
	case DirectionCredit:
	case DirectionDebit:
		delta.amount = -amount
	default:
		return store.Account{}, apperr.New(apperr.KindValidation, "invalid balance direction")
	}
	var updated store.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := applyDelta(ctx, tx, s.accounts, delta)
		if err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return store.Account{}, err
	}
	s.hub.BroadcastBalance(updated.ID, websocket.BalanceUpdate{
		AccountID: updated.ID,
		Balance:   money.FormatMinor(updated.Balance),
	})
	return updated, nil
}

func (s *AccountService) List(ctx context.Context) ([]store.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "unable to list accounts", err)
	}
	return accounts, nil
}

func (s *AccountService) ListByType(ctx context.Context, accountType string) ([]store.Account, error) {
	if !ValidAccountType(accountType) {
		return nil, apperr.New(apperr.KindValidation, "invalid account type")
	}
	accounts, err := s.accounts.ListByType(ctx, accountType)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "unable to list accounts", err)
	}
	return accounts, nil
}

func (s *AccountService) TotalBalance(ctx context.Context) (int64, error) {
	total, err := s.accounts.TotalBalance(ctx)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "unable to sum balances", err)
	}
	return total, nil
}

func (s *AccountService) Statistics(ctx context.Context) (AccountStatistics, error) {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return AccountStatistics{}, apperr.Wrap(apperr.KindStorage, "unable to count accounts", err)
	}
	total, err := s.accounts.TotalBalance(ctx)
	if err != nil {
		return AccountStatistics{}, apperr.Wrap(apperr.KindStorage, "unable to sum balances", err)
	}
	byType, err := s.accounts.GroupByType(ctx)
	if err != nil {
		return AccountStatistics{}, apperr.Wrap(apperr.KindStorage, "unable to group accounts", err)
	}
	return AccountStatistics{
		TotalAccounts: count,
		TotalBalance:  total,
		ByType:        byType,
	}, nil
}

// applyDelta is the single choke point for balance mutation. The account row
// stays locked until the surrounding transaction commits, and a negative
// resulting balance aborts the whole unit of work.
func applyDelta(ctx context.Context, tx store.Tx, accounts AccountStore, delta balanceDelta) (store.Account, error) {
	account, err := accounts.GetForUpdate(ctx, tx, delta.accountID)
	if err != nil {
		return store.Account{}, accountLookupError(err)
	}
	newBalance := account.Balance + delta.amount
	if newBalance < 0 {
		return store.Account{}, apperr.New(apperr.KindInsufficientFunds, "insufficient funds")
	}
	if err := accounts.UpdateBalance(ctx, tx, delta.accountID, newBalance); err != nil {
		return store.Account{}, apperr.Wrap(apperr.KindStorage, "unable to update balance", err)
	}
	account.Balance = newBalance
	return account, nil
}

func accountLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.New(apperr.KindNotFound, "account not found")
	}
	return apperr.Wrap(apperr.KindStorage, "unable to load account", err)
}
