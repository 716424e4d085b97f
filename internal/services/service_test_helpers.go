package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"ledger/internal/store"
	"ledger/internal/websocket"

	"github.com/jmoiron/sqlx"
)

// fakeTxRunner serializes units of work with a mutex, standing in for the
// serializable isolation the real runner provides.
type fakeTxRunner struct {
	mu  sync.Mutex
	err error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(nil)
}

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]store.Account
}

func newFakeAccountStore(accounts ...store.Account) *fakeAccountStore {
	f := &fakeAccountStore{accounts: make(map[string]store.Account)}
	for _, account := range accounts {
		f.accounts[account.ID] = account
	}
	return f
}

func (f *fakeAccountStore) get(accountID string) (store.Account, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return store.Account{}, sql.ErrNoRows
	}
	return account, nil
}

func (f *fakeAccountStore) Create(_ context.Context, _ store.Execer, id, name, accountType string, balance int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id] = store.Account{ID: id, Name: name, Type: accountType, Balance: balance}
	return nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, accountID string) (store.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(accountID)
}

func (f *fakeAccountStore) GetForUpdate(_ context.Context, _ store.Getter, accountID string) (store.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(accountID)
}

func (f *fakeAccountStore) List(_ context.Context) ([]store.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	accounts := make([]store.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (f *fakeAccountStore) ListByType(_ context.Context, accountType string) ([]store.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var accounts []store.Account
	for _, account := range f.accounts {
		if account.Type == accountType {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (f *fakeAccountStore) UpdateDetails(_ context.Context, _ store.Execer, accountID, name, accountType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, err := f.get(accountID)
	if err != nil {
		return err
	}
	account.Name = name
	account.Type = accountType
	f.accounts[accountID] = account
	return nil
}

func (f *fakeAccountStore) UpdateBalance(_ context.Context, _ store.Execer, accountID string, balance int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, err := f.get(accountID)
	if err != nil {
		return err
	}
	account.Balance = balance
	f.accounts[accountID] = account
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, _ store.Execer, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, accountID)
	return nil
}

func (f *fakeAccountStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.accounts)), nil
}

func (f *fakeAccountStore) TotalBalance(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, account := range f.accounts {
		total += account.Balance
	}
	return total, nil
}

func (f *fakeAccountStore) GroupByType(_ context.Context) ([]store.AccountTypeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grouped := make(map[string]*store.AccountTypeSummary)
	for _, account := range f.accounts {
		summary, ok := grouped[account.Type]
		if !ok {
			summary = &store.AccountTypeSummary{Type: account.Type}
			grouped[account.Type] = summary
		}
		summary.Count++
		summary.TotalBalance += account.Balance
	}
	summaries := make([]store.AccountTypeSummary, 0, len(grouped))
	for _, summary := range grouped {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Type < summaries[j].Type })
	return summaries, nil
}

func (f *fakeAccountStore) balance(accountID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Balance
}

type fakeTransactionStore struct {
	mu           sync.Mutex
	transactions map[string]store.Transaction
}

func newFakeTransactionStore(transactions ...store.Transaction) *fakeTransactionStore {
	f := &fakeTransactionStore{transactions: make(map[string]store.Transaction)}
	for _, transaction := range transactions {
		f.transactions[transaction.ID] = transaction
	}
	return f
}

func (f *fakeTransactionStore) get(transactionID string) (store.Transaction, error) {
	transaction, ok := f.transactions[transactionID]
	if !ok {
		return store.Transaction{}, sql.ErrNoRows
	}
	return transaction, nil
}

func (f *fakeTransactionStore) Create(_ context.Context, _ store.Execer, input store.TransactionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transactions[input.ID] = store.Transaction{
		ID:                   input.ID,
		Type:                 input.Type,
		Amount:               input.Amount,
		Description:          input.Description,
		TransactionDate:      input.TransactionDate,
		AccountID:            input.AccountID,
		DestinationAccountID: input.DestinationAccountID,
	}
	return nil
}

func (f *fakeTransactionStore) GetByID(_ context.Context, transactionID string) (store.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(transactionID)
}

func (f *fakeTransactionStore) GetForUpdate(_ context.Context, _ store.Getter, transactionID string) (store.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(transactionID)
}

func (f *fakeTransactionStore) Update(_ context.Context, _ store.Execer, input store.TransactionInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, err := f.get(input.ID)
	if err != nil {
		return err
	}
	existing.Type = input.Type
	existing.Amount = input.Amount
	existing.Description = input.Description
	existing.TransactionDate = input.TransactionDate
	f.transactions[input.ID] = existing
	return nil
}

func (f *fakeTransactionStore) Delete(_ context.Context, _ store.Execer, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.transactions, transactionID)
	return nil
}

func (f *fakeTransactionStore) List(_ context.Context, filter store.TransactionFilter) ([]store.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []store.Transaction
	for _, transaction := range f.transactions {
		if matchesFilter(transaction, filter) {
			rows = append(rows, transaction)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TransactionDate.After(rows[j].TransactionDate) })
	return rows, nil
}

func (f *fakeTransactionStore) ListByAccount(_ context.Context, accountID string) ([]store.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []store.Transaction
	for _, transaction := range f.transactions {
		if references(transaction, accountID) {
			rows = append(rows, transaction)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TransactionDate.After(rows[j].TransactionDate) })
	return rows, nil
}

func (f *fakeTransactionStore) CountByAccount(_ context.Context, accountID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, transaction := range f.transactions {
		if references(transaction, accountID) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTransactionStore) GroupByType(_ context.Context, filter store.TransactionFilter) ([]store.TransactionTypeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grouped := make(map[string]*store.TransactionTypeSummary)
	for _, transaction := range f.transactions {
		if !matchesFilter(transaction, filter) {
			continue
		}
		summary, ok := grouped[transaction.Type]
		if !ok {
			summary = &store.TransactionTypeSummary{Type: transaction.Type}
			grouped[transaction.Type] = summary
		}
		summary.Count++
		summary.TotalAmount += transaction.Amount
	}
	summaries := make([]store.TransactionTypeSummary, 0, len(grouped))
	for _, summary := range grouped {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Type < summaries[j].Type })
	return summaries, nil
}

func matchesFilter(transaction store.Transaction, filter store.TransactionFilter) bool {
	if filter.AccountID != "" && transaction.AccountID != filter.AccountID {
		return false
	}
	if filter.Type != "" && transaction.Type != filter.Type {
		return false
	}
	if filter.StartDate != nil && transaction.TransactionDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && transaction.TransactionDate.After(*filter.EndDate) {
		return false
	}
	return true
}

func references(transaction store.Transaction, accountID string) bool {
	if transaction.AccountID == accountID {
		return true
	}
	return transaction.DestinationAccountID != nil && *transaction.DestinationAccountID == accountID
}

type stubHub struct {
	mu      sync.Mutex
	updates []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
}

func stringPtr(value string) *string {
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}
