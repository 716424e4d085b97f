package services

import (
	"context"
	"testing"
	"time"

	"ledger/internal/apperr"
	"ledger/internal/store"
)

func newLedgerService(accounts *fakeAccountStore, transactions *fakeTransactionStore) *LedgerService {
	return NewLedgerService(&fakeTxRunner{}, accounts, transactions, &stubHub{})
}

func TestCreateTransactionValidation(t *testing.T) {
	service := newLedgerService(newFakeAccountStore(), newFakeTransactionStore())
	cases := []struct {
		name  string
		input CreateTransactionInput
	}{
		{"invalid type", CreateTransactionInput{Type: "wire", Amount: 100, AccountID: "acc-1"}},
		{"zero amount", CreateTransactionInput{Type: TransactionTypeDebit, Amount: 0, AccountID: "acc-1"}},
		{"missing source", CreateTransactionInput{Type: TransactionTypeDebit, Amount: 100}},
		{"transfer without destination", CreateTransactionInput{Type: TransactionTypeTransfer, Amount: 100, AccountID: "acc-1"}},
		{"transfer to itself", CreateTransactionInput{Type: TransactionTypeTransfer, Amount: 100, AccountID: "acc-1", DestinationAccountID: stringPtr("acc-1")}},
	}
	for _, tc := range cases {
		if _, err := service.CreateTransaction(context.Background(), tc.input); !apperr.IsKind(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateTransactionUnknownAccount(t *testing.T) {
	service := newLedgerService(newFakeAccountStore(), newFakeTransactionStore())
	_, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type: TransactionTypeCredit, Amount: 100, AccountID: "missing",
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateDebitTransaction(t *testing.T) {
	accounts := newFakeAccountStore(store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 10000})
	transactions := newFakeTransactionStore()
	service := newLedgerService(accounts, transactions)

	transaction, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type:        TransactionTypeDebit,
		Amount:      4000,
		Description: "groceries",
		AccountID:   "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.Type != TransactionTypeDebit || transaction.Amount != 4000 {
		t.Fatalf("unexpected transaction: %#v", transaction)
	}
	if transaction.TransactionDate.IsZero() {
		t.Fatal("expected transaction date to default")
	}
	if got := accounts.balance("acc-1"); got != 6000 {
		t.Fatalf("expected balance 6000, got %d", got)
	}
}

func TestCreateDebitInsufficientFundsLeavesNoRecord(t *testing.T) {
	accounts := newFakeAccountStore(store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 1000})
	transactions := newFakeTransactionStore()
	service := newLedgerService(accounts, transactions)

	_, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type: TransactionTypeDebit, Amount: 2000, AccountID: "acc-1",
	})
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if rows, _ := transactions.List(context.Background(), store.TransactionFilter{}); len(rows) != 0 {
		t.Fatalf("expected no transaction rows, got %d", len(rows))
	}
}

func TestCreateTransfer(t *testing.T) {
	// A has 100.00, B has 0.00; transfer 30.00 moves exactly that much.
	accounts := newFakeAccountStore(
		store.Account{ID: "acc-a", Name: "A", Type: AccountTypeChecking, Balance: 10000},
		store.Account{ID: "acc-b", Name: "B", Type: AccountTypeSavings, Balance: 0},
	)
	transactions := newFakeTransactionStore()
	service := newLedgerService(accounts, transactions)

	transaction, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type:                 TransactionTypeTransfer,
		Amount:               3000,
		AccountID:            "acc-a",
		DestinationAccountID: stringPtr("acc-b"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.DestinationAccountID == nil || *transaction.DestinationAccountID != "acc-b" {
		t.Fatalf("unexpected transaction: %#v", transaction)
	}
	if got := accounts.balance("acc-a"); got != 7000 {
		t.Fatalf("expected source balance 7000, got %d", got)
	}
	if got := accounts.balance("acc-b"); got != 3000 {
		t.Fatalf("expected destination balance 3000, got %d", got)
	}
}

func TestCreateCreditIgnoresDestination(t *testing.T) {
	accounts := newFakeAccountStore(
		store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 0},
		store.Account{ID: "acc-2", Name: "B", Type: AccountTypeChecking, Balance: 0},
	)
	service := newLedgerService(accounts, newFakeTransactionStore())
	transaction, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type:                 TransactionTypeCredit,
		Amount:               100,
		AccountID:            "acc-1",
		DestinationAccountID: stringPtr("acc-2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.DestinationAccountID != nil {
		t.Fatalf("destination should not be stored for credits: %#v", transaction)
	}
	if got := accounts.balance("acc-2"); got != 0 {
		t.Fatalf("destination balance should be untouched, got %d", got)
	}
}

func TestDeleteTransactionRestoresBalances(t *testing.T) {
	cases := []struct {
		name        string
		input       CreateTransactionInput
		destBalance int64
	}{
		{"debit", CreateTransactionInput{Type: TransactionTypeDebit, Amount: 2500, AccountID: "acc-a"}, 5000},
		{"credit", CreateTransactionInput{Type: TransactionTypeCredit, Amount: 2500, AccountID: "acc-a"}, 5000},
		{"transfer", CreateTransactionInput{Type: TransactionTypeTransfer, Amount: 2500, AccountID: "acc-a", DestinationAccountID: stringPtr("acc-b")}, 5000},
	}
	for _, tc := range cases {
		accounts := newFakeAccountStore(
			store.Account{ID: "acc-a", Name: "A", Type: AccountTypeChecking, Balance: 10000},
			store.Account{ID: "acc-b", Name: "B", Type: AccountTypeSavings, Balance: tc.destBalance},
		)
		transactions := newFakeTransactionStore()
		service := newLedgerService(accounts, transactions)

		created, err := service.CreateTransaction(context.Background(), tc.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if err := service.DeleteTransaction(context.Background(), created.ID); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got := accounts.balance("acc-a"); got != 10000 {
			t.Fatalf("%s: expected source balance restored to 10000, got %d", tc.name, got)
		}
		if got := accounts.balance("acc-b"); got != tc.destBalance {
			t.Fatalf("%s: expected destination balance restored to %d, got %d", tc.name, tc.destBalance, got)
		}
		if _, err := service.Get(context.Background(), created.ID); !apperr.IsKind(err, apperr.KindNotFound) {
			t.Fatalf("%s: expected transaction to be gone, got %v", tc.name, err)
		}
	}
}

func TestUpdateTransactionDebitToCredit(t *testing.T) {
	// Debit 50.00 on a 100.00 account leaves 50.00; flipping it to a credit
	// must first restore 100.00 and then add 50.00.
	accounts := newFakeAccountStore(store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 10000})
	transactions := newFakeTransactionStore()
	service := newLedgerService(accounts, transactions)

	created, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type: TransactionTypeDebit, Amount: 5000, AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := accounts.balance("acc-1"); got != 5000 {
		t.Fatalf("expected balance 5000 after debit, got %d", got)
	}

	updated, err := service.UpdateTransaction(context.Background(), created.ID, UpdateTransactionInput{
		Type: stringPtr(TransactionTypeCredit),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Type != TransactionTypeCredit {
		t.Fatalf("unexpected transaction: %#v", updated)
	}
	if got := accounts.balance("acc-1"); got != 15000 {
		t.Fatalf("expected balance 15000 after flip, got %d", got)
	}
}

func TestUpdateTransactionAmount(t *testing.T) {
	accounts := newFakeAccountStore(store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 10000})
	service := newLedgerService(accounts, newFakeTransactionStore())

	created, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type: TransactionTypeDebit, Amount: 4000, AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.UpdateTransaction(context.Background(), created.ID, UpdateTransactionInput{Amount: int64Ptr(1000)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := accounts.balance("acc-1"); got != 9000 {
		t.Fatalf("expected balance 9000, got %d", got)
	}
}

func TestUpdateTransactionToTransferWithoutDestination(t *testing.T) {
	accounts := newFakeAccountStore(store.Account{ID: "acc-1", Name: "A", Type: AccountTypeChecking, Balance: 10000})
	service := newLedgerService(accounts, newFakeTransactionStore())

	created, err := service.CreateTransaction(context.Background(), CreateTransactionInput{
		Type: TransactionTypeDebit, Amount: 1000, AccountID: "acc-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = service.UpdateTransaction(context.Background(), created.ID, UpdateTransactionInput{
		Type: stringPtr(TransactionTypeTransfer),
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	// The failed update must not have moved any money.
	if got := accounts.balance("acc-1"); got != 9000 {
		t.Fatalf("expected balance unchanged at 9000, got %d", got)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	service := newLedgerService(newFakeAccountStore(), newFakeTransactionStore())
	if _, err := service.UpdateTransaction(context.Background(), "missing", UpdateTransactionInput{}); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := service.DeleteTransaction(context.Background(), "missing"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByAccountMatchesBothSides(t *testing.T) {
	transactions := newFakeTransactionStore(
		store.Transaction{ID: "tx-1", Type: TransactionTypeDebit, Amount: 100, AccountID: "acc-1", TransactionDate: time.Now().Add(-time.Hour)},
		store.Transaction{ID: "tx-2", Type: TransactionTypeTransfer, Amount: 200, AccountID: "acc-2", DestinationAccountID: stringPtr("acc-1"), TransactionDate: time.Now()},
		store.Transaction{ID: "tx-3", Type: TransactionTypeCredit, Amount: 300, AccountID: "acc-3", TransactionDate: time.Now()},
	)
	service := newLedgerService(newFakeAccountStore(), transactions)
	rows, err := service.ListByAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "tx-2" || rows[1].ID != "tx-1" {
		t.Fatalf("expected newest first, got %#v", rows)
	}
}

func TestTransactionStatistics(t *testing.T) {
	now := time.Now()
	transactions := newFakeTransactionStore(
		store.Transaction{ID: "tx-1", Type: TransactionTypeDebit, Amount: 1000, AccountID: "acc-1", TransactionDate: now},
		store.Transaction{ID: "tx-2", Type: TransactionTypeDebit, Amount: 500, AccountID: "acc-1", TransactionDate: now},
		store.Transaction{ID: "tx-3", Type: TransactionTypeCredit, Amount: 2000, AccountID: "acc-2", TransactionDate: now},
	)
	service := newLedgerService(newFakeAccountStore(), transactions)

	stats, err := service.Statistics(context.Background(), store.TransactionFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTransactions != 3 || stats.TotalAmount != 3500 {
		t.Fatalf("unexpected totals: %#v", stats)
	}

	stats, err = service.Statistics(context.Background(), store.TransactionFilter{AccountID: "acc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTransactions != 2 || stats.TotalAmount != 1500 {
		t.Fatalf("unexpected filtered totals: %#v", stats)
	}
}
