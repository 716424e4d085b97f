package store

import (
	"context"
	"strconv"
	"time"
)

type TransactionStore struct {
	db DB
}

type Transaction struct {
	ID                   string    `db:"id"`
	Type                 string    `db:"type"`
	Amount               int64     `db:"amount"`
	Description          string    `db:"description"`
	TransactionDate      time.Time `db:"transaction_date"`
	AccountID            string    `db:"account_id"`
	DestinationAccountID *string   `db:"destination_account_id"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

type TransactionInput struct {
	ID                   string
	Type                 string
	Amount               int64
	Description          string
	TransactionDate      time.Time
	AccountID            string
	DestinationAccountID *string
}

// TransactionFilter narrows list and aggregate queries. AccountID matches the
// source account only; the date range is inclusive on both ends.
type TransactionFilter struct {
	AccountID string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
}

type TransactionTypeSummary struct {
	Type        string `db:"type"`
	Count       int64  `db:"count"`
	TotalAmount int64  `db:"total_amount"`
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, type, amount, description, transaction_date, account_id, destination_account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Type, input.Amount, input.Description,
		input.TransactionDate, input.AccountID, input.DestinationAccountID,
	)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (Transaction, error) {
	var row Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, type, amount, description, transaction_date, account_id, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) GetForUpdate(ctx context.Context, tx Getter, transactionID string) (Transaction, error) {
	var row Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT id, type, amount, description, transaction_date, account_id, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) Update(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET type = $1, amount = $2, description = $3, transaction_date = $4, updated_at = NOW()
		WHERE id = $5
	`, input.Type, input.Amount, input.Description, input.TransactionDate, input.ID)
	return err
}

func (s *TransactionStore) Delete(ctx context.Context, tx Execer, transactionID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	return err
}

func (s *TransactionStore) List(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := `
		SELECT id, type, amount, description, transaction_date, account_id, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE 1=1
	`
	clauses, args := filterClauses(filter)
	query += clauses + " ORDER BY transaction_date DESC"
	var rows []Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByAccount returns transactions touching the account as either source or
// destination, newest first.
func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, type, amount, description, transaction_date, account_id, destination_account_id, created_at, updated_at
		FROM transactions
		WHERE account_id = $1 OR destination_account_id = $1
		ORDER BY transaction_date DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM transactions
		WHERE account_id = $1 OR destination_account_id = $1
	`, accountID)
	return count, err
}

func (s *TransactionStore) GroupByType(ctx context.Context, filter TransactionFilter) ([]TransactionTypeSummary, error) {
	query := `
		SELECT type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
		FROM transactions
		WHERE 1=1
	`
	clauses, args := filterClauses(filter)
	query += clauses + " GROUP BY type ORDER BY type"
	var rows []TransactionTypeSummary
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func filterClauses(filter TransactionFilter) (string, []any) {
	var clauses string
	var args []any
	param := 1
	if filter.AccountID != "" {
		clauses += " AND account_id = $" + strconv.Itoa(param)
		args = append(args, filter.AccountID)
		param++
	}
	if filter.Type != "" {
		clauses += " AND type = $" + strconv.Itoa(param)
		args = append(args, filter.Type)
		param++
	}
	if filter.StartDate != nil {
		clauses += " AND transaction_date >= $" + strconv.Itoa(param)
		args = append(args, *filter.StartDate)
		param++
	}
	if filter.EndDate != nil {
		clauses += " AND transaction_date <= $" + strconv.Itoa(param)
		args = append(args, *filter.EndDate)
		param++
	}
	return clauses, args
}
