package store

import (
	"context"
	"time"
)

type AccountStore struct {
	db DB
}

type Account struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type AccountTypeSummary struct {
	Type         string `db:"type"`
	Count        int64  `db:"count"`
	TotalBalance int64  `db:"total_balance"`
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, id, name, accountType string, balance int64) error {
	query := `
		INSERT INTO accounts (id, name, type, balance)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, name, accountType, balance)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, type, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, name, type, balance, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) List(ctx context.Context) ([]Account, error) {
	var rows []Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, type, balance, created_at, updated_at
		FROM accounts
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) ListByType(ctx context.Context, accountType string) ([]Account, error) {
	var rows []Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, type, balance, created_at, updated_at
		FROM accounts
		WHERE type = $1
		ORDER BY name
	`, accountType)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) UpdateDetails(ctx context.Context, tx Execer, accountID, name, accountType string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET name = $1, type = $2, updated_at = NOW()
		WHERE id = $3
	`, name, accountType, accountID)
	return err
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	return err
}

func (s *AccountStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM accounts`)
	return count, err
}

func (s *AccountStore) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(balance), 0) FROM accounts`)
	return total, err
}

func (s *AccountStore) GroupByType(ctx context.Context) ([]AccountTypeSummary, error) {
	var rows []AccountTypeSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT type, COUNT(*) AS count, COALESCE(SUM(balance), 0) AS total_balance
		FROM accounts
		GROUP BY type
		ORDER BY type
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
