package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledger/internal/config"
	"ledger/internal/services"
	"ledger/internal/store"
	"ledger/internal/websocket"

	"github.com/go-chi/chi/v5"
)

type stubAccountService struct {
	createFn        func(ctx context.Context, input services.CreateAccountInput) (store.Account, error)
	getFn           func(ctx context.Context, accountID string) (store.Account, error)
	updateFn        func(ctx context.Context, accountID string, input services.UpdateAccountInput) (store.Account, error)
	deleteFn        func(ctx context.Context, accountID string) error
	adjustBalanceFn func(ctx context.Context, accountID string, amount int64, direction string) (store.Account, error)
	listFn          func(ctx context.Context) ([]store.Account, error)
	listByTypeFn    func(ctx context.Context, accountType string) ([]store.Account, error)
	totalBalanceFn  func(ctx context.Context) (int64, error)
	statisticsFn    func(ctx context.Context) (services.AccountStatistics, error)
}

func (s stubAccountService) Create(ctx context.Context, input services.CreateAccountInput) (store.Account, error) {
	if s.createFn == nil {
		return store.Account{}, nil
	}
	return s.createFn(ctx, input)
}

func (s stubAccountService) Get(ctx context.Context, accountID string) (store.Account, error) {
	if s.getFn == nil {
		return store.Account{}, nil
	}
	return s.getFn(ctx, accountID)
}

func (s stubAccountService) Update(ctx context.Context, accountID string, input services.UpdateAccountInput) (store.Account, error) {
	if s.updateFn == nil {
		return store.Account{}, nil
	}
	return s.updateFn(ctx, accountID, input)
}

func (s stubAccountService) Delete(ctx context.Context, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, accountID)
}

func (s stubAccountService) AdjustBalance(ctx context.Context, accountID string, amount int64, direction string) (store.Account, error) {
	if s.adjustBalanceFn == nil {
		return store.Account{}, nil
	}
	return s.adjustBalanceFn(ctx, accountID, amount, direction)
}

func (s stubAccountService) List(ctx context.Context) ([]store.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubAccountService) ListByType(ctx context.Context, accountType string) ([]store.Account, error) {
	if s.listByTypeFn == nil {
		return nil, nil
	}
	return s.listByTypeFn(ctx, accountType)
}

func (s stubAccountService) TotalBalance(ctx context.Context) (int64, error) {
	if s.totalBalanceFn == nil {
		return 0, nil
	}
	return s.totalBalanceFn(ctx)
}

func (s stubAccountService) Statistics(ctx context.Context) (services.AccountStatistics, error) {
	if s.statisticsFn == nil {
		return services.AccountStatistics{}, nil
	}
	return s.statisticsFn(ctx)
}

type stubLedgerService struct {
	createFn        func(ctx context.Context, input services.CreateTransactionInput) (store.Transaction, error)
	updateFn        func(ctx context.Context, transactionID string, input services.UpdateTransactionInput) (store.Transaction, error)
	deleteFn        func(ctx context.Context, transactionID string) error
	getFn           func(ctx context.Context, transactionID string) (store.Transaction, error)
	listFn          func(ctx context.Context, filter store.TransactionFilter) ([]store.Transaction, error)
	listByAccountFn func(ctx context.Context, accountID string) ([]store.Transaction, error)
	statisticsFn    func(ctx context.Context, filter store.TransactionFilter) (services.TransactionStatistics, error)
}

func (s stubLedgerService) CreateTransaction(ctx context.Context, input services.CreateTransactionInput) (store.Transaction, error) {
	if s.createFn == nil {
		return store.Transaction{}, nil
	}
	return s.createFn(ctx, input)
}

func (s stubLedgerService) UpdateTransaction(ctx context.Context, transactionID string, input services.UpdateTransactionInput) (store.Transaction, error) {
	if s.updateFn == nil {
		return store.Transaction{}, nil
	}
	return s.updateFn(ctx, transactionID, input)
}

func (s stubLedgerService) DeleteTransaction(ctx context.Context, transactionID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, transactionID)
}

func (s stubLedgerService) Get(ctx context.Context, transactionID string) (store.Transaction, error) {
	if s.getFn == nil {
		return store.Transaction{}, nil
	}
	return s.getFn(ctx, transactionID)
}

func (s stubLedgerService) List(ctx context.Context, filter store.TransactionFilter) ([]store.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, filter)
}

func (s stubLedgerService) ListByAccount(ctx context.Context, accountID string) ([]store.Transaction, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountID)
}

func (s stubLedgerService) Statistics(ctx context.Context, filter store.TransactionFilter) (services.TransactionStatistics, error) {
	if s.statisticsFn == nil {
		return services.TransactionStatistics{}, nil
	}
	return s.statisticsFn(ctx, filter)
}

func newTestHandler(accounts AccountService, ledger LedgerService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		APIKey:         "test-api-key",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(cfg, accounts, ledger, websocket.NewHub())
}

// withURLParam attaches a chi route parameter so handlers can be exercised
// without the full router.
func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var payload apiResponse
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}
