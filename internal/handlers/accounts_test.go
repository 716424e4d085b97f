package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/apperr"
	"ledger/internal/services"
	"ledger/internal/store"
)

func TestCreateAccount(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		createFn: func(_ context.Context, input services.CreateAccountInput) (store.Account, error) {
			if input.Name != "Main" || input.Type != "checking" || input.InitialBalance != int64(10000) {
				t.Fatalf("unexpected input: %#v", input)
			}
			return store.Account{ID: "acc-1", Name: "Main", Type: "checking", Balance: 10000}, nil
		},
	}, stubLedgerService{})

	body := strings.NewReader(`{"name":"Main","type":"checking","initial_balance":"100.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", body)
	rr := httptest.NewRecorder()
	handler.CreateAccount(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if !payload.Success {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	data := payload.Data.(map[string]any)
	if data["balance"] != "100.00" {
		t.Fatalf("unexpected balance: %#v", data["balance"])
	}
}

func TestCreateAccountBadBalance(t *testing.T) {
	handler := newTestHandler(stubAccountService{}, stubLedgerService{})
	body := strings.NewReader(`{"name":"Main","type":"checking","initial_balance":"1.005"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", body)
	rr := httptest.NewRecorder()
	handler.CreateAccount(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateAccountValidationError(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		createFn: func(context.Context, services.CreateAccountInput) (store.Account, error) {
			return store.Account{}, apperr.New(apperr.KindValidation, "invalid account type")
		},
	}, stubLedgerService{})
	body := strings.NewReader(`{"name":"Main","type":"offshore"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", body)
	rr := httptest.NewRecorder()
	handler.CreateAccount(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if payload.Success || payload.Message != "invalid account type" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		getFn: func(context.Context, string) (store.Account, error) {
			return store.Account{}, apperr.New(apperr.KindNotFound, "account not found")
		},
	}, stubLedgerService{})
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/accounts/missing", nil), "id", "missing")
	rr := httptest.NewRecorder()
	handler.GetAccount(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListAccounts(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		listFn: func(context.Context) ([]store.Account, error) {
			return []store.Account{
				{ID: "acc-1", Name: "A", Type: "checking", Balance: 10000},
				{ID: "acc-2", Name: "B", Type: "savings", Balance: 500},
			}, nil
		},
	}, stubLedgerService{})
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rr := httptest.NewRecorder()
	handler.ListAccounts(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	rows := payload.Data.([]any)
	if len(rows) != 2 {
		t.Fatalf("unexpected rows: %#v", rows)
	}
	if rows[1].(map[string]any)["balance"] != "5.00" {
		t.Fatalf("unexpected balance: %#v", rows[1])
	}
}

func TestDeleteAccountConflict(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		deleteFn: func(context.Context, string) error {
			return apperr.New(apperr.KindConflict, "account has transactions and cannot be deleted")
		},
	}, stubLedgerService{})
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/accounts/acc-1", nil), "id", "acc-1")
	rr := httptest.NewRecorder()
	handler.DeleteAccount(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestAdjustBalance(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		adjustBalanceFn: func(_ context.Context, accountID string, amount int64, direction string) (store.Account, error) {
			if accountID != "acc-1" || amount != int64(4000) || direction != "debit" {
				t.Fatalf("unexpected call: %s %d %s", accountID, amount, direction)
			}
			return store.Account{ID: "acc-1", Balance: 6000}, nil
		},
	}, stubLedgerService{})
	body := strings.NewReader(`{"amount":"40.00","direction":"debit"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/accounts/acc-1/balance", body), "id", "acc-1")
	rr := httptest.NewRecorder()
	handler.AdjustBalance(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if payload.Data.(map[string]any)["balance"] != "60.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestAdjustBalanceInsufficientFunds(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		adjustBalanceFn: func(context.Context, string, int64, string) (store.Account, error) {
			return store.Account{}, apperr.New(apperr.KindInsufficientFunds, "insufficient funds")
		},
	}, stubLedgerService{})
	body := strings.NewReader(`{"amount":"999.00","direction":"debit"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/accounts/acc-1/balance", body), "id", "acc-1")
	rr := httptest.NewRecorder()
	handler.AdjustBalance(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestAdjustBalanceRejectsZeroAmount(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		adjustBalanceFn: func(context.Context, string, int64, string) (store.Account, error) {
			t.Fatal("service should not be called")
			return store.Account{}, nil
		},
	}, stubLedgerService{})
	body := strings.NewReader(`{"amount":"0.00","direction":"debit"}`)
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/accounts/acc-1/balance", body), "id", "acc-1")
	rr := httptest.NewRecorder()
	handler.AdjustBalance(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestAccountStatistics(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		statisticsFn: func(context.Context) (services.AccountStatistics, error) {
			return services.AccountStatistics{
				TotalAccounts: 3,
				TotalBalance:  17500,
				ByType: []store.AccountTypeSummary{
					{Type: "checking", Count: 2, TotalBalance: 15000},
					{Type: "savings", Count: 1, TotalBalance: 2500},
				},
			}, nil
		},
	}, stubLedgerService{})
	req := httptest.NewRequest(http.MethodGet, "/api/accounts/statistics", nil)
	rr := httptest.NewRecorder()
	handler.AccountStatistics(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	data := decodeResponse(t, rr).Data.(map[string]any)
	if data["total_balance"] != "175.00" {
		t.Fatalf("unexpected total: %#v", data)
	}
	if len(data["by_type"].([]any)) != 2 {
		t.Fatalf("unexpected groups: %#v", data["by_type"])
	}
}

func TestStorageErrorHidesDetail(t *testing.T) {
	handler := newTestHandler(stubAccountService{
		listFn: func(context.Context) ([]store.Account, error) {
			return nil, apperr.New(apperr.KindStorage, "dial tcp 10.0.0.5: connection refused")
		},
	}, stubLedgerService{})
	req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
	rr := httptest.NewRecorder()
	handler.ListAccounts(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	payload := decodeResponse(t, rr)
	if payload.Message != "internal server error" {
		t.Fatalf("storage detail leaked: %#v", payload)
	}
}
