package handlers

import (
	"encoding/json"
	"net/http"

	"ledger/internal/apperr"
	"ledger/internal/config"
	"ledger/internal/money"
	"ledger/internal/store"
	"ledger/internal/websocket"
)

type Handler struct {
	cfg      config.Config
	accounts AccountService
	ledger   LedgerService
	hub      *websocket.Hub
}

func New(cfg config.Config, accounts AccountService, ledger LedgerService, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:      cfg,
		accounts: accounts,
		ledger:   ledger,
		hub:      hub,
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, apiResponse{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, apiResponse{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, apiResponse{Success: false, Message: message})
}

// respondServiceError maps the core's error kinds to transport codes. The
// message travels as-is; classification never depends on it.
func respondServiceError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		respondError(w, http.StatusBadRequest, err.Error())
	case apperr.KindNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	case apperr.KindConflict:
		respondError(w, http.StatusConflict, err.Error())
	case apperr.KindInsufficientFunds:
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func accountJSON(account store.Account) map[string]any {
	return map[string]any{
		"id":         account.ID,
		"name":       account.Name,
		"type":       account.Type,
		"balance":    money.FormatMinor(account.Balance),
		"created_at": account.CreatedAt,
		"updated_at": account.UpdatedAt,
	}
}

func accountsJSON(accounts []store.Account) []map[string]any {
	payload := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		payload = append(payload, accountJSON(account))
	}
	return payload
}

func transactionJSON(transaction store.Transaction) map[string]any {
	payload := map[string]any{
		"id":               transaction.ID,
		"type":             transaction.Type,
		"amount":           money.FormatMinor(transaction.Amount),
		"description":      transaction.Description,
		"transaction_date": transaction.TransactionDate,
		"account_id":       transaction.AccountID,
		"created_at":       transaction.CreatedAt,
		"updated_at":       transaction.UpdatedAt,
	}
	if transaction.DestinationAccountID != nil {
		payload["destination_account_id"] = *transaction.DestinationAccountID
	}
	return payload
}

func transactionsJSON(transactions []store.Transaction) []map[string]any {
	payload := make([]map[string]any, 0, len(transactions))
	for _, transaction := range transactions {
		payload = append(payload, transactionJSON(transaction))
	}
	return payload
}
