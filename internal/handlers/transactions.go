package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ledger/internal/money"
	"ledger/internal/services"
	"ledger/internal/store"

	"github.com/go-chi/chi/v5"
)

type createTransactionRequest struct {
	Type                 string  `json:"type"`
	Amount               string  `json:"amount"`
	Description          string  `json:"description"`
	AccountID            string  `json:"account_id"`
	DestinationAccountID *string `json:"destination_account_id"`
	TransactionDate      string  `json:"transaction_date"`
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	h.createTransaction(w, r, req)
}

// CreateTransfer is sugar over CreateTransaction with the type pinned.
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	req.Type = services.TransactionTypeTransfer
	h.createTransaction(w, r, req)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request, req createTransactionRequest) {
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	var transactionDate *time.Time
	if req.TransactionDate != "" {
		parsed, err := parseDate(req.TransactionDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid transaction date")
			return
		}
		transactionDate = &parsed
	}
	transaction, err := h.ledger.CreateTransaction(r.Context(), services.CreateTransactionInput{
		Type:                 req.Type,
		Amount:               amount,
		Description:          req.Description,
		AccountID:            req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		TransactionDate:      transactionDate,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, transactionJSON(transaction))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactions, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, transactionsJSON(transactions))
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, transactionJSON(transaction))
}

func (h *Handler) TransactionsByAccount(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.ListByAccount(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, transactionsJSON(transactions))
}

type updateTransactionRequest struct {
	Type            *string `json:"type"`
	Amount          *string `json:"amount"`
	Description     *string `json:"description"`
	TransactionDate *string `json:"transaction_date"`
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	input := services.UpdateTransactionInput{
		Type:        req.Type,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := parseAmountMinor(*req.Amount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		input.Amount = &amount
	}
	if req.TransactionDate != nil {
		parsed, err := parseDate(*req.TransactionDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid transaction date")
			return
		}
		input.TransactionDate = &parsed
	}
	transaction, err := h.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, transactionJSON(transaction))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "transaction deleted")
}

func (h *Handler) TransactionStatistics(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.ledger.Statistics(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	byType := make([]map[string]any, 0, len(stats.ByType))
	for _, summary := range stats.ByType {
		byType = append(byType, map[string]any{
			"type":         summary.Type,
			"count":        summary.Count,
			"total_amount": money.FormatMinor(summary.TotalAmount),
		})
	}
	respondData(w, http.StatusOK, map[string]any{
		"total_transactions": stats.TotalTransactions,
		"total_amount":       money.FormatMinor(stats.TotalAmount),
		"by_type":            byType,
	})
}

func filterFromQuery(r *http.Request) (store.TransactionFilter, error) {
	query := r.URL.Query()
	filter := store.TransactionFilter{
		AccountID: query.Get("account_id"),
		Type:      query.Get("type"),
	}
	if raw := query.Get("start_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return store.TransactionFilter{}, errInvalidDate
		}
		filter.StartDate = &parsed
	}
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return store.TransactionFilter{}, errInvalidDate
		}
		filter.EndDate = &parsed
	}
	return filter, nil
}
