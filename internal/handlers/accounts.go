package handlers

import (
	"encoding/json"
	"net/http"

	"ledger/internal/money"
	"ledger/internal/services"

	"github.com/go-chi/chi/v5"
)

type createAccountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	InitialBalance string `json:"initial_balance"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var initialBalance int64
	if req.InitialBalance != "" {
		parsed, err := parseBalanceMinor(req.InitialBalance)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid initial balance")
			return
		}
		initialBalance = parsed
	}
	account, err := h.accounts.Create(r.Context(), services.CreateAccountInput{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: initialBalance,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, accountJSON(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, accountsJSON(accounts))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, accountJSON(account))
}

type updateAccountRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	account, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), services.UpdateAccountInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, accountJSON(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "account deleted")
}

func (h *Handler) AccountsByType(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListByType(r.Context(), chi.URLParam(r, "type"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, accountsJSON(accounts))
}

func (h *Handler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	total, err := h.accounts.TotalBalance(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"total_balance": money.FormatMinor(total)})
}

func (h *Handler) AccountStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.Statistics(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	byType := make([]map[string]any, 0, len(stats.ByType))
	for _, summary := range stats.ByType {
		byType = append(byType, map[string]any{
			"type":          summary.Type,
			"count":         summary.Count,
			"total_balance": money.FormatMinor(summary.TotalBalance),
		})
	}
	respondData(w, http.StatusOK, map[string]any{
		"total_accounts": stats.TotalAccounts,
		"total_balance":  money.FormatMinor(stats.TotalBalance),
		"by_type":        byType,
	})
}

type adjustBalanceRequest struct {
	Amount    string `json:"amount"`
	Direction string `json:"direction"`
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	account, err := h.accounts.AdjustBalance(r.Context(), chi.URLParam(r, "id"), amount, req.Direction)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, accountJSON(account))
}
