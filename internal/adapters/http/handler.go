package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/tymchak1/flow-roles/internal/application"
	"github.com/tymchak1/flow-roles/internal/contracts"
)

func (h *Handler) createDeposit(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "amount must be a decimal string", requestIDFromContext(r.Context()))
		return
	}
	record, err := h.service.Deposit(r.Context(), actor, application.DepositInput{
		Amount:         amount,
		LockPeriodDays: req.LockPeriodDays,
	})
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusCreated, "", record)
}

func (h *Handler) withdrawDeposit(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "index must be a non-negative integer", requestIDFromContext(r.Context()))
		return
	}
	receipt, err := h.service.Withdraw(r.Context(), actor, index)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.WithdrawResponse{
		Account:     receipt.Account,
		Index:       receipt.Index,
		Amount:      receipt.Amount.String(),
		WithdrawnAt: receipt.WithdrawnAt.Format(time.RFC3339),
	})
}

func (h *Handler) listDeposits(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	account := strings.TrimSpace(r.URL.Query().Get("account"))
	records, err := h.service.ListDeposits(r.Context(), actor, account)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"items": records})
}

func (h *Handler) getDeposit(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "index must be a non-negative integer", requestIDFromContext(r.Context()))
		return
	}
	account := strings.TrimSpace(r.URL.Query().Get("account"))
	record, err := h.service.GetDeposit(r.Context(), actor, account, index)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", record)
}

func (h *Handler) totalLocked(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	total, err := h.service.TotalLocked(r.Context(), actor)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.TotalLockedResponse{TotalLocked: total.String()})
}

func (h *Handler) accountSummary(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	account := chi.URLParam(r, "account")
	summary, err := h.service.AccountSummary(r.Context(), actor, account)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	roles := make([]string, 0, len(summary.Roles))
	for _, tag := range summary.Roles {
		roles = append(roles, string(tag))
	}
	writeSuccess(w, http.StatusOK, "", contracts.AccountSummaryResponse{
		Account:           summary.Account,
		DepositCount:      summary.DepositCount,
		LifetimeDeposited: summary.LifetimeDeposited.String(),
		ActiveDeposited:   summary.ActiveDeposited.String(),
		Roles:             roles,
	})
}

func (h *Handler) accountRoles(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	account := chi.URLParam(r, "account")
	grants, timed, err := h.service.Roles(r.Context(), actor, account)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	roles := make([]string, 0, len(grants))
	for _, tag := range grants {
		roles = append(roles, string(tag))
	}
	payload := map[string]interface{}{"roles": roles}
	if timed.Account != "" {
		payload["activity"] = map[string]interface{}{
			"active":      timed.Active,
			"last_active": timed.LastActive.Format(time.RFC3339),
			"expiry":      timed.Expiry.Format(time.RFC3339),
		}
	}
	writeSuccess(w, http.StatusOK, "", payload)
}

func (h *Handler) keeperProbe(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Probe(r.Context())
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.ProbeResponse{
		WorkNeeded: result.WorkNeeded,
		Candidates: result.Candidates,
	})
}

func (h *Handler) keeperSweep(w http.ResponseWriter, r *http.Request) {
	var req contracts.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	swept, err := h.service.Sweep(r.Context(), req.Accounts)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", contracts.SweepResponse{Deactivated: swept})
}

func (h *Handler) getOwnership(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	owner, err := h.service.Owner(r.Context(), actor)
	if err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]interface{}{"owner": owner})
}

func (h *Handler) transferOwnership(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(r.Context())
	var req contracts.TransferOwnershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	newOwner := strings.TrimSpace(req.NewOwner)
	if newOwner == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "new_owner is required", requestIDFromContext(r.Context()))
		return
	}
	if err := h.service.TransferOwnership(r.Context(), actor, newOwner); err != nil {
		status, code := mapDomainError(err)
		writeError(w, status, code, err.Error(), requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "ownership transferred", map[string]interface{}{"owner": newOwner})
}
