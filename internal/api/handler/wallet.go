// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"custodial-wallet/internal/api/types"
	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/service"
	"custodial-wallet/internal/util"
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	responder
	wallets   service.WalletService
	deposits  service.DepositService
	transfers service.TransferService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(
	wallets service.WalletService,
	deposits service.DepositService,
	transfers service.TransferService,
	validate *validator.Validate,
	logger *slog.Logger,
) *WalletHandler {
	return &WalletHandler{
		responder: newResponder(logger, validate),
		wallets:   wallets,
		deposits:  deposits,
		transfers: transfers,
	}
}

// Deposit starts a gateway-funded deposit for the caller's wallet.
// POST /wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req types.DepositRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	initiation, err := h.deposits.InitiateDeposit(r.Context(), p.UserID, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, initiation)
}

// DepositStatus reports the state of one of the caller's deposits. It never
// triggers settlement.
// GET /wallet/deposit/{reference}/status
func (h *WalletHandler) DepositStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	reference := chi.URLParam(r, "reference")
	if reference == "" {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	txn, err := h.wallets.GetDepositStatus(r.Context(), reference)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	// Someone else's reference looks exactly like an unknown one.
	wallet, err := h.wallets.GetWalletByUser(r.Context(), p.UserID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if wallet.ID != txn.WalletID {
		h.respondWithError(w, r, util.ErrTransactionNotFound)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.DepositStatusResponse{
		Reference: txn.Reference,
		Status:    txn.Status,
		Amount:    txn.Amount,
	})
}

// Balance returns the caller's wallet balance.
// GET /wallet/balance
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	wallet, err := h.wallets.GetBalance(r.Context(), p.UserID)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.BalanceResponse{
		WalletNumber: wallet.WalletNumber,
		Balance:      wallet.Balance,
	})
}

// Transactions returns the caller's ledger, newest first.
// GET /wallet/transactions?limit=50&offset=0
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", service.DefaultPageLimit)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	txns, total, err := h.wallets.GetTransactions(r.Context(), p.UserID, limit, offset)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	switch {
	case limit <= 0:
		limit = service.DefaultPageLimit
	case limit > service.MaxPageLimit:
		limit = service.MaxPageLimit
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.Transaction]{
		Data:       txns,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}

// Transfer moves funds from the caller's wallet to another wallet by number.
// POST /wallet/transfer
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req types.TransferRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	result, err := h.transfers.Transfer(r.Context(), p.UserID, req.WalletNumber, req.Amount)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.TransferResponse{
		Status:       "success",
		Message:      "Transfer completed",
		Reference:    result.Out.Reference,
		Amount:       result.In.Amount,
		Balance:      result.SenderBalance,
		CompletedAt:  result.Out.CreatedAt,
		Counterparty: req.WalletNumber,
	})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, util.ErrInvalidInput
	}
	return v, nil
}
