// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"custodial-wallet/internal/api/types"
	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/util"

	"github.com/go-playground/validator/v10"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps request bodies, webhooks included.
const maxBodyBytes = 1 << 20

// responder holds the JSON and error helpers shared by all handlers.
type responder struct {
	logger   *slog.Logger
	validate *validator.Validate
}

func newResponder(logger *slog.Logger, validate *validator.Validate) responder {
	if validate == nil {
		validate = validator.New()
	}
	return responder{logger: logger, validate: validate}
}

// respondWithJSON sends payload with code.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors onto status codes. Unmapped errors
// are logged and hidden behind a 500.
func (h responder) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		message = validationErrs.Error()
	case util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrInvalidWalletNumber),
		util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrSameWalletTransfer):
		statusCode = http.StatusBadRequest
		message = "Cannot transfer to yourself"
	case util.IsError(err, util.ErrRecipientNotFound):
		statusCode = http.StatusNotFound
		message = "Recipient wallet not found"
	case util.IsError(err, util.ErrWalletNotFound):
		statusCode = http.StatusNotFound
		message = "Wallet not found"
	case util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = "Transaction not found"
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired
		message = "Insufficient balance"
	case util.IsError(err, util.ErrTooManyKeys):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrWalletExists):
		statusCode = http.StatusConflict
		message = "Wallet already exists"
	case util.IsError(err, util.ErrConcurrentUpdate), util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Conflicting request, retry"
	case util.IsError(err, util.ErrBalanceOverflow):
		statusCode = http.StatusUnprocessableEntity
		message = "Amount would exceed the recipient's balance limit"
		h.logger.Error("Balance overflow", "error", err, "path", r.URL.Path)
	case util.IsError(err, util.ErrUnauthorized), util.IsError(err, util.ErrInvalidSignature):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	case util.IsError(err, util.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Insufficient permissions"
	case util.IsError(err, util.ErrGateway):
		statusCode = http.StatusBadGateway
		message = "Payment gateway unavailable"
		h.logger.Error("Gateway error", "error", err, "path", r.URL.Path)
	default:
		h.logger.Error("Unhandled service error", "error", err, "path", r.URL.Path)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// decode reads a JSON body into dst and validates its tags.
func (h responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return util.ErrInvalidInput
	}
	return h.validate.Struct(dst)
}

// principal returns the authenticated caller. Routes using it sit behind the
// authentication middleware, so a missing principal is a wiring error.
func principal(r *http.Request) (*auth.Principal, error) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		return nil, util.ErrUnauthorized
	}
	return p, nil
}
