// internal/api/handler/keys.go
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"custodial-wallet/internal/api/types"
	"custodial-wallet/internal/auth"
	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/util"
)

// KeyIssuer is the part of auth.APIKeyService the HTTP layer needs.
type KeyIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, name string, perms []domain.Permission, expiry string) (*auth.IssuedKey, error)
	Rollover(ctx context.Context, userID, expiredKeyID uuid.UUID, expiry string) (*auth.IssuedKey, error)
}

// KeyHandler manages API keys. Only bearer-authenticated users may call it,
// so a leaked key cannot mint more keys.
type KeyHandler struct {
	responder
	keys KeyIssuer
}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler(keys KeyIssuer, validate *validator.Validate, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		responder: newResponder(logger, validate),
		keys:      keys,
	}
}

// Create issues a new API key.
// POST /keys/create
func (h *KeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := bearerPrincipal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req types.CreateAPIKeyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	perms := make([]domain.Permission, len(req.Permissions))
	for i, s := range req.Permissions {
		perms[i] = domain.Permission(s)
	}

	issued, err := h.keys.Issue(r.Context(), p.UserID, req.Name, perms, req.Expiry)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, issued)
}

// Rollover replaces an expired key, keeping its name and permissions.
// POST /keys/rollover
func (h *KeyHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	p, err := bearerPrincipal(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req types.RolloverAPIKeyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	keyID, err := uuid.Parse(req.ExpiredKeyID)
	if err != nil {
		h.respondWithError(w, r, util.ErrInvalidInput)
		return
	}

	issued, err := h.keys.Rollover(r.Context(), p.UserID, keyID, req.Expiry)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, issued)
}

func bearerPrincipal(r *http.Request) (*auth.Principal, error) {
	p, err := principal(r)
	if err != nil {
		return nil, err
	}
	if p.Method != auth.MethodBearer {
		return nil, util.ErrForbidden
	}
	return p, nil
}
