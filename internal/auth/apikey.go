// internal/auth/apikey.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"custodial-wallet/internal/domain"
	"custodial-wallet/internal/repository"
	"custodial-wallet/internal/util"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MaxActiveKeys is the per-user cap on unrevoked, unexpired keys.
const MaxActiveKeys = 5

// Raw keys look like sk_live_<prefix>_<secret>. The prefix is stored in clear
// and indexed; only the secret's bcrypt hash is kept.
const (
	keyScheme      = "sk_live_"
	prefixBytes    = 6
	secretBytes    = 16
	prefixHexChars = prefixBytes * 2
	secretHexChars = secretBytes * 2
)

// IssuedKey is returned exactly once, when a key is created.
type IssuedKey struct {
	ID          uuid.UUID           `json:"id"`
	Key         string              `json:"api_key"`
	Name        string              `json:"name"`
	Permissions []domain.Permission `json:"permissions"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

// APIKeyService issues machine credentials and authenticates them.
type APIKeyService struct {
	dbExecutor repository.DBExecutor
	keys       repository.APIKeyRepository
	logger     *slog.Logger
	now        func() time.Time
	cost       int
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(dbExecutor repository.DBExecutor, keys repository.APIKeyRepository, logger *slog.Logger) *APIKeyService {
	return &APIKeyService{
		dbExecutor: dbExecutor,
		keys:       keys,
		logger:     logger,
		now:        time.Now,
		cost:       bcrypt.DefaultCost,
	}
}

// Issue creates a key for userID. expiry is a count and a unit: H, D, M or Y
// (for example "1D" or "6M").
func (s *APIKeyService) Issue(ctx context.Context, userID uuid.UUID, name string, perms []domain.Permission, expiry string) (*IssuedKey, error) {
	if strings.TrimSpace(name) == "" || len(perms) == 0 {
		return nil, util.ErrInvalidInput
	}
	for _, p := range perms {
		if !domain.ValidPermission(p) {
			return nil, fmt.Errorf("unknown permission %q: %w", p, util.ErrInvalidInput)
		}
	}

	now := s.now().UTC()
	expiresAt, err := ParseExpiry(now, expiry)
	if err != nil {
		return nil, err
	}

	active, err := s.keys.CountActiveAPIKeys(ctx, s.dbExecutor, userID, now)
	if err != nil {
		return nil, fmt.Errorf("issue api key: %w", err)
	}
	if active >= MaxActiveKeys {
		return nil, util.ErrTooManyKeys
	}

	prefix, err := randomHex(prefixBytes)
	if err != nil {
		return nil, err
	}
	secret, err := randomHex(secretBytes)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	stored := make([]string, len(perms))
	for i, p := range perms {
		stored[i] = string(p)
	}
	key := &domain.APIKey{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Prefix:      prefix,
		KeyHash:     string(hash),
		Permissions: stored,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}
	if err := s.keys.CreateAPIKey(ctx, s.dbExecutor, key); err != nil {
		return nil, fmt.Errorf("issue api key: %w", err)
	}

	s.logger.Info("api key issued", "user_id", userID, "key_id", key.ID, "expires_at", expiresAt)
	return &IssuedKey{
		ID:          key.ID,
		Key:         keyScheme + prefix + "_" + secret,
		Name:        name,
		Permissions: perms,
		ExpiresAt:   expiresAt,
	}, nil
}

// Rollover replaces an expired key with a new one carrying the same name and
// permissions.
func (s *APIKeyService) Rollover(ctx context.Context, userID, expiredKeyID uuid.UUID, expiry string) (*IssuedKey, error) {
	old, err := s.keys.GetAPIKeyByID(ctx, s.dbExecutor, expiredKeyID)
	if err != nil {
		return nil, fmt.Errorf("rollover api key: %w", err)
	}
	if old.UserID != userID {
		return nil, util.ErrNotFound
	}
	if s.now().Before(old.ExpiresAt) {
		return nil, fmt.Errorf("key is not expired yet: %w", util.ErrInvalidInput)
	}

	perms := make([]domain.Permission, len(old.Permissions))
	for i, p := range old.Permissions {
		perms[i] = domain.Permission(p)
	}
	return s.Issue(ctx, userID, old.Name, perms, expiry)
}

// Authenticate resolves rawKey to a principal. The prefix selects exactly one
// stored record and the secret is verified against that record only.
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*Principal, error) {
	prefix, secret, ok := splitKey(rawKey)
	if !ok {
		return nil, util.ErrUnauthorized
	}

	key, err := s.keys.GetAPIKeyByPrefix(ctx, s.dbExecutor, prefix)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate api key: %w", err)
	}
	if !key.Active(s.now()) {
		return nil, util.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(secret)); err != nil {
		return nil, util.ErrUnauthorized
	}

	perms := make([]domain.Permission, len(key.Permissions))
	for i, p := range key.Permissions {
		perms[i] = domain.Permission(p)
	}
	return &Principal{UserID: key.UserID, Permissions: perms, Method: MethodAPIKey, KeyID: key.ID}, nil
}

func splitKey(raw string) (prefix, secret string, ok bool) {
	rest, found := strings.CutPrefix(raw, keyScheme)
	if !found {
		return "", "", false
	}
	prefix, secret, found = strings.Cut(rest, "_")
	if !found || len(prefix) != prefixHexChars || len(secret) != secretHexChars {
		return "", "", false
	}
	return prefix, secret, true
}

// ParseExpiry turns "<n><H|D|M|Y>" into an absolute time after now.
func ParseExpiry(now time.Time, expiry string) (time.Time, error) {
	if len(expiry) < 2 {
		return time.Time{}, fmt.Errorf("invalid expiry %q: %w", expiry, util.ErrInvalidInput)
	}
	n, err := strconv.Atoi(expiry[:len(expiry)-1])
	if err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("invalid expiry %q: %w", expiry, util.ErrInvalidInput)
	}

	switch strings.ToUpper(expiry[len(expiry)-1:]) {
	case "H":
		return now.Add(time.Duration(n) * time.Hour), nil
	case "D":
		return now.AddDate(0, 0, n), nil
	case "M":
		return now.AddDate(0, n, 0), nil
	case "Y":
		return now.AddDate(n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid expiry unit in %q: %w", expiry, util.ErrInvalidInput)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
