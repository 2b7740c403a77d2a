package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/roadassist/roadassist-client/internal/client/api"
	"github.com/roadassist/roadassist-client/internal/client/storage"
	"github.com/roadassist/roadassist-client/internal/crypto"
	"github.com/roadassist/roadassist-client/internal/models"
)

//go:generate moq -out refresher_mock.go . Refresher

// Refresher exchanges a refresh token for a new credential pair.
// Implemented by the API client.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Credential, error)
}

// DefaultRefreshThreshold - a credential with less than this much lifetime
// left is refreshed before being handed out
const DefaultRefreshThreshold = 5 * time.Minute

// Storage keys owned by the vault. Clear removes all of them, access token
// first, so a partially cleared vault is indistinguishable from a logged-out
// one.
const (
	keyAccess  = storage.NamespaceVault + "access_token"
	keyRefresh = storage.NamespaceVault + "refresh_token"
	keyExpires = storage.NamespaceVault + "expires_at"
	keyProfile = storage.NamespaceVault + "profile"
)

var (
	// ErrNoCredential indicates that no credential is stored (never logged in,
	// or logged out)
	ErrNoCredential = errors.New("no stored credential")

	// ErrReauthRequired indicates that the refresh token was rejected and the
	// user must authenticate again. The vault state is already cleared when
	// this is returned.
	ErrReauthRequired = errors.New("reauthentication required")
)

// Vault owns the credential pair. Tokens are sealed with AES-256-GCM before
// they touch the key-value store; callers always receive a plaintext value
// copy. At most one refresh is in flight at any time - concurrent GetValid
// callers coalesce onto it and share its result.
type Vault struct {
	kv         storage.KVStore
	refresher  Refresher
	storageKey []byte
	threshold  time.Duration
	logger     *slog.Logger
	group      singleflight.Group
	now        func() time.Time
}

// New creates a vault. storageKey must be a 32-byte key, normally derived
// with crypto.DeriveStorageKey from a device secret. threshold <= 0 selects
// DefaultRefreshThreshold.
func New(kv storage.KVStore, refresher Refresher, storageKey []byte, threshold time.Duration, logger *slog.Logger) (*Vault, error) {
	if len(storageKey) != crypto.KeySize {
		return nil, fmt.Errorf("storage key must be %d bytes, got %d", crypto.KeySize, len(storageKey))
	}
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	return &Vault{
		kv:         kv,
		refresher:  refresher,
		storageKey: storageKey,
		threshold:  threshold,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Store seals and persists a credential pair. When the server response
// carried no expiry, the exp claim of the access token is used.
func (v *Vault) Store(ctx context.Context, cred models.Credential) error {
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = expiryFromToken(cred.AccessToken)
	}

	sealedAccess, err := crypto.EncryptToBase64([]byte(cred.AccessToken), v.storageKey)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	sealedRefresh, err := crypto.EncryptToBase64([]byte(cred.RefreshToken), v.storageKey)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	if err := v.kv.Set(ctx, keyAccess, []byte(sealedAccess)); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	if err := v.kv.Set(ctx, keyRefresh, []byte(sealedRefresh)); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	expires := strconv.FormatInt(cred.ExpiresAt.Unix(), 10)
	if err := v.kv.Set(ctx, keyExpires, []byte(expires)); err != nil {
		return fmt.Errorf("failed to save expiry: %w", err)
	}

	return nil
}

// GetValid returns a credential that is neither expired nor expiring soon,
// refreshing the stored one first when needed. N concurrent callers during a
// pending refresh all await the same flight and receive the identical new
// credential.
func (v *Vault) GetValid(ctx context.Context) (models.Credential, error) {
	cred, err := v.load(ctx)
	if err != nil {
		return models.Credential{}, err
	}

	if !v.IsExpiringSoon(cred) {
		return cred, nil
	}

	result, err, _ := v.group.Do("refresh", func() (interface{}, error) {
		return v.refresh(ctx)
	})
	if err != nil {
		return models.Credential{}, err
	}

	return result.(models.Credential), nil
}

// IsExpiringSoon reports whether less than the refresh threshold remains
// before the credential expires
func (v *Vault) IsExpiringSoon(cred models.Credential) bool {
	return cred.RemainingAt(v.now()) < v.threshold
}

// refresh runs inside the singleflight group. It re-reads the stored
// credential first: a caller that queued behind a completed flight must not
// trigger a second refresh.
func (v *Vault) refresh(ctx context.Context) (models.Credential, error) {
	cred, err := v.load(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	if !v.IsExpiringSoon(cred) {
		return cred, nil
	}

	v.logger.Debug("refreshing credential", "expires_at", cred.ExpiresAt)

	fresh, err := v.refresher.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		if api.IsAuthError(err) {
			// The refresh token itself was rejected. Clear everything and
			// surface the session-expired signal; retrying cannot help.
			if clearErr := v.Clear(ctx); clearErr != nil {
				v.logger.Warn("failed to clear vault after rejected refresh", "error", clearErr)
			}
			return models.Credential{}, ErrReauthRequired
		}
		return models.Credential{}, fmt.Errorf("refresh failed: %w", err)
	}

	if err := v.Store(ctx, *fresh); err != nil {
		return models.Credential{}, fmt.Errorf("failed to store refreshed credential: %w", err)
	}

	stored, err := v.load(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	return stored, nil
}

// Clear removes the credential pair, its expiry and the cached profile.
// The access token goes first so an interrupted clear still leaves the vault
// unusable for outbound calls.
func (v *Vault) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{keyAccess, keyRefresh, keyExpires, keyProfile} {
		if err := v.kv.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// SaveProfile seals and stores the account profile next to the credential
func (v *Vault) SaveProfile(ctx context.Context, profile *models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	sealed, err := crypto.EncryptToBase64(data, v.storageKey)
	if err != nil {
		return fmt.Errorf("failed to seal profile: %w", err)
	}
	if err := v.kv.Set(ctx, keyProfile, []byte(sealed)); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Profile returns the cached account profile.
// Returns ErrNoCredential when none is stored.
func (v *Vault) Profile(ctx context.Context) (*models.Profile, error) {
	sealed, err := v.kv.Get(ctx, keyProfile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	data, err := crypto.DecryptFromBase64(string(sealed), v.storageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal profile: %w", err)
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// load reads and unseals the stored credential
func (v *Vault) load(ctx context.Context) (models.Credential, error) {
	sealedAccess, err := v.kv.Get(ctx, keyAccess)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Credential{}, ErrNoCredential
		}
		return models.Credential{}, fmt.Errorf("failed to read access token: %w", err)
	}
	sealedRefresh, err := v.kv.Get(ctx, keyRefresh)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Credential{}, ErrNoCredential
		}
		return models.Credential{}, fmt.Errorf("failed to read refresh token: %w", err)
	}

	access, err := crypto.DecryptFromBase64(string(sealedAccess), v.storageKey)
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to unseal access token: %w", err)
	}
	refresh, err := crypto.DecryptFromBase64(string(sealedRefresh), v.storageKey)
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to unseal refresh token: %w", err)
	}

	cred := models.Credential{
		AccessToken:  string(access),
		RefreshToken: string(refresh),
	}

	if raw, err := v.kv.Get(ctx, keyExpires); err == nil {
		if unix, parseErr := strconv.ParseInt(string(raw), 10, 64); parseErr == nil {
			cred.ExpiresAt = time.Unix(unix, 0)
		}
	}
	if cred.ExpiresAt.IsZero() {
		cred.ExpiresAt = expiryFromToken(cred.AccessToken)
	}

	return cred, nil
}

// expiryFromToken recovers the expiry from the exp claim of a JWT access
// token. The signature is not verified - the token came from the server over
// an authenticated channel and the claim is only used for scheduling.
// Returns the zero time when the token is not a JWT or carries no exp claim.
func expiryFromToken(accessToken string) time.Time {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
