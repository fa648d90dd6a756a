package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SecretSettingName is the settings key holding the signing secret.
const SecretSettingName = "jwt_secret"

const secretBytes = 64

// MinSecretLength is the shortest signing secret accepted from configuration
// or storage.
const MinSecretLength = 64

// ErrSettingNotFound is returned by a SecretStore when no value exists.
var ErrSettingNotFound = errors.New("setting not found")

// SecretStore persists named settings.
type SecretStore interface {
	Get(ctx context.Context, name string) (string, error)
	// PutIfAbsent stores value unless name already exists and returns the
	// value that is persisted after the call.
	PutIfAbsent(ctx context.Context, name, value string) (string, error)
}

// EnsureSecret resolves the process-wide signing secret. An explicit secret
// wins; otherwise the persisted one is used, created on first start. Racing
// first starts converge on whichever value was written first.
func EnsureSecret(ctx context.Context, explicit string, store SecretStore, logger *zap.Logger) ([]byte, error) {
	if explicit != "" {
		if len(explicit) < MinSecretLength {
			return nil, fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinSecretLength)
		}
		return []byte(explicit), nil
	}
	if store == nil {
		return nil, errors.New("no secret configured and no settings store available")
	}

	existing, err := store.Get(ctx, SecretSettingName)
	switch {
	case err == nil:
		return checkStored(existing)
	case !errors.Is(err, ErrSettingNotFound):
		return nil, fmt.Errorf("load signing secret: %w", err)
	}

	generated, err := GenerateSecret()
	if err != nil {
		return nil, err
	}
	stored, err := store.PutIfAbsent(ctx, SecretSettingName, generated)
	if err != nil {
		return nil, fmt.Errorf("persist signing secret: %w", err)
	}
	if logger != nil {
		logger.Info("signing secret initialized", zap.Bool("generated_here", stored == generated))
	}
	return checkStored(stored)
}

func checkStored(value string) ([]byte, error) {
	if len(value) < MinSecretLength {
		return nil, fmt.Errorf("persisted %s is corrupt: %d bytes, need at least %d", SecretSettingName, len(value), MinSecretLength)
	}
	return []byte(value), nil
}

// GenerateSecret returns a base64url encoded random secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signing secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
