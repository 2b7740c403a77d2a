package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// deviceIDKey lives outside the component namespaces, it belongs to the
// installation itself
const deviceIDKey = "device_id"

// DeviceID returns the stable identifier of this installation, generating
// and persisting one on first use
func DeviceID(ctx context.Context, kv KVStore) (string, error) {
	value, err := kv.Get(ctx, deviceIDKey)
	if err == nil {
		return string(value), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("loading device id: %w", err)
	}

	id := uuid.New().String()
	if err := kv.Set(ctx, deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("persisting device id: %w", err)
	}
	return id, nil
}
