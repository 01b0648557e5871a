package staff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const deviceKeyPrefix = "staff:device:"

// Device is one logged-in staff browser. Remembered devices live for the
// long TTL; plain sessions expire with the token.
type Device struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Remembered bool      `json:"remembered"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DeviceStore keeps the active-device registry in Redis. Revoking a device
// invalidates every token bound to it, which is what makes logout and
// remote sign-out actually stick.
type DeviceStore struct {
	rdb *redis.Client
}

// NewDeviceStore creates a registry on the given Redis client.
func NewDeviceStore(rdb *redis.Client) *DeviceStore {
	if rdb == nil {
		panic("staff: redis client required")
	}
	return &DeviceStore{rdb: rdb}
}

// Register records a new device with the session's lifetime.
func (s *DeviceStore) Register(ctx context.Context, device Device) error {
	ttl := time.Until(device.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("staff: device already expired")
	}
	raw, err := json.Marshal(device)
	if err != nil {
		return fmt.Errorf("staff: marshal device: %w", err)
	}
	if err := s.rdb.Set(ctx, deviceKeyPrefix+device.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("staff: register device: %w", err)
	}
	return nil
}

// Active reports whether the device is still registered.
func (s *DeviceStore) Active(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, deviceKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("staff: check device: %w", err)
	}
	return n > 0, nil
}

// List returns every registered device.
func (s *DeviceStore) List(ctx context.Context) ([]Device, error) {
	var (
		out    []Device
		cursor uint64
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, deviceKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("staff: scan devices: %w", err)
		}
		for _, key := range keys {
			raw, err := s.rdb.Get(ctx, key).Result()
			if err == redis.Nil {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, fmt.Errorf("staff: load device: %w", err)
			}
			var d Device
			if err := json.Unmarshal([]byte(raw), &d); err != nil {
				return nil, fmt.Errorf("staff: decode device: %w", err)
			}
			out = append(out, d)
		}
		if next == 0 {
			return out, nil
		}
		cursor = next
	}
}

// Revoke removes a device, killing every session bound to it.
func (s *DeviceStore) Revoke(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, deviceKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("staff: revoke device: %w", err)
	}
	return nil
}
