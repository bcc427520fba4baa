// Package presence mirrors this charge point's connectivity state into an
// optional shared Redis instance, so a fleet dashboard covering many charge
// points can see who is connected without polling each one individually.
// Nothing on the critical, offline-tolerant path of this module depends on
// it: Mirror calls are best-effort and failures are logged, never returned
// to the caller's caller.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/go-ocpp/chargepoint/internal/config"
)

// Status is the connectivity state mirrored to Redis.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Mirror publishes this charge point's presence to Redis.
type Mirror struct {
	Client *redis.Client
	Prefix string
	ttl    time.Duration
}

// New dials Redis per cfg. Returns an error if the initial ping fails; the
// caller decides whether a failed presence mirror is fatal (it should not
// be, since the mirror is optional).
func New(cfg config.RedisConfig) (*Mirror, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("presence: connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Mirror{Client: client, Prefix: "cp:presence:", ttl: cfg.PresenceTTL}, nil
}

// SetConnected records that chargePointID is online, with a TTL so a
// process that dies without calling SetDisconnected eventually expires.
func (m *Mirror) SetConnected(ctx context.Context, chargePointID string) error {
	return m.Client.Set(ctx, m.key(chargePointID), string(StatusConnected), m.ttl).Err()
}

// SetDisconnected records that chargePointID went offline cleanly.
func (m *Mirror) SetDisconnected(ctx context.Context, chargePointID string) error {
	return m.Client.Set(ctx, m.key(chargePointID), string(StatusDisconnected), m.ttl).Err()
}

// Get returns the last mirrored status, or redis.Nil if nothing has been
// recorded (or the TTL has expired).
func (m *Mirror) Get(ctx context.Context, chargePointID string) (Status, error) {
	val, err := m.Client.Get(ctx, m.key(chargePointID)).Result()
	if err != nil {
		return "", err
	}
	return Status(val), nil
}

// Delete removes the mirrored entry, used on graceful shutdown.
func (m *Mirror) Delete(ctx context.Context, chargePointID string) error {
	return m.Client.Del(ctx, m.key(chargePointID)).Err()
}

// Close releases the underlying Redis client.
func (m *Mirror) Close() error {
	return m.Client.Close()
}

func (m *Mirror) key(chargePointID string) string {
	return fmt.Sprintf("%s%s", m.Prefix, chargePointID)
}
