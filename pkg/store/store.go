package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key holds no value.
var ErrNotFound = errors.New("store: key not found")

// Store is the persistence contract shared by every driver. Values are opaque
// byte slices; callers decide the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by drivers backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by drivers holding connections or watchers.
type Closer interface {
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures a driver.
type Config struct {
	Driver string
	// DSN is the file path for the file driver and the connection URL for
	// redis and postgres.
	DSN string
	// Prefix namespaces keys in shared backends.
	Prefix string
}

// Open constructs the driver named in cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.DSN)
	case DriverRedis:
		return NewRedis(ctx, cfg.DSN, WithRedisPrefix(cfg.Prefix))
	case DriverPostgres:
		return NewPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Ping checks backend connectivity when the driver supports it.
func Ping(ctx context.Context, s Store) error {
	if pinger, ok := s.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Close releases driver resources when the driver holds any.
func Close(s Store) error {
	if closer, ok := s.(Closer); ok {
		return closer.Close()
	}
	return nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("store: key is required")
	}
	return nil
}
