// Package notice keeps the short-lived flag that carries a test result across
// the admin redirect.
package notice

import (
	"context"
	"errors"
	"time"
)

// State is the value of a notice flag.
type State string

// Known states. An absent flag is reported as the zero State.
const (
	Success State = "success"
	Error   State = "error"
)

// ErrInvalidState is returned when writing a State other than Success or Error.
var ErrInvalidState = errors.New("notice: invalid state")

// Valid reports whether s can be stored.
func (s State) Valid() bool {
	return s == Success || s == Error
}

// Store is a key/value store whose entries expire.
type Store interface {
	// Set writes value under key for ttl.
	Set(ctx context.Context, key string, value State, ttl time.Duration) error
	// GetAndClear returns the value under key and deletes it. Missing and
	// expired keys return ok == false.
	GetAndClear(ctx context.Context, key string) (value State, ok bool, err error)
}

// Config selects and configures a Store.
type Config struct {
	Driver    string // "memory" or "redis"
	RedisAddr string
	RedisDB   int
	Prefix    string
}

// New creates a Store according to cfg. Unknown drivers fall back to memory.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(ctx, cfg)
	default:
		return NewMemory(), nil
	}
}
