// Package session keeps server-side, cookie-keyed session records. They back
// the federated login handshake only; API calls authenticate with bearer
// tokens instead.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// Store persists serialized sessions. Implementations enforce expiry: Get
// must report ErrNotFound once expiresAt has passed.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, data []byte, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that do not expire records on their own.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}
