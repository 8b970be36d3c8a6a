package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session value not found")

// Storage keeps small named values for a browser session, such as the
// display name shown after login.
type Storage interface {
	Save(ctx context.Context, sessionID, key, value string) error
	Get(ctx context.Context, sessionID, key string) (string, error)
	Clear(ctx context.Context, sessionID string) error
}
