// Package store is the document-store boundary. Records are persisted
// as whole JSON documents with last-write-wins overwrite semantics;
// there are no partial updates and no version checks.
package store

import (
	"context"
	"errors"
	"time"

	"bio-clicker-backend/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ChatLimit caps how many messages a stream retains.
const ChatLimit = 400

// Store is injected into every service so the domain layer never
// touches Redis directly and tests can run against the in-memory
// implementation.
type Store interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// GetSettings returns ErrNotFound when nothing has been stored yet.
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, settings *models.Settings) error

	AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error
	RecentChatMessages(ctx context.Context, limit int64) ([]*models.ChatMessage, error)
	AppendDirectMessage(ctx context.Context, key string, msg *models.ChatMessage) error
	RecentDirectMessages(ctx context.Context, key string, limit int64) ([]*models.ChatMessage, error)

	// AcquireClickCooldown attempts to take the per-user click
	// cooldown slot. It returns false while a previous acquisition is
	// still within its TTL.
	AcquireClickCooldown(ctx context.Context, username string, ttl time.Duration) (bool, error)

	Close() error
}
