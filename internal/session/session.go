// Package session keeps one working quote per browser session. Quotes are
// not persisted beyond the session TTL.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Simplici0/supportquote/internal/pricing"
)

// ErrNotFound is returned when a session has no quote or it expired.
var ErrNotFound = errors.New("session not found")

// Store holds quotes by session ID. Get returns a copy; callers edit it and
// Save it back.
type Store interface {
	Get(ctx context.Context, id string) (*pricing.Quote, error)
	Save(ctx context.Context, id string, q *pricing.Quote) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an ID produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
