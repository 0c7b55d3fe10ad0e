// Package kvstore is the persistence boundary of the page engine: a
// synchronous, string-keyed store shared by every page session of the same
// origin, plus a change feed that mirrors browser storage-event semantics
// (delivered to every session except the writer).
package kvstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Fixed keys shared with the rest of the site. The names are part of the
// wire format and must not change.
const (
	KeyTheme = "theme"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kvstore: key not found")

// Event describes a change made by another page session.
type Event struct {
	Key      string    `json:"key"`
	NewValue string    `json:"new_value"`
	Deleted  bool      `json:"deleted"`
	Origin   uuid.UUID `json:"origin"`
}

// Store is one page session's handle on the shared key/value facility.
// Watch feeds never include the handle's own writes.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Watch(ctx context.Context) (<-chan Event, error)
	Origin() uuid.UUID
	Close() error
}

const watchBuffer = 32
