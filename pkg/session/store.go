// Package session keeps table snapshots between browser requests.
//
// Snapshots expire after a TTL that is refreshed on every write; a session
// that stops making requests simply disappears. Nothing outlives the TTL.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Sternrassler/artwork-table/pkg/table"
)

var (
	// ErrNotFound indicates no snapshot exists for the session, or it expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidSnapshot indicates a stored snapshot could not be decoded.
	ErrInvalidSnapshot = errors.New("invalid session snapshot")
)

// Store persists table snapshots by session id.
type Store interface {
	// Get returns the snapshot for id, or ErrNotFound.
	Get(ctx context.Context, id string) (*table.Snapshot, error)

	// Set stores snap for id and refreshes its TTL.
	Set(ctx context.Context, id string, snap *table.Snapshot) error

	// Delete removes the snapshot for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id returned by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
