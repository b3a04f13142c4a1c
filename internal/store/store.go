// Package store persists the conversation collection as one atomic document.
package store

import "github.com/rfenwick/relayd/internal/models"

// Store reads and writes the entire collection. Save replaces whatever was
// persisted before; callers always operate on the full document returned by
// Load.
type Store interface {
	Load() (*models.Store, error)
	Save(*models.Store) error
}
