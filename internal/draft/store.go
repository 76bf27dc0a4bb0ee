// Package draft persists in-progress post compositions. Each user has exactly
// one draft slot; saves overwrite it, last write wins, and malformed stored
// content is discarded rather than surfaced.
package draft

import "plateful/internal/models"

// Store is the durable slot boundary. Implementations must treat a malformed
// stored value as absent: Load returns an empty draft and false instead of an
// error the caller would have to handle.
type Store interface {
	// Save overwrites the user's draft slot.
	Save(userID string, d models.Draft) error
	// Load reads the user's draft slot. The bool reports whether a
	// well-formed draft was present.
	Load(userID string) (models.Draft, bool, error)
	// Clear removes the user's draft slot. Clearing an empty slot is not
	// an error.
	Clear(userID string) error
}
