package store

import (
	"context"

	"biblioteca/internal/models"
)

// Store defines the interface for request collection persistence. Two
// interchangeable implementations exist: a local single-file JSON store and a
// client for the remote /books/ REST collection. The backend is chosen once
// at composition time; call sites never branch on which one they hold.
type Store interface {
	// GetAll returns the full request collection in insertion order.
	GetAll(ctx context.Context) ([]models.BookRequest, error)

	// Create persists a new request from the submitted fields. The store is
	// the id-authority and every new request starts at StatusPendente.
	Create(ctx context.Context, sub models.Submission) (models.BookRequest, error)

	// UpdateStatus changes only the status field of the matching request.
	// The local store returns the full authoritative collection; the REST
	// store returns a one-element slice holding the updated record. Callers
	// merge the result into their snapshot by id, which is correct for both
	// shapes.
	UpdateStatus(ctx context.Context, id models.ID, status models.RequestStatus) ([]models.BookRequest, error)

	// Delete removes the matching request. The local store returns the full
	// updated collection; the REST store returns nil.
	Delete(ctx context.Context, id models.ID) ([]models.BookRequest, error)
}
