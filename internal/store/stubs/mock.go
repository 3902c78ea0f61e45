package stubs

import (
	"context"
	"strconv"
	"sync"

	"biblioteca/internal/models"
)

// MockStore is an in-memory store for testing. It mimics the REST backend's
// contract: server-assigned sequential numeric ids, a single-record return
// from UpdateStatus and a nil return from Delete.
type MockStore struct {
	mu       sync.Mutex
	requests []models.BookRequest
	nextID   int

	// FailWith, when set, is returned by every operation.
	FailWith error
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{nextID: 1}
}

// GetAll returns a copy of the collection in insertion order.
func (m *MockStore) GetAll(ctx context.Context) ([]models.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := make([]models.BookRequest, len(m.requests))
	copy(out, m.requests)
	return out, nil
}

// Create appends a new request with the next numeric id and StatusPendente.
func (m *MockStore) Create(ctx context.Context, sub models.Submission) (models.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return models.BookRequest{}, m.FailWith
	}
	req := models.BookRequest{
		ID:     models.ID(strconv.Itoa(m.nextID)),
		Name:   sub.Name,
		Email:  sub.Email,
		Book:   sub.Book,
		Date:   sub.Date,
		Status: models.StatusPendente,
	}
	m.nextID++
	m.requests = append(m.requests, req)
	return req, nil
}

// UpdateStatus changes the status of the matching request and returns just
// that record, like the REST backend does.
func (m *MockStore) UpdateStatus(ctx context.Context, id models.ID, status models.RequestStatus) ([]models.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.requests[i].Status = status
			return []models.BookRequest{m.requests[i]}, nil
		}
	}
	return []models.BookRequest{}, nil
}

// Delete removes the matching request and returns nil, like the REST
// backend does.
func (m *MockStore) Delete(ctx context.Context, id models.ID) ([]models.BookRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}
	kept := m.requests[:0]
	for _, req := range m.requests {
		if req.ID != id {
			kept = append(kept, req)
		}
	}
	m.requests = kept
	return nil, nil
}
