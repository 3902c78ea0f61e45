// Package local persists the request collection as a single JSON array in
// one file slot, read and rewritten whole on every mutation.
package local

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"biblioteca/internal/models"
)

const lockTimeout = 3 * time.Second

// FileStore stores the whole collection as one serialized blob. An advisory
// file lock guards the read-modify-write cycle against concurrent processes,
// a mutex against concurrent goroutines.
type FileStore struct {
	path     string
	fileLock *flock.Flock
	mu       sync.Mutex
	logger   *zap.Logger
}

// New creates a file store backed by the given path. The file is created on
// first write.
func New(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:     path,
		fileLock: flock.New(path + ".lock"),
		logger:   logger,
	}
}

// GetAll returns every well-formed request in the stored blob. A missing
// file, an unreadable blob, or a blob that is not a JSON array all yield an
// empty collection; malformed records are dropped without surfacing an
// error. This is the store's resilience contract against corrupted or
// foreign data in the slot.
func (s *FileStore) GetAll(ctx context.Context) ([]models.BookRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.lock(ctx)()

	return s.load(), nil
}

// Create appends a new request with a generated id and StatusPendente and
// persists the full collection.
func (s *FileStore) Create(ctx context.Context, sub models.Submission) (models.BookRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.lock(ctx)()

	requests := s.load()
	req := models.BookRequest{
		ID:     newID(),
		Name:   sub.Name,
		Email:  sub.Email,
		Book:   sub.Book,
		Date:   sub.Date,
		Status: models.StatusPendente,
	}
	requests = append(requests, req)
	s.persist(requests)
	return req, nil
}

// UpdateStatus replaces the status of the matching request, a no-op when no
// record matches, and returns the full updated collection.
func (s *FileStore) UpdateStatus(ctx context.Context, id models.ID, status models.RequestStatus) ([]models.BookRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.lock(ctx)()

	requests := s.load()
	for i := range requests {
		if requests[i].ID == id {
			requests[i].Status = status
			break
		}
	}
	s.persist(requests)
	return requests, nil
}

// Delete removes the matching request, a no-op when no record matches, and
// returns the full updated collection.
func (s *FileStore) Delete(ctx context.Context, id models.ID) ([]models.BookRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.lock(ctx)()

	requests := s.load()
	kept := requests[:0]
	for _, req := range requests {
		if req.ID != id {
			kept = append(kept, req)
		}
	}
	s.persist(kept)
	return kept, nil
}

// lock acquires the advisory file lock, retrying until ctx or the timeout
// expires. Lock failures are logged and otherwise ignored: this backend
// never surfaces infrastructure errors, and the mutex still serializes
// goroutines within the process.
func (s *FileStore) lock(ctx context.Context) func() {
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	locked, err := s.fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil || !locked {
		cancel()
		s.logger.Warn("Failed to acquire file lock, proceeding without it", zap.Error(err), zap.String("path", s.path))
		return func() {}
	}
	return func() {
		_ = s.fileLock.Unlock()
		cancel()
	}
}

func (s *FileStore) load() []models.BookRequest {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read request collection", zap.Error(err), zap.String("path", s.path))
		}
		return []models.BookRequest{}
	}
	if len(data) == 0 {
		return []models.BookRequest{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("Stored blob is not a JSON array, treating as empty", zap.Error(err), zap.String("path", s.path))
		return []models.BookRequest{}
	}

	requests := make([]models.BookRequest, 0, len(raw))
	for _, entry := range raw {
		var req models.BookRequest
		if err := json.Unmarshal(entry, &req); err != nil {
			continue
		}
		if !req.Valid() {
			continue
		}
		requests = append(requests, req)
	}
	return requests
}

// persist writes the full collection back. Write failures are logged but not
// returned: the caller still receives the in-memory result and cannot tell a
// failed persist from a successful one (a documented contract of this
// backend).
func (s *FileStore) persist(requests []models.BookRequest) {
	data, err := json.Marshal(requests)
	if err != nil {
		s.logger.Error("Failed to serialize request collection", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("Failed to persist request collection", zap.Error(err), zap.String("path", s.path))
	}
}

// newID combines a time-derived prefix with a random suffix, giving
// negligible collision probability within a session.
func newID() models.ID {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return models.ID(strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix)
}
