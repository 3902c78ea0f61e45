package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biblioteca/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "solicitudes.json"), zap.NewNop())
}

func TestCreateAppendsPendingRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, before)

	created, err := store.Create(ctx, models.Submission{
		Name:  "Ana",
		Email: "a@b.com",
		Book:  "Foo",
		Date:  "28 de agosto de 2026",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPendente, created.Status)

	after, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, created, after[0])
}

func TestCreateGeneratesUniqueIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := make(map[models.ID]bool)
	for i := 0; i < 50; i++ {
		created, err := store.Create(ctx, models.Submission{
			Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe",
		})
		require.NoError(t, err)
		if seen[created.ID] {
			t.Fatalf("Duplicate id generated: %s", created.ID)
		}
		seen[created.ID] = true
	}
}

func TestUpdateStatusChangesOnlyStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)
	second, err := store.Create(ctx, models.Submission{Name: "Breo", Email: "b@c.com", Book: "Bar", Date: "onte"})
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, first.ID, models.StatusAprobado)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	// Only the status of the matching record changes.
	expected := first
	expected.Status = models.StatusAprobado
	assert.Equal(t, expected, updated[0])
	assert.Equal(t, second, updated[1])
}

func TestUpdateStatusUnknownIDIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ctx, "missing", models.StatusRexeitado)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, created, updated[0])
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)
	second, err := store.Create(ctx, models.Submission{Name: "Breo", Email: "b@c.com", Book: "Bar", Date: "onte"})
	require.NoError(t, err)

	remaining, err := store.Delete(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second, remaining[0])

	// Deleting a non-existent id leaves the collection unchanged.
	remaining, err = store.Delete(ctx, "missing")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second, remaining[0])
}

func TestGetAllFiltersMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solicitudes.json")
	store := New(path, zap.NewNop())
	ctx := context.Background()

	blob := `[
		{"id":"good-1","name":"Ana","email":"a@b.com","book":"Foo","date":"hoxe","status":"Pendente"},
		{"id":"bad-status","name":"Breo","email":"b@c.com","book":"Bar","date":"onte","status":"Aceptado"},
		{"id":"bad-shape","name":42,"email":"c@d.com","book":"Baz","date":"hoxe","status":"Pendente"},
		{"name":"no-id","email":"d@e.com","book":"Qux","date":"hoxe","status":"Pendente"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(blob), 0o644))

	requests, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.ID("good-1"), requests[0].ID)
}

func TestGetAllToleratesCorruptBlob(t *testing.T) {
	testCases := []struct {
		name string
		blob string
	}{
		{name: "not json", blob: "not json at all"},
		{name: "json object", blob: `{"id":"1"}`},
		{name: "empty file", blob: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "solicitudes.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.blob), 0o644))

			store := New(path, zap.NewNop())
			requests, err := store.GetAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, requests)
		})
	}
}

func TestMissingFileReadsEmpty(t *testing.T) {
	store := newTestStore(t)

	requests, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestLockFailureDoesNotSurface(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Both the data file and its lock file sit below a regular file, so
	// neither can be opened. This backend still never raises.
	store := New(filepath.Join(blocker, "solicitudes.json"), zap.NewNop())
	ctx := context.Background()

	requests, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, requests)

	created, err := store.Create(ctx, models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPendente, created.Status)
}

func TestPersistFailureStillReturnsResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solicitudes.json")
	// A directory at the data path makes every write fail while the lock
	// file next to it stays creatable.
	require.NoError(t, os.Mkdir(path, 0o755))

	store := New(path, zap.NewNop())
	ctx := context.Background()

	created, err := store.Create(ctx, models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPendente, created.Status)

	updated, err := store.UpdateStatus(ctx, created.ID, models.StatusAprobado)
	require.NoError(t, err)
	assert.Empty(t, updated)

	// The write never landed, so a fresh read comes back empty: callers
	// cannot tell a failed persist from a successful one.
	requests, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestPersistedBlobIsPlainArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solicitudes.json")
	store := New(path, zap.NewNop())

	_, err := store.Create(context.Background(), models.Submission{Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Pendente", raw[0]["status"])
}
