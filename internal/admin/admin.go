// Package admin orchestrates store mutations from the request-list view and
// derives non-persisted artifacts (CSV export, share link) from the current
// in-memory snapshot.
package admin

import (
	"context"
	"strings"

	"biblioteca/internal/models"
	"biblioteca/internal/store"
)

// ExportFilename is the download name offered for the CSV export.
const ExportFilename = "solicitudes.csv"

var csvHeader = []string{"Nome", "Correo", "Libro", "Data", "Estado"}

// ChangeStatus delegates to the store's UpdateStatus and merges the returned
// records into the held snapshot by id. The local backend returns the full
// authoritative collection and the REST backend a single record; the merge
// is correct for both shapes, so no call site branches on the backend.
func ChangeStatus(ctx context.Context, st store.Store, current []models.BookRequest, id models.ID, status models.RequestStatus) ([]models.BookRequest, error) {
	updated, err := st.UpdateStatus(ctx, id, status)
	if err != nil {
		return current, err
	}
	return merge(current, updated), nil
}

// Delete delegates to the store's Delete. When the store returns the updated
// collection (local backend) it replaces the snapshot; otherwise the record
// is filtered out of the snapshot held by the caller.
func Delete(ctx context.Context, st store.Store, current []models.BookRequest, id models.ID) ([]models.BookRequest, error) {
	updated, err := st.Delete(ctx, id)
	if err != nil {
		return current, err
	}
	if updated != nil {
		return updated, nil
	}
	kept := make([]models.BookRequest, 0, len(current))
	for _, req := range current {
		if req.ID != id {
			kept = append(kept, req)
		}
	}
	return kept, nil
}

func merge(current, returned []models.BookRequest) []models.BookRequest {
	merged := make([]models.BookRequest, len(current))
	copy(merged, current)
	for _, rec := range returned {
		found := false
		for i := range merged {
			if merged[i].ID == rec.ID {
				merged[i] = rec
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, rec)
		}
	}
	return merged
}

// ExportCSV serializes the snapshot as comma-delimited text: a header row
// followed by one row per request in display order, rows joined by newlines.
// No store call is involved.
func ExportCSV(requests []models.BookRequest) string {
	lines := make([]string, 0, len(requests)+1)
	lines = append(lines, joinRow(csvHeader))
	for _, req := range requests {
		lines = append(lines, joinRow([]string{req.Name, req.Email, req.Book, req.Date, string(req.Status)}))
	}
	return strings.Join(lines, "\n")
}

func joinRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, field := range fields {
		escaped[i] = escapeField(field)
	}
	return strings.Join(escaped, ",")
}

// escapeField wraps the field in double quotes, doubling any internal ones,
// whenever it contains a comma, a double quote or a newline. Other fields
// are emitted bare.
func escapeField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

// ShareURL builds the deep link to the student form view, rendered by the
// admin panel as a scannable code.
func ShareURL(origin string) string {
	return strings.TrimRight(origin, "/") + "?view=form"
}
