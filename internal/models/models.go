package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RequestStatus is the lifecycle tag of a book request.
type RequestStatus string

const (
	StatusPendente  RequestStatus = "Pendente"
	StatusAprobado  RequestStatus = "Aprobado"
	StatusMercado   RequestStatus = "Mercado"
	StatusRexeitado RequestStatus = "Rexeitado"
)

// Statuses returns the four statuses in lifecycle order.
func Statuses() []RequestStatus {
	return []RequestStatus{StatusPendente, StatusAprobado, StatusMercado, StatusRexeitado}
}

// Valid reports whether s is one of the four known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPendente, StatusAprobado, StatusMercado, StatusRexeitado:
		return true
	}
	return false
}

// ID is an opaque request identifier. The local store generates string ids
// while the REST backend assigns numeric ones, so decoding accepts both.
type ID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return fmt.Errorf("invalid request id: %s", data)
}

// BookRequest represents a single book acquisition request
type BookRequest struct {
	ID     ID            `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Book   string        `json:"book"`
	Date   string        `json:"date"`
	Status RequestStatus `json:"status"`
}

// Valid reports whether r satisfies the stored-record contract: a non-empty
// id, all text fields present, and a known status. The local store uses this
// to drop malformed or foreign entries on read.
func (r BookRequest) Valid() bool {
	return r.ID != "" &&
		r.Name != "" &&
		r.Email != "" &&
		r.Book != "" &&
		r.Date != "" &&
		r.Status.Valid()
}

// Submission carries the requester-supplied fields of a new request. The id
// and status are always assigned by the store.
type Submission struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Book  string `json:"book"`
	Date  string `json:"date"`
}

var galicianMonths = [12]string{
	"xaneiro", "febreiro", "marzo", "abril", "maio", "xuño",
	"xullo", "agosto", "setembro", "outubro", "novembro", "decembro",
}

// FormatDate renders t the way the form captures submission dates,
// e.g. "28 de agosto de 2026". The string is stored verbatim and never
// recomputed afterwards.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), galicianMonths[t.Month()-1], t.Year())
}
