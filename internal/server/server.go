// Package server exposes the form and admin views over HTTP: an embedded
// single-page UI at the root plus a JSON API backed by the request store.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"biblioteca/internal/admin"
	"biblioteca/internal/certificate"
	"biblioteca/internal/models"
	"biblioteca/internal/store"
	"biblioteca/web"
)

// Server handles HTTP requests for the book-request application.
type Server struct {
	store         store.Store
	certs         *certificate.Generator
	adminPassword string
	publicURL     string
	logger        *zap.Logger

	// now stamps submission dates; replaced in tests.
	now func() time.Time
}

// New creates a server over the given store and certificate generator.
func New(st store.Store, certs *certificate.Generator, adminPassword, publicURL string, logger *zap.Logger) *Server {
	return &Server{
		store:         st,
		certs:         certs,
		adminPassword: adminPassword,
		publicURL:     publicURL,
		logger:        logger,
		now:           time.Now,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/requests", s.handleCreate)

	r.Group(func(r chi.Router) {
		r.Use(s.adminOnly)
		r.Get("/api/requests", s.handleList)
		r.Patch("/api/requests/{id}", s.handleUpdateStatus)
		r.Delete("/api/requests/{id}", s.handleDelete)
		r.Get("/api/requests/export", s.handleExport)
		r.Get("/api/share/qr.png", s.handleShareQR)
	})

	return r
}

// handleIndex serves the single-page UI from the embedded filesystem.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := web.Content.ReadFile("index.html")
	if err != nil {
		s.logger.Error("Failed to read embedded index.html", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

// adminOnly gates the admin API behind the shared static secret. The gate is
// a plain string compare, not a session model.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Password") != s.adminPassword {
			s.logger.Warn("Unauthorized admin request", zap.String("path", r.URL.Path), zap.String("remote_addr", r.RemoteAddr))
			writeError(w, http.StatusUnauthorized, "Contrasinal incorrecta.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleLogin validates the shared admin secret.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Password != s.adminPassword {
		writeError(w, http.StatusUnauthorized, "Contrasinal incorrecta.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreate persists a submission and answers with the stored record plus
// its certificate. Creation always completes before certificate generation,
// and the certificate is built from the record the store returned.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Book  string `json:"book"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.logger.Warn("Failed to decode submission", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Name == "" || payload.Email == "" || payload.Book == "" {
		writeError(w, http.StatusBadRequest, "Por favor, encha todos os campos.")
		return
	}

	sub := models.Submission{
		Name:  payload.Name,
		Email: payload.Email,
		Book:  payload.Book,
		Date:  models.FormatDate(s.now()),
	}
	created, err := s.store.Create(r.Context(), sub)
	if err != nil {
		s.logger.Error("Failed to create request", zap.Error(err), zap.String("book", sub.Book))
		writeError(w, http.StatusBadGateway, "Houbo un erro ao procesar a solicitude. Por favor, téntao de novo.")
		return
	}

	cert := s.certs.Generate(r.Context(), created)

	s.logger.Info("Request created",
		zap.String("id", string(created.ID)),
		zap.String("book", created.Book),
	)
	writeJSON(w, http.StatusCreated, map[string]any{
		"request":     created,
		"certificate": cert,
	})
}

// handleList returns the full current collection.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.GetAll(r.Context())
	if err != nil {
		s.logger.Error("Failed to list requests", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// handleUpdateStatus changes one request's status and answers with the
// merged authoritative collection.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))

	var payload struct {
		Status models.RequestStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !payload.Status.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", payload.Status))
		return
	}

	current, err := s.store.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	updated, err := admin.ChangeStatus(r.Context(), s.store, current, id, payload.Status)
	if err != nil {
		s.logger.Error("Failed to update request status", zap.Error(err), zap.String("id", string(id)))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDelete removes one request and answers with the updated collection.
// The confirmation step lives in the UI.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))

	current, err := s.store.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	updated, err := admin.Delete(r.Context(), s.store, current, id)
	if err != nil {
		s.logger.Error("Failed to delete request", zap.Error(err), zap.String("id", string(id)))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleExport streams the CSV rendition of the current collection.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	requests, err := s.store.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", admin.ExportFilename))
	fmt.Fprint(w, admin.ExportCSV(requests))
}

// handleShareQR renders the student form deep link as a QR code.
func (s *Server) handleShareQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(admin.ShareURL(s.publicURL), qrcode.Medium, 256)
	if err != nil {
		s.logger.Error("Failed to render QR code", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
