package certificate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biblioteca/internal/models"
)

func TestNumber(t *testing.T) {
	testCases := []struct {
		name     string
		id       models.ID
		expected string
	}{
		{name: "short numeric id is zero-padded", id: "42", expected: "000042"},
		{name: "long id keeps last six uppercased", id: "ABCDEFGH", expected: "CDEFGH"},
		{name: "lowercase id is uppercased", id: "abc", expected: "000ABC"},
		{name: "exactly six characters", id: "123456", expected: "123456"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Number(tc.id))
		})
	}
}

func TestRenderContainsRequestFields(t *testing.T) {
	req := models.BookRequest{
		ID:     "42",
		Name:   "Ana",
		Email:  "a@b.com",
		Book:   "Foo",
		Date:   "28 de agosto de 2026",
		Status: models.StatusPendente,
	}

	text := Render(req)
	assert.Contains(t, text, "**Certificado de Solicitude de Libro**")
	assert.Contains(t, text, "**Certificado Nro:** 000042")
	assert.Contains(t, text, "Ana")
	assert.Contains(t, text, `**"Foo"**`)
	assert.Contains(t, text, "28 de agosto de 2026")
	assert.Contains(t, text, "a@b.com")
	assert.True(t, strings.HasPrefix(text, "-----------------------------------------\n"))
}

func TestGenerateWithoutKeyUsesLocalTemplate(t *testing.T) {
	g := NewGenerator("", zap.NewNop())
	req := models.BookRequest{ID: "1", Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe", Status: models.StatusPendente}

	assert.Equal(t, Render(req), g.Generate(context.Background(), req))
}

func TestGenerateUsesExternalText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, ":generateContent")
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"external certificate"}]}}]}`)
	}))
	defer srv.Close()

	g := &Generator{apiKey: "secret", baseURL: srv.URL, http: srv.Client(), logger: zap.NewNop()}
	req := models.BookRequest{ID: "1", Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe", Status: models.StatusPendente}

	assert.Equal(t, "external certificate", g.Generate(context.Background(), req))
}

func TestGenerateFallsBackOnFailure(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "empty candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"candidates":[]}`)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `not json`)
			},
		},
	}

	req := models.BookRequest{ID: "1", Name: "Ana", Email: "a@b.com", Book: "Foo", Date: "hoxe", Status: models.StatusPendente}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			g := &Generator{apiKey: "secret", baseURL: srv.URL, http: srv.Client(), logger: zap.NewNop()}
			assert.Equal(t, Render(req), g.Generate(context.Background(), req))
		})
	}
}
