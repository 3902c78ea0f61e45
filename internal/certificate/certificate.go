// Package certificate formats the confirmation document handed to a
// requester after a successful submission.
package certificate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"biblioteca/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const model = "gemini-2.5-flash"

const template = `-----------------------------------------
**Certificado de Solicitude de Libro**

**Certificado Nro:** %s

Estimado/a **%s**,

Recibimos con éxito a túa solicitude para adquirir o libro:
**"%s"**.

**Detalles da Solicitude:**
- **Data:** %s
- **Email de Contacto:** %s

Agradecemos enormemente o teu interés en enriquecer a nosa colección. O noso equipo avaliará a proposta e notificarémosche por correo electrónico sobre o estado da túa petición e cando o libro estea dispoñible no noso catálogo.

Grazas por axudarnos a medrar!

Atentamente,
O equipo da Biblioteca Dixital
-----------------------------------------`

// Number derives the 6-character certificate number from a request id: the
// id left-padded with zeros to 6 characters, last 6 kept, uppercased.
func Number(id models.ID) string {
	s := string(id)
	for len(s) < 6 {
		s = "0" + s
	}
	return strings.ToUpper(s[len(s)-6:])
}

// Render produces the locally formatted certificate for one request.
func Render(req models.BookRequest) string {
	return fmt.Sprintf(template, Number(req.ID), req.Name, req.Book, req.Date, req.Email)
}

// Generator produces certificate text, optionally rephrased by an external
// generative-text service. The external call can replace the local template
// but never block delivery: on a missing credential or any failure the
// locally rendered certificate is returned.
type Generator struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewGenerator creates a certificate generator. An empty apiKey disables the
// external call entirely.
func NewGenerator(apiKey string, logger *zap.Logger) *Generator {
	return &Generator{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    http.DefaultClient,
		logger:  logger,
	}
}

// Generate returns the certificate text for req. The submission flow calls
// this only with the record returned by the store, so a server-assigned id
// is reflected in the certificate number.
func (g *Generator) Generate(ctx context.Context, req models.BookRequest) string {
	rendered := Render(req)
	if g.apiKey == "" {
		g.logger.Debug("No generative API key configured, using local certificate template")
		return rendered
	}

	text, err := g.generateRemote(ctx, rendered)
	if err != nil {
		g.logger.Warn("External certificate generation failed, falling back to local template", zap.Error(err))
		return rendered
	}
	return text
}

func (g *Generator) generateRemote(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error %d", resp.StatusCode)
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from generative service")
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("empty response from generative service")
	}
	return text, nil
}
