// Package rest implements the request store as a client of the remote
// /books/ collection endpoint.
package rest

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

// Client talks to the paginated REST collection endpoint. Unlike the local
// store it propagates every transport and HTTP failure to the caller: single
// attempt, no retry, no backoff.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a REST store client for the given base URL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  logger,
	}
}

// page is the endpoint's pagination envelope.
type page struct {
	Count    int                  `json:"count"`
	Next     *string              `json:"next"`
	Previous *string              `json:"previous"`
	Results  []models.BookRequest `json:"results"`
}

// GetAll fetches the collection and unwraps the pagination envelope,
// returning only the record page.
func (c *Client) GetAll(ctx context.Context) ([]models.BookRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books/", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching requests: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding request page: %w", err)
	}
	if p.Results == nil {
		return []models.BookRequest{}, nil
	}
	return p.Results, nil
}

// Create posts the submitted fields with a forced initial StatusPendente.
// The endpoint assigns the id.
func (c *Client) Create(ctx context.Context, sub models.Submission) (models.BookRequest, error) {
	body, err := json.Marshal(struct {
		models.Submission
		Status models.RequestStatus `json:"status"`
	}{sub, models.StatusPendente})
	if err != nil {
		return models.BookRequest{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/books/", bytes.NewReader(body))
	if err != nil {
		return models.BookRequest{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.BookRequest{}, fmt.Errorf("creating request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return models.BookRequest{}, c.responseError(resp)
	}

	var created models.BookRequest
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return models.BookRequest{}, fmt.Errorf("decoding created request: %w", err)
	}
	return created, nil
}

// UpdateStatus issues a partial update carrying only the status field and
// returns the single updated record wrapped in a slice.
func (c *Client) UpdateStatus(ctx context.Context, id models.ID, status models.RequestStatus) ([]models.BookRequest, error) {
	body, err := json.Marshal(struct {
		Status models.RequestStatus `json:"status"`
	}{status})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s/books/%s/", c.baseURL, id), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}

	var updated models.BookRequest
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, fmt.Errorf("decoding updated request: %w", err)
	}
	return []models.BookRequest{updated}, nil
}

// Delete removes the record. Both a generic success status and no-content
// count as success. The endpoint holds the collection, so nil is returned
// and the caller updates its own snapshot.
func (c *Client) Delete(ctx context.Context, id models.ID) ([]models.BookRequest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/books/%s/", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deleting request: %w", err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, c.responseError(resp)
	}
	return nil, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// responseError translates a non-success response into a single error
// carrying the server's detail message when one is present.
func (c *Client) responseError(resp *http.Response) error {
	err := func() error {
		var body struct {
			Detail string `json:"detail"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Detail != "" {
			return fmt.Errorf("%s", body.Detail)
		}
		return fmt.Errorf("HTTP error %d", resp.StatusCode)
	}()
	c.logger.Warn("Collection endpoint returned an error",
		zap.Int("status", resp.StatusCode),
		zap.String("url", resp.Request.URL.String()),
		zap.Error(err),
	)
	return err
}
