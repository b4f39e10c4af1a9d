package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// HTTPStore is a client for a remote image store service speaking the
// posterbox wire format:
//
//	POST {base}/image          multipart form, field "file"  -> {"id": "..."}
//	POST {base}/image/url      {"url": "..."}                -> {"id": "..."}
//	GET  {base}/image/{id}     image bytes
//
// A 422 response is the store saying no (a rejection, empty id, nil error);
// every other non-2xx status and every network failure is an error.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a client for the store service at baseURL.
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (s *HTTPStore) WithHTTPClient(c *http.Client) *HTTPStore {
	if c != nil {
		s.client = c
	}
	return s
}

// SaveImage uploads data as a multipart form.
func (s *HTTPStore) SaveImage(ctx context.Context, data []byte, filename string) (ImageID, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("http store: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("http store: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("http store: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/image", &body)
	if err != nil {
		return "", fmt.Errorf("http store: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return s.do(req)
}

// SaveImageFromURL asks the store service to fetch url itself.
func (s *HTTPStore) SaveImageFromURL(ctx context.Context, url string) (ImageID, error) {
	payload, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return "", fmt.Errorf("http store: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/image/url", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("http store: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

// PreviewURL returns the serving URL for a stored image.
func (s *HTTPStore) PreviewURL(id ImageID) string {
	return s.baseURL + "/image/" + string(id)
}

func (s *HTTPStore) do(req *http.Request) (ImageID, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http store: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return "", nil
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return "", ErrTooLarge
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("http store: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return "", fmt.Errorf("http store: decode response: %w", err)
	}
	return ImageID(result.ID), nil
}
