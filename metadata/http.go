package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vidserve/models"
)

// HTTPStore reaches the metadata service over its internal REST API.
type HTTPStore struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPStore creates a client for the service at baseURL. token is
// sent as a bearer token on every request.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *HTTPStore) do(req *http.Request) (*http.Response, error) {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.client.Do(req)
}

// GetFileMeta fetches the record for a file id.
func (s *HTTPStore) GetFileMeta(ctx context.Context, id string) (models.FileMeta, error) {
	endpoint := s.baseURL + "/internal/files/" + url.PathEscape(id) + "/meta"
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return models.FileMeta{}, fmt.Errorf("failed to create metadata request: %w", err)
	}

	resp, err := s.do(req)
	if err != nil {
		return models.FileMeta{}, fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.FileMeta{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return models.FileMeta{}, fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	var meta models.FileMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return models.FileMeta{}, fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return meta, nil
}

// SetCompressionStatus pushes the terminal job outcome for a source.
func (s *HTTPStore) SetCompressionStatus(ctx context.Context, sourceID string, status models.JobStatus, qualities []string) error {
	payload, err := json.Marshal(map[string]any{
		"sourceId":  sourceID,
		"status":    string(status),
		"qualities": qualities,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal compression status: %w", err)
	}

	endpoint := s.baseURL + "/internal/files/compression-status"
	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}
	return nil
}
