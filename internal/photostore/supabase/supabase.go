package supabase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
)

const requestTimeout = 30 * time.Second

// Store talks to the Supabase Storage REST API for one bucket. Objects are
// read back through the bucket's public URL.
type Store struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func New(projectURL, apiKey, bucket string) *Store {
	return &Store{
		baseURL: strings.TrimRight(projectURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (s *Store) objectURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, photostore.EscapeKey(key))
}

func (s *Store) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
	return req, nil
}

// Save uploads with x-upsert so re-listing the same file replaces it.
func (s *Store) Save(ctx context.Context, key, mimeType string, r io.Reader) error {
	req, err := s.newRequest(ctx, http.MethodPost, s.objectURL(key), r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload to storage: %w", err)
	}
	defer closeBody(resp)

	if resp.StatusCode/100 != 2 {
		return responseError(resp)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.objectURL(key), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download from storage: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		// Storage reports a missing object as 400 with an inner 404 on some versions.
		closeBody(resp)
		return nil, "", photostore.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		defer closeBody(resp)
		return nil, "", responseError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (s *Store) URL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, photostore.EscapeKey(key))
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	return fmt.Errorf("storage returned status %d: %s", resp.StatusCode, msg)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Error("failed to close storage response body", "error", err)
	}
}
