package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

const requestTimeout = 5 * time.Minute

type Model struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Model {
	return &Model{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Generate uses the non-streaming /api/generate endpoint. Images are sent
// base64-encoded; video and web search are not supported.
func (m *Model) Generate(ctx context.Context, req llm.Request) (string, error) {
	images := make([]string, 0, len(req.Media))
	for _, media := range req.Media {
		if !strings.HasPrefix(media.MimeType, "image/") {
			return "", fmt.Errorf("ollama cannot read %s: %w", media.MimeType, llm.ErrUnsupportedMedia)
		}
		images = append(images, base64.StdEncoding.EncodeToString(media.Data))
	}

	reqBody := map[string]interface{}{
		"model":  m.model,
		"prompt": req.Prompt,
		"stream": false,
	}
	if req.System != "" {
		reqBody["system"] = req.System
	}
	if len(images) > 0 {
		reqBody["images"] = images
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return respBody.Response, nil
}
