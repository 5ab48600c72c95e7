package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	requestTimeout = 2 * time.Minute
)

// harmCategories are relaxed to BLOCK_NONE: medical device photos and
// symptom questions otherwise trip the default filters.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

type request struct {
	SystemInstruction *content       `json:"system_instruction,omitempty"`
	Contents          []content      `json:"contents"`
	SafetySettings    []safety       `json:"safetySettings"`
	Tools             []tool         `json:"tools,omitempty"`
	GenerationConfig  map[string]any `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type safety struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type Model struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func New(apiKey, model string) *Model {
	return &Model{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: defaultBaseURL,
	}
}

func buildRequest(req llm.Request) request {
	parts := []part{{Text: req.Prompt}}
	for _, m := range req.Media {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: m.MimeType,
			Data:     base64.StdEncoding.EncodeToString(m.Data),
		}})
	}

	body := request{
		Contents: []content{{Role: "user", Parts: parts}},
	}
	if req.System != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	for _, c := range harmCategories {
		body.SafetySettings = append(body.SafetySettings, safety{Category: c, Threshold: "BLOCK_NONE"})
	}
	if req.WebSearch {
		body.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	return body
}

func (m *Model) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", m.baseURL, url.PathEscape(m.model))
}

// Generate calls generateContent with images or video attached inline and
// returns the concatenated text parts of the first candidate.
func (m *Model) Generate(ctx context.Context, req llm.Request) (string, error) {
	payload, err := json.Marshal(buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", m.apiKey)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close gemini response body", "error", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = string(raw)
		}
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, msg)
	}

	return parseText(raw)
}

func parseText(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", errors.New("gemini returned invalid JSON")
	}
	if reason := gjson.GetBytes(raw, "promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", reason)
	}

	var text strings.Builder
	for _, p := range gjson.GetBytes(raw, "candidates.0.content.parts.#.text").Array() {
		text.WriteString(p.String())
	}
	if text.Len() == 0 {
		finish := gjson.GetBytes(raw, "candidates.0.finishReason").String()
		return "", fmt.Errorf("gemini returned no text (finish reason %q)", finish)
	}
	return text.String(), nil
}
