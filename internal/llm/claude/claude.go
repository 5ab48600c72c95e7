package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

// maxTokens bounds a single reply. Audit verdicts and chat answers both fit
// comfortably; longer replies are truncated by the API.
const maxTokens = 2048

type Model struct {
	client *anthropic.Client
	model  string
}

type Option func(*options)

type options struct {
	baseURL string
}

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

func New(apiKey, model string, opts ...Option) *Model {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []anthropic.ClientOption
	if o.baseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(o.baseURL))
	}

	return &Model{
		client: anthropic.NewClient(apiKey, clientOpts...),
		model:  model,
	}
}

// Generate sends the prompt and any images as a single user turn. Video is
// not accepted by the Messages API and yields llm.ErrUnsupportedMedia.
// WebSearch is ignored.
func (m *Model) Generate(ctx context.Context, req llm.Request) (string, error) {
	content := make([]anthropic.MessageContent, 0, len(req.Media)+1)
	for _, media := range req.Media {
		if !strings.HasPrefix(media.MimeType, "image/") {
			return "", fmt.Errorf("claude cannot read %s: %w", media.MimeType, llm.ErrUnsupportedMedia)
		}
		content = append(content, anthropic.NewImageMessageContent(
			anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64,
				normaliseMIME(media.MimeType),
				base64.StdEncoding.EncodeToString(media.Data),
			),
		))
	}
	content = append(content, anthropic.NewTextMessageContent(req.Prompt))

	resp, err := m.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(m.model),
		System:    req.System,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: content,
		}},
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("claude returned %s: %s", apiErr.Type, apiErr.Message)
		}
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", errors.New("claude returned no text content")
	}
	return text, nil
}

// normaliseMIME maps image types to the four the Messages API accepts.
// Anything else is sent as jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
