package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMedia is returned by a Model that cannot accept one of the
// request's media parts.
var ErrUnsupportedMedia = errors.New("media type not supported by model")

// Media is one binary attachment sent alongside a prompt.
type Media struct {
	Data     []byte
	MimeType string
}

// IsVideo reports whether the attachment is a video.
func (m Media) IsVideo() bool {
	return strings.HasPrefix(m.MimeType, "video/")
}

type Request struct {
	System string
	Prompt string
	Media  []Media
	// WebSearch asks the backend to ground its answer with a web search
	// where it supports one. Backends without search ignore it.
	WebSearch bool
}

// Model is a hosted or local generative model that returns text.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// StripFences removes a surrounding markdown code fence (```json or ```)
// from model output and trims whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// Drop the info string (e.g. "json") up to the first newline.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if info := strings.TrimSpace(body[:nl]); !strings.ContainsAny(info, "{[") {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// DecodeJSON strips fences from raw and decodes it into v. When the text is
// still not valid JSON, the outermost {...} span is decoded instead.
func DecodeJSON(raw string, v any) error {
	s := StripFences(raw)
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	open := strings.IndexByte(s, '{')
	closing := strings.LastIndexByte(s, '}')
	if open < 0 || closing <= open {
		return fmt.Errorf("model output is not JSON: %q", truncate(s, 200))
	}
	if err := json.Unmarshal([]byte(s[open:closing+1]), v); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
