package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

// maxContextImages caps the reference image links put into a prompt.
const maxContextImages = 2

// DeviceContext describes the listing the user is asking about.
type DeviceContext struct {
	DeviceName  string   `json:"device_name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

type ChatService struct {
	model     llm.Model
	webSearch bool
	recorder  Recorder
	logger    *slog.Logger
}

func NewChatService(model llm.Model, webSearch bool, recorder Recorder, logger *slog.Logger) *ChatService {
	return &ChatService{model: model, webSearch: webSearch, recorder: recorderOrNop(recorder), logger: logger}
}

// Reply answers one user message, scoped to a device when dc is non-nil.
func (s *ChatService) Reply(ctx context.Context, message string, dc *DeviceContext) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.Invalid("message is required")
	}

	start := time.Now()
	reply, err := s.model.Generate(ctx, llm.Request{
		System:    chatSystem,
		Prompt:    buildChatPrompt(message, dc),
		WebSearch: s.webSearch,
	})
	s.recorder.ModelCall("chat", err, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("chat model call failed: %w", err)
	}

	s.logger.Info("chat reply generated", "device_scoped", dc != nil, "reply_chars", len(reply))
	return strings.TrimSpace(reply), nil
}

func buildChatPrompt(message string, dc *DeviceContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n", message)
	if dc == nil {
		return b.String()
	}

	b.WriteString("\n--- DEVICE CONTEXT ---\n")
	b.WriteString("You are the expert companion for this specific piece of equipment:\n")
	fmt.Fprintf(&b, "Name: %s\n", orUnknown(dc.DeviceName))
	fmt.Fprintf(&b, "Category: %s\n", orUnknown(dc.Category))
	if dc.Description != "" {
		fmt.Fprintf(&b, "Description/Specs: %s\n", dc.Description)
	}
	if len(dc.Images) > 0 {
		images := dc.Images
		if len(images) > maxContextImages {
			images = images[:maxContextImages]
		}
		fmt.Fprintf(&b, "Image Links (reference only): %s\n", strings.Join(images, ", "))
	}
	b.WriteString("Instructions: give safe, clear, step-by-step operating instructions for this device. ")
	b.WriteString("If asked about something the description does not cover, use general knowledge of this model or type but answer as if you know this unit.\n")
	b.WriteString("----------------------\n")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
