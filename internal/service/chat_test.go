package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

func TestChatReply_General(t *testing.T) {
	model := &stubModel{reply: "  Drink water.\n"}
	rec := &recordingRecorder{}
	svc := NewChatService(model, true, rec, discardLogger())

	reply, err := svc.Reply(context.Background(), "I have a headache", nil)
	require.NoError(t, err)

	assert.Equal(t, "Drink water.", reply)
	assert.Equal(t, "User Query: I have a headache\n", model.last.Prompt)
	assert.Equal(t, chatSystem, model.last.System)
	assert.True(t, model.last.WebSearch)
	assert.Empty(t, model.last.Media)
	assert.Equal(t, []string{"chat:ok"}, rec.modelCalls)
}

func TestChatReply_DeviceContext(t *testing.T) {
	model := &stubModel{reply: "Step 1"}
	svc := NewChatService(model, false, nil, discardLogger())

	_, err := svc.Reply(context.Background(), "How do I start it?", &DeviceContext{
		DeviceName:  "Philips CPAP",
		Category:    "Respiratory",
		Description: "DreamStation",
		Images:      []string{"https://a", "https://b", "https://c"},
	})
	require.NoError(t, err)

	p := model.last.Prompt
	assert.True(t, strings.HasPrefix(p, "User Query: How do I start it?\n"))
	assert.Contains(t, p, "Name: Philips CPAP\n")
	assert.Contains(t, p, "Category: Respiratory\n")
	assert.Contains(t, p, "Description/Specs: DreamStation\n")
	assert.Contains(t, p, "https://a, https://b\n")
	assert.NotContains(t, p, "https://c")
	assert.False(t, model.last.WebSearch)
}

func TestBuildChatPrompt_SparseContext(t *testing.T) {
	p := buildChatPrompt("hi", &DeviceContext{})

	assert.Contains(t, p, "Name: Unknown\n")
	assert.Contains(t, p, "Category: Unknown\n")
	assert.NotContains(t, p, "Description/Specs")
	assert.NotContains(t, p, "Image Links")
}

func TestChatReply_Errors(t *testing.T) {
	svc := NewChatService(&stubModel{err: errors.New("unavailable")}, false, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.Reply(ctx, "   ", nil)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Reply(ctx, "hello", nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrValidation))
}
