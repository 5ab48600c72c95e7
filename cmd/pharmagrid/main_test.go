package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/config"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/claude"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/gemini"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm/ollama"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore/local"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore/supabase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrateCommandArgs(t *testing.T) {
	for _, args := range [][]string{{"migrate"}, {"migrate", "sideways"}, {"migrate", "up", "down"}} {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		assert.Error(t, cmd.Execute(), "args %v", args)
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", t.TempDir()+"/pharmagrid.db")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")

	require.NoError(t, runMigrate("", true))
	require.NoError(t, runMigrate("", true))
	require.NoError(t, runMigrate("", false))
}

func TestNewModel(t *testing.T) {
	logger := discardLogger()

	m, err := newModel(&config.Config{ModelBackend: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-flash-latest"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Model{}, m)

	m, err = newModel(&config.Config{ModelBackend: "claude", ClaudeAPIKey: "k", ClaudeModel: "claude-sonnet-4-5"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &claude.Model{}, m)

	m, err = newModel(&config.Config{ModelBackend: "ollama", OllamaHost: "http://localhost:11434", OllamaModel: "llava"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &ollama.Model{}, m)

	_, err = newModel(&config.Config{ModelBackend: "gemini"}, logger)
	assert.Error(t, err)
	_, err = newModel(&config.Config{ModelBackend: "gpt"}, logger)
	assert.Error(t, err)
}

func TestNewPhotoStore(t *testing.T) {
	logger := discardLogger()

	ps, err := newPhotoStore(&config.Config{PhotoBackend: "local", PhotoPath: t.TempDir(), PublicBaseURL: "http://localhost:3000"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &local.Store{}, ps)

	ps, err = newPhotoStore(&config.Config{PhotoBackend: "supabase", SupabaseURL: "https://x.supabase.co", SupabaseKey: "k", SupabaseBucket: "device-images"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &supabase.Store{}, ps)

	_, err = newPhotoStore(&config.Config{PhotoBackend: "supabase"}, logger)
	assert.Error(t, err)
	_, err = newPhotoStore(&config.Config{PhotoBackend: "s3"}, logger)
	assert.Error(t, err)
}

func TestNewLimiters_InProcess(t *testing.T) {
	lim, err := newLimiters(context.Background(), &config.Config{ScanAttempts: 2, AIRequestsPerMin: 0}, discardLogger())
	require.NoError(t, err)
	defer lim.release()

	assert.Nil(t, lim.ai)
	assert.Len(t, lim.memory, 1)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := lim.scan.Allow(ctx, "booking-1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := lim.scan.Allow(ctx, "booking-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewLimiters_UnreachableRedis(t *testing.T) {
	_, err := newLimiters(context.Background(), &config.Config{RedisAddr: "127.0.0.1:1", ScanAttempts: 5}, discardLogger())
	assert.Error(t, err)
}
