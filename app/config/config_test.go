package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
openai:
  classifier:
    base_url: https://api.groq.com/openai/v1
    token: gsk-classifier
    model: llama
  reply:
    base_url: https://api.groq.com/openai/v1
    token: gsk-reply
    model: llama
  embedding:
    base_url: https://api.openai.com/v1
    token: sk-embed
    model: text-embedding-3-small
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Server.Listen)
	assert.Equal(t, "*", cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://localhost:8000", cfg.Chroma.URL)
	assert.Equal(t, "recipestest", cfg.Chroma.Collection)
	assert.Equal(t, 12, cfg.Dialogue.MemoryWindow)
	require.NotNil(t, cfg.Dialogue.ClassifierContext)
	assert.Equal(t, 10, *cfg.Dialogue.ClassifierContext)
	assert.Equal(t, 5, cfg.Dialogue.MaxCandidates)
	assert.Equal(t, "/new", cfg.Dialogue.ResetCommand)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Empty(t, cfg.MCP.Listen)
	assert.Empty(t, cfg.Yandex.SpeechKit.KeyFile)
	assert.Empty(t, cfg.OpenAI.Transcription.Model)
	assert.Equal(t, "ar", cfg.OpenAI.Transcription.Language)
}

func TestLoadFile_ZeroClassifierContext(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, minimalConfig+`
dialogue:
  classifier_context: 0
`))
	require.NoError(t, err)

	require.NotNil(t, cfg.Dialogue.ClassifierContext)
	assert.Equal(t, 0, *cfg.Dialogue.ClassifierContext)
}

func TestLoadFile_Transcription(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, minimalConfig+`  transcription:
    base_url: https://api.groq.com/openai/v1
    token: gsk-whisper
    model: whisper-large-v3
`))
	require.NoError(t, err)

	assert.Equal(t, "whisper-large-v3", cfg.OpenAI.Transcription.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.OpenAI.Transcription.BaseURL)
	assert.Equal(t, "ar", cfg.OpenAI.Transcription.Language)
}

func TestLoadFile_Overrides(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, minimalConfig+`
dialogue:
  memory_window: 6
  max_candidates: 3
  reset_command: /reset
storage:
  data_dir: /var/lib/recipechat
mcp:
  listen: ":9000"
`))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Dialogue.MemoryWindow)
	assert.Equal(t, 3, cfg.Dialogue.MaxCandidates)
	assert.Equal(t, "/reset", cfg.Dialogue.ResetCommand)
	assert.Equal(t, "/var/lib/recipechat", cfg.Storage.DataDir)
	assert.Equal(t, ":9000", cfg.MCP.Listen)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing models",
			content: "server:\n  listen: \":8001\"\n",
		},
		{
			name:    "window out of range",
			content: minimalConfig + "dialogue:\n  memory_window: 1000\n",
		},
		{
			name:    "negative classifier context",
			content: minimalConfig + "dialogue:\n  classifier_context: -1\n",
		},
		{
			name:    "bad transcription url",
			content: minimalConfig + "  transcription:\n    base_url: not a url\n",
		},
		{
			name:    "broken yaml",
			content: "openai: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
