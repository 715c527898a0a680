package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Bot.Token)
	assert.Equal(t, "8443", cfg.Bot.Webhook.ListenPort)
	assert.Equal(t, 3, cfg.Moderation.MaxWarnings)
	assert.Equal(t, 10, cfg.Moderation.MuteDurationMin)
	assert.Equal(t, 180, cfg.Moderation.NoticeTTLSeconds)
	assert.Equal(t, 3, cfg.Moderation.AppealQuota)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.GeminiModel)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
moderation:
  max_warnings: 5
  mute_duration_min: 30
  owner_id: 777
ai:
  gemini_api_key: "key"
  gemini_model: "gemini-2.0-pro"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Moderation.MaxWarnings)
	assert.Equal(t, 30, cfg.Moderation.MuteDurationMin)
	assert.Equal(t, int64(777), cfg.Moderation.OwnerID)
	assert.Equal(t, "gemini-2.0-pro", cfg.AI.GeminiModel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}
