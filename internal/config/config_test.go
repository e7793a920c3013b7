package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.BulletCount)
	assert.Equal(t, 24, cfg.RecencyWindowHours)
	assert.Equal(t, 12, cfg.MaxItems)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, "2024-12-01-preview", cfg.AOAIAPIVersion)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("SUMMARY_BULLET_COUNT", "5")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AOAI_DEPLOYMENT", "gpt-4o-mini")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.BulletCount)
	assert.Equal(t, "https://example.openai.azure.com", cfg.AOAIEndpoint)
	assert.Equal(t, "gpt-4o-mini", cfg.AOAIDeployment)
}

func TestLoadAOAIPrimaryNameWins(t *testing.T) {
	t.Setenv("AOAI_ENDPOINT", "https://primary.openai.azure.com")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://secondary.openai.azure.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://primary.openai.azure.com", cfg.AOAIEndpoint)
}

func TestValidateRejectsBadBulletCount(t *testing.T) {
	t.Setenv("SUMMARY_BULLET_COUNT", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SUMMARY_BULLET_COUNT", "11")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateRejectsBadWindow(t *testing.T) {
	t.Setenv("RECENCY_WINDOW_HOURS", "200")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	body := `sources:
  - name: Security Blog
    url: https://example.com/security/feed
    emoji: "🛡️"
  - name: Azure Updates
    url: https://example.com/azure/feed
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "Security Blog", sources[0].Name)
	assert.Equal(t, "https://example.com/azure/feed", sources[1].URL)
	assert.Equal(t, "🛡️", sources[0].Emoji)
	assert.Equal(t, "", sources[1].Emoji)
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
