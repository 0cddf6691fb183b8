package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ConfigurationName), []byte(contents), 0600)
	require.NoError(t, err)
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, "prompt: 'test> '\npath: [/bin]\nnotify_done: false\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "test> ", cfg.Prompt)
	assert.Equal(t, []string{"/bin"}, cfg.Path)
	assert.False(t, cfg.NotifyDone)

	// Pointing at the file itself also works.
	cfg, err = Load(filepath.Join(dir, ConfigurationName))
	require.NoError(t, err)
	assert.Equal(t, "test> ", cfg.Prompt)
}

func TestLoadMissingFallsBackToDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := writeConfig(t, "prompt: 'x'\npath: [/bin]\nbogus_field: 1\n")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := writeConfig(t, "prompt: 'x'\npath: []\n")
	_, err := Load(dir)
	assert.Error(t, err)
}
