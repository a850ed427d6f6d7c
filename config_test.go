package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c, err := NewConfigFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 1.0, c.ExportScale)
	assert.True(t, c.Confirmations)
	assert.Empty(t, c.APIURL)
}

func TestConfigFromYAML(t *testing.T) {
	c, err := NewConfigFromReader(strings.NewReader(`
saveDirectory: /tmp/decks
apiURL: https://api.example.com/v1
apiToken: abc
logLevel: debug
exportScale: 2
confirmations: false
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/decks", c.SaveDirectory)
	assert.Equal(t, "https://api.example.com/v1", c.APIURL)
	assert.Equal(t, "abc", c.APIToken)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 2.0, c.ExportScale)
	assert.False(t, c.Confirmations)
}

func TestConfigValidation(t *testing.T) {
	for _, body := range []string{
		"logLevel: loud",
		"exportScale: 0",
		"exportScale: 20",
		"apiURL: not a url",
		"saveDirectory: [",
	} {
		_, err := NewConfigFromReader(strings.NewReader(body))
		assert.Error(t, err, body)
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("SLIDEDECK_API_URL", "http://localhost:9000")
	t.Setenv("SLIDEDECK_API_TOKEN", "from-env")
	t.Setenv("SLIDEDECK_LOG_LEVEL", "WARN")

	c, err := NewConfigFromReader(strings.NewReader("apiURL: https://file.example.com\napiToken: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.APIURL)
	assert.Equal(t, "from-env", c.APIToken)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slidedeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exportScale: 3\n"), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3.0, c.ExportScale)

	c, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default.ExportScale, c.ExportScale)
}

func TestGetSavePath(t *testing.T) {
	c := &Config{}
	assert.Equal(t, "deck.json", c.GetSavePath("deck.json"))

	dir := filepath.Join(t.TempDir(), "decks")
	c.SaveDirectory = dir
	assert.Equal(t, filepath.Join(dir, "deck.json"), c.GetSavePath("deck.json"))
	assert.DirExists(t, dir)
	assert.Equal(t, "/abs/deck.json", c.GetSavePath("/abs/deck.json"))
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "slidedeck.log")
	c := Default
	c.LogFile = path
	c.LogLevel = "debug"

	l, closer, err := c.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.WithField("slide_id", "s1").Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slide_id=s1")
	assert.Contains(t, string(data), "msg=hello")
}

func TestNewLoggerWithoutFileDiscards(t *testing.T) {
	c := Default
	l, closer, err := c.NewLogger()
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, closer.Close())

	c.LogLevel = "bogus"
	_, _, err = c.NewLogger()
	assert.Error(t, err)
}
