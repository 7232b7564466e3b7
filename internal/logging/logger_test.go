package logging

import (
	"os"
	"path/filepath"
	"testing"

	"neighborly/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{}, config.AppConfig{Name: "neighborly"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.NotNil(t, logger)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closer, err := New(
		config.LoggingConfig{Level: "debug", Output: "file", FilePath: path},
		config.AppConfig{Name: "neighborly", Environment: "test"},
	)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info().Msg("hello")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNew_FileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, config.AppConfig{})
	assert.Error(t, err)
}

func TestComponent(t *testing.T) {
	logger, _, err := New(config.LoggingConfig{}, config.AppConfig{})
	require.NoError(t, err)

	child := Component(logger, "catalog")
	assert.NotNil(t, child)
}
