package config

import (
	"os"
	"path/filepath"
	"testing"

	"neighborly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: neighborly
  environment: test
database:
  path: /tmp/neighborly-test.db
api:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.True(t, cfg.API.HTTP.Enabled)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, "communityPost", cfg.Ingest.UploadFolder)
	assert.Equal(t, int64(10<<20), cfg.Ingest.MaxImageBytes)
	assert.NotEmpty(t, cfg.Categories)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: neighborly
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestLoad_StorageRequiresCredentials(t *testing.T) {
	path := writeTempConfig(t, `
database:
  path: /tmp/neighborly-test.db
storage:
  endpoint: localhost:9000
  bucket: listings
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("NEIGHBORLY_DB_PATH", "/tmp/expanded.db")

	path := writeTempConfig(t, `
database:
  path: ${NEIGHBORLY_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
}

func TestValidateListings(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		err := ValidateListings([]models.Listing{
			{ID: "1", Title: "Power Drill"},
			{ID: "2", Title: "Lawn Mower"},
		})
		assert.NoError(t, err)
	})

	t.Run("EmptyID", func(t *testing.T) {
		err := ValidateListings([]models.Listing{{Title: "Power Drill"}})
		assert.Error(t, err)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		err := ValidateListings([]models.Listing{
			{ID: "1", Title: "Power Drill"},
			{ID: "1", Title: "Lawn Mower"},
		})
		assert.Error(t, err)
	})
}
