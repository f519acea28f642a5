package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, StorageDisk, cfg.Storage)
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Watcher.Debounce)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, StorageDisk, cfg.Storage)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
workers: 3
storage: sqlite
resource_dir: /usr/lib/cindex
uri_schemes: [file, test]
watcher:
  enabled: false
  debounce: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "/usr/lib/cindex", cfg.ResourceDir)
	assert.Equal(t, []string{"file", "test"}, cfg.URISchemes)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Watcher.Debounce)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nstorage: disk\n"), 0644))

	t.Setenv("CINDEX_WORKERS", "7")
	t.Setenv("CINDEX_STORAGE", "none")
	t.Setenv("CINDEX_URI_SCHEMES", "file,custom")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, StorageNone, cfg.Storage)
	assert.Equal(t, []string{"file", "custom"}, cfg.URISchemes)
}

func TestValidate(t *testing.T) {
	t.Run("rejects negative workers", func(t *testing.T) {
		cfg := Default()
		cfg.Workers = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown storage", func(t *testing.T) {
		cfg := Default()
		cfg.Storage = "floppy"
		assert.Error(t, cfg.Validate())
	})

	t.Run("normalizes zero workers", func(t *testing.T) {
		cfg := Default()
		cfg.Workers = 0
		require.NoError(t, cfg.Validate())
		assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("workers: [oops"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
