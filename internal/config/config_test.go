package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_DRIVER", "IMPORT_MAX_ROWS", "IMPORT_HEADER_SCAN_ROWS", "IMPORT_HEADER_MIN_MATCHES", "IMPORT_CATALOG_CHUNK_SIZE", "CORS_ORIGINS", "MINIO_USE_SSL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5000, cfg.Import.MaxRows)
	assert.Equal(t, 40, cfg.Import.HeaderScanRows)
	assert.Equal(t, 3, cfg.Import.HeaderMinMatches)
	assert.Equal(t, 500, cfg.Import.CatalogChunkSize)
	assert.Nil(t, cfg.CORSOrigins)
	assert.False(t, cfg.MinIOUseSSL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("IMPORT_MAX_ROWS", "200")
	t.Setenv("IMPORT_CATALOG_CHUNK_SIZE", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local,")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 200, cfg.Import.MaxRows)
	assert.Equal(t, 500, cfg.Import.CatalogChunkSize)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORSOrigins)
	assert.True(t, cfg.MinIOUseSSL)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, true},
		{"zero rows", func(c *Config) { c.Import.MaxRows = 0 }, true},
		{"negative chunk", func(c *Config) { c.Import.CatalogChunkSize = -1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{StoreDriver: StoreDriverMemory, Import: ImportConfig{MaxRows: 10, CatalogChunkSize: 5, MaxUploadMB: 1}}
			tc.mutate(cfg)
			if tc.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
