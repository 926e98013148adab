package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/stockpro")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.PTAXTTL)
	assert.Equal(t, "stockpro-attachments", cfg.Minio.Bucket)
	assert.True(t, cfg.Log.Development)
	assert.Empty(t, cfg.Rules.Items)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/stockpro")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("PTAX_CACHE_TTL", "30m")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Redis.PTAXTTL)
	assert.False(t, cfg.Log.Development)
}

func TestLoadRulesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
items:
  - name: min-stock
    expression: "int(self.minQuantity) <= int(self.quantity)"
    message: "quantidade abaixo do estoque mínimo"
suppliers:
  - name: fda-required
    expression: "has(self.fda)"
    message: "fornecedor sem registro FDA"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("DATABASE_URL", "postgres://localhost/stockpro")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("RULES_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Rules.Items, 1)
	assert.Equal(t, "min-stock", cfg.Rules.Items[0].Name)
	assert.Equal(t, "quantidade abaixo do estoque mínimo", cfg.Rules.Items[0].Message)
	require.Len(t, cfg.Rules.Suppliers, 1)
	assert.Equal(t, "fda-required", cfg.Rules.Suppliers[0].Name)
}
