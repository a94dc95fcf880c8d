package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FDV_HOST", "FDV_PORT", "FDV_PORT_SCAN", "FDV_THEME", "FDV_DATASET", "FDV_DATASET_FILE", "FDV_LOG_LEVEL", "FDV_DEV_LOG"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "127.0.0.1:8765", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "fdv.yaml")
	require.NoError(t, os.WriteFile(p, []byte("port: 9000\ntheme: LIGHT\ndataset: v0.5\nlog_level: debug\n"), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.Equal(t, "v0.5", cfg.Dataset)

	t.Setenv("FDV_PORT", "9100")
	t.Setenv("FDV_THEME", "plain")
	t.Setenv("FDV_DEV_LOG", "true")
	t.Setenv("FDV_PORT_SCAN", "nope")
	cfg, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, ThemePlain, cfg.Theme)
	assert.True(t, cfg.DevLog)
	assert.Equal(t, 10, cfg.PortScan)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cases := map[string]string{
		"theme":   "theme: neon\n",
		"port":    "port: 70000\n",
		"dataset": "dataset: v9\n",
		"level":   "log_level: loud\n",
		"yaml":    "port: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
			_, err := Load(p)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_DatasetFileSkipsVariantCheck(t *testing.T) {
	cfg := Defaults()
	cfg.Dataset = "custom"
	cfg.DatasetFile = "/tmp/custom.yaml"
	assert.NoError(t, cfg.Validate())
}
