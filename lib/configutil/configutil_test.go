package configutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string   `json:"name"`
	Retries int      `json:"retries"`
	Tags    []string `json:"tags"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comment
		name: "base",
		retries: 3,
		tags: ["a"],
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{retries: 5}`), 0644))

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "base", Retries: 5, Tags: []string{"a"}}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "app.json5"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	cfg, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "app.json5"), testConfig{Name: "default"})
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "default"}, cfg)
}

func TestReadConfigWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{name: "set"}`), 0644))

	cfg, err := ReadConfigWithDefaults(path, testConfig{Name: "default", Retries: 2})
	require.NoError(t, err)
	require.Equal(t, testConfig{Name: "set", Retries: 2}, cfg)
}

func TestReadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{name: `), 0644))

	_, err := ReadConfig[testConfig](path)
	require.Error(t, err)
	require.False(t, errors.Is(err, os.ErrNotExist))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandHome("~/.config/app.json5")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config/app.json5"), expanded)

	unchanged, err := ExpandHome("/etc/app.json5")
	require.NoError(t, err)
	require.Equal(t, "/etc/app.json5", unchanged)
}
