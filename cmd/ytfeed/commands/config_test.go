package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytfeed/lib/platforms/youtube/core"

	"github.com/stretchr/testify/require"
)

func withFlags(t *testing.T, config, cookies, dumpDir string) {
	saved := rootFlags
	t.Cleanup(func() { rootFlags = saved })
	rootFlags.config = config
	rootFlags.cookies = cookies
	rootFlags.dumpDir = dumpDir
}

func TestReadConfigDefaults(t *testing.T) {
	withFlags(t, filepath.Join(t.TempDir(), "ytfeed.json5"), "", "")

	cfg, err := readConfig()
	require.NoError(t, err)
	require.Equal(t, defaultConfig, cfg)
}

func TestReadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ytfeed.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// json5 allows comments
		cookie_file: "/tmp/cookies.txt",
		requests_per_second: 0.5,
	}`), 0644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "ytfeed.local.json5"),
		[]byte(`{dump_dir: "/tmp/dump"}`),
		0644,
	))
	withFlags(t, path, "/tmp/other-cookies.txt", "")

	cfg, err := readConfig()
	require.NoError(t, err)
	require.Equal(t, Config{
		CookieFile:        "/tmp/other-cookies.txt",
		Origin:            core.DefaultOrigin,
		RequestsPerSecond: 0.5,
		TimeoutSeconds:    30,
		DumpDir:           "/tmp/dump",
	}, cfg)
}

func TestNotDone(t *testing.T) {
	require.NoError(t, notDone(true, "unused"))
	require.True(t, errors.Is(notDone(false, "failed"), errNotDone))
}

func TestRegistrableDomain(t *testing.T) {
	require.Equal(t, "youtube.com", registrableDomain("www.youtube.com"))
	require.Equal(t, "127.0.0.1", registrableDomain("127.0.0.1"))
}
