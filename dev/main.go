package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "ytfeed/dev/env"
)

const youtubeTemplate = `{
  // a Netscape cookies.txt export of a signed in browser,
  // <dev_state>/ resolves to this directory.
  cookie_file: "<dev_state>/cookies.txt",
  // a playlist the live tests list, it is never modified.
  playlist_id: "WL",
}
`

const telemetryTemplate = `{
  otlp: {
    traces: { http_endpoint: "" },
    metrics: { http_endpoint: "" },
  },
  perf_stats: false,
}
`

func writeTemplate(path, contents string, recreate bool) error {
	_, err := os.Stat(path)
	if err == nil && !recreate {
		slog.Info("keeping existing file", "path", path)
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	slog.Info("writing template", "path", path)
	return os.WriteFile(path, []byte(contents), 0600)
}

func create(recreate bool) error {
	root, err := devenv.GetWorkspaceRoot()
	if err != nil {
		return fmt.Errorf("the dev environment must be created inside the repository (below the 'go.mod' file): %w", err)
	}

	state := filepath.Join(root, "dev", ".state")
	err = os.MkdirAll(state, 0777)
	if err != nil {
		return err
	}

	err = writeTemplate(filepath.Join(state, devenv.YouTubeTestConfigFile), youtubeTemplate, recreate)
	if err != nil {
		return err
	}
	return writeTemplate(filepath.Join(root, "telemetry.json5"), telemetryTemplate, recreate)
}

func main() {
	recreate := flag.Bool("recreate", false, "overwrite existing config files with the templates")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
