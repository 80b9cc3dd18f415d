package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ytfeed/cmd/ytfeed/commands"
	"ytfeed/lib/osutil"
	"ytfeed/lib/telemetry"
)

func main() {
	ctx, stop := osutil.SignalContext()
	defer stop()

	tel, err := telemetry.SetupFromEnv(ctx, "ytfeed")
	if err != nil {
		osutil.Fatal("failed to setup telemetry", err)
	}
	if tel.PerfStats {
		telemetry.InstrumentPerfStats(ctx)
	}

	code := commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
	if code != 0 {
		cancel()
		stop()
		os.Exit(code)
	}
}
