package commands

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ytfeed/internal/components/chrono"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/configutil"
	"ytfeed/lib/platforms/youtube/account"
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/restyutil"
)

const defaultConfigPath = "~/.config/ytfeed/ytfeed.json5"

type Config struct {
	CookieFile        string  `json:"cookie_file"`
	Origin            string  `json:"origin"`
	BaseUrl           string  `json:"base_url"`
	UserAgent         string  `json:"user_agent"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	DumpDir           string  `json:"dump_dir"`
}

var defaultConfig = Config{
	CookieFile:     "~/.config/ytfeed/cookies.txt",
	Origin:         core.DefaultOrigin,
	TimeoutSeconds: 30,
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(rootFlags.config, defaultConfig)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if rootFlags.cookies != "" {
		cfg.CookieFile = rootFlags.cookies
	}
	if rootFlags.dumpDir != "" {
		cfg.DumpDir = rootFlags.dumpDir
	}
	return cfg, nil
}

// newClient builds a signed in account client from the config file and the
// persistent flags.
func newClient() (*account.Client, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	var dump restyutil.InstrumentOutput
	if cfg.DumpDir != "" {
		dir, err := configutil.ExpandHome(cfg.DumpDir)
		if err != nil {
			return nil, err
		}
		output, err := restyutil.NewFilesystemOutput(dir)
		if err != nil {
			return nil, fmt.Errorf("open dump dir: %w", err)
		}
		dump = output
	}

	tel := telemetry.SlogAPI{}
	session, err := core.NewSession(core.SessionOptions{
		Origin:            cfg.Origin,
		BaseUrl:           cfg.BaseUrl,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		Dump:              dump,
	}, tel)
	if err != nil {
		return nil, err
	}

	cookieFile, err := configutil.ExpandHome(cfg.CookieFile)
	if err != nil {
		return nil, err
	}
	cookies, err := core.LoadCookieFile(cookieFile)
	if err != nil {
		return nil, err
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	cookies = core.FilterDomain(cookies, registrableDomain(origin.Hostname()))
	session.AddCookies(cookies)
	slog.Debug("loaded cookies", "file", cookieFile, "count", len(cookies))

	if _, err := core.SecretCookie(session); err != nil {
		return nil, fmt.Errorf("%s: %w", cookieFile, err)
	}

	return account.NewClient(session, chrono.StandardImpl{}, tel), nil
}

// registrableDomain drops a leading "www." so cookies set on the parent
// domain are kept.
func registrableDomain(host string) string {
	return strings.TrimPrefix(host, "www.")
}
