package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/health"
	"github.com/shuliakovsky/relay-admin/pkg/settings"
)

// config is built once at startup and handed to every component.
type config struct {
	Host      string
	Port      string
	Token     string
	RelayFile string
	LogLevel  string

	MirrorURL   string
	MirrorToken string

	GitAutoPush bool
	GitRemote   string
	GitBranch   string
	GitMessage  string

	ProbeTimeout     time.Duration
	ProbeConcurrency int
	TorSocks         string
}

// loadConfig layers, lowest first: built-in defaults, the optional YAML file
// named by ADMIN_CONFIG, then the environment (including .env).
func loadConfig(logger *zap.Logger) config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("dotenv_load_error", zap.Error(err))
	}

	var f settings.File
	if path := os.Getenv("ADMIN_CONFIG"); path != "" {
		loaded, err := settings.Load(path, logger)
		if err != nil {
			logger.Fatal("config_load_error", zap.String("file", path), zap.Error(err))
		}
		f = loaded
	}

	autoPush := false
	if f.Git.AutoPush != nil {
		autoPush = *f.Git.AutoPush
	}
	if v := os.Getenv("GIT_AUTO_PUSH"); v != "" {
		autoPush = v == "1" || strings.EqualFold(v, "true")
	}

	timeout := health.DefaultTimeout
	if d, err := time.ParseDuration(getEnv("PROBE_TIMEOUT", f.Probe.Timeout)); err == nil && d > 0 {
		timeout = d
	}
	concurrency := f.Probe.Concurrency
	if n, err := strconv.Atoi(os.Getenv("PROBE_CONCURRENCY")); err == nil && n > 0 {
		concurrency = n
	}
	if concurrency <= 0 {
		concurrency = health.DefaultConcurrency
	}

	return config{
		Host:      getEnv("ADMIN_HOST", or(f.Host, "0.0.0.0")),
		Port:      getEnv("ADMIN_PORT", or(f.Port, "4000")),
		Token:     getEnv("ADMIN_TOKEN", f.Token),
		RelayFile: getEnv("RELAY_FILE", or(f.RelayFile, "relays.json")),
		LogLevel:  getEnv("LOG_LEVEL", or(f.LogLevel, "info")),

		MirrorURL:   getEnv("GITHUB_RELAYS_URL", f.Mirror.URL),
		MirrorToken: getEnv("GITHUB_TOKEN", f.Mirror.Token),

		GitAutoPush: autoPush,
		GitRemote:   getEnv("GIT_REMOTE", or(f.Git.Remote, "origin")),
		GitBranch:   getEnv("GIT_BRANCH", or(f.Git.Branch, "main")),
		GitMessage:  getEnv("GIT_COMMIT_MSG", or(f.Git.CommitMessage, "Update relays.json via admin UI")),

		ProbeTimeout:     timeout,
		ProbeConcurrency: concurrency,
		TorSocks:         getEnv("TOR_SOCKS5", f.Probe.TorSocks5),
	}
}

// repoDir is where git runs: the directory holding the registry file.
func (c config) repoDir() string {
	dir := filepath.Dir(c.RelayFile)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
