package main

import (
	"net/http"

	"github.com/shuliakovsky/relay-admin/pkg/api"
)

func main() {
	PrintVersion()

	logger, level := initLogger()
	defer logger.Sync()

	cfg := loadConfig(logger)
	setLevel(level, cfg.LogLevel, logger)

	store := initStore(cfg, logger)
	prober := initProber(cfg, logger)
	remote := initMirror(cfg, logger)
	publisher := initPublisher(cfg, logger)

	admin := api.NewAdmin(store, prober, remote, publisher, cfg.Token, logger)

	mux := http.NewServeMux()
	registerRoutes(mux, admin, cfg, logger)

	startServer(cfg.Host, cfg.Port, mux, logger)
}
