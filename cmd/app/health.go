package main

import (
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/health"
	"github.com/shuliakovsky/relay-admin/pkg/mirror"
)

func initProber(cfg config, logger *zap.Logger) *health.Prober {
	return health.New(cfg.ProbeTimeout, cfg.ProbeConcurrency, cfg.TorSocks, logger)
}

func initMirror(cfg config, logger *zap.Logger) *mirror.Client {
	m := mirror.New(cfg.MirrorURL, cfg.MirrorToken, logger)
	if m.Enabled() {
		logger.Info("mirror_enabled", zap.String("url", cfg.MirrorURL), zap.Bool("token", cfg.MirrorToken != ""))
	}
	return m
}
