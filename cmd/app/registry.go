package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/metrics"
	"github.com/shuliakovsky/relay-admin/pkg/registry"
)

// initStore opens the registry and reports, without fixing, anything the
// offline validator would flag.
func initStore(cfg config, logger *zap.Logger) *registry.Store {
	store := registry.NewStore(cfg.RelayFile, logger)

	raw, err := os.ReadFile(cfg.RelayFile)
	if err != nil {
		logger.Warn("registry_unreadable", zap.String("file", cfg.RelayFile), zap.Error(err))
		return store
	}
	if issues := registry.Validate(raw); len(issues) > 0 {
		logger.Warn("registry_issues", zap.String("file", cfg.RelayFile), zap.Strings("issues", issues))
	}
	if doc, err := store.Load(); err == nil {
		metrics.RegistrySize.Set(float64(len(doc.Relays)))
		logger.Info("registry_loaded", zap.String("file", cfg.RelayFile), zap.Int("relays", len(doc.Relays)))
	}
	return store
}
