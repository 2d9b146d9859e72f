package main

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/api"
	"github.com/shuliakovsky/relay-admin/pkg/docs"
	"github.com/shuliakovsky/relay-admin/pkg/metrics"
)

func registerRoutes(mux *http.ServeMux, admin *api.Admin, cfg config, logger *zap.Logger) {
	// UI + admin API
	admin.Register(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	docs.SetHost(cfg.Host, cfg.Port)
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/swagger.json"),
		httpSwagger.InstanceName("swagger"),
	))
	mux.HandleFunc("/swagger/swagger.json", docs.JSONHandler)

	// Metrics
	metrics.Init()
	mux.Handle("/metrics", metrics.Handler())

	logger.Info("routes_registered", zap.Bool("auth", cfg.Token != ""))
}
