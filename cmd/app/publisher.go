package main

import (
	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/publish"
	"github.com/shuliakovsky/relay-admin/pkg/secrets"
)

func initPublisher(cfg config, logger *zap.Logger) publish.Publisher {
	if !cfg.GitAutoPush {
		return publish.Noop{}
	}
	logger.Info("git_auto_push_enabled",
		zap.String("dir", cfg.repoDir()),
		zap.String("remote", cfg.GitRemote),
		zap.String("branch", cfg.GitBranch),
	)
	redactor := secrets.NewRedactor(cfg.Token, cfg.MirrorToken)
	return publish.NewGit(cfg.repoDir(), cfg.GitRemote, cfg.GitBranch, cfg.GitMessage, redactor, logger)
}
