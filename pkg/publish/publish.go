// Package publish pushes the registry file to a git remote after a save.
// Failures are reported in the Result, never returned as errors.
package publish

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/metrics"
	"github.com/shuliakovsky/relay-admin/pkg/secrets"
)

const gitTimeout = 60 * time.Second

type Result struct {
	Pushed  bool   `json:"pushed"`
	Message string `json:"message"`
}

type Publisher interface {
	Publish(ctx context.Context, file string) Result
}

// Noop is used when auto-push is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, string) Result {
	return Result{Pushed: false, Message: "auto-push disabled"}
}

// Runner executes git with args in dir and returns its combined output.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

func ExecRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

type Git struct {
	Dir      string
	Remote   string
	Branch   string
	Message  string
	Run      Runner
	Redactor *secrets.Redactor
	Logger   *zap.Logger
}

func NewGit(dir, remote, branch, message string, redactor *secrets.Redactor, logger *zap.Logger) *Git {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Git{
		Dir:      dir,
		Remote:   remote,
		Branch:   branch,
		Message:  message,
		Run:      ExecRunner,
		Redactor: redactor,
		Logger:   logger,
	}
}

// Publish stages file, commits it if it changed and pushes to Remote/Branch.
func (g *Git) Publish(ctx context.Context, file string) Result {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	res := g.publish(ctx, g.relPath(file))
	metrics.PublishTotal.WithLabelValues(strconv.FormatBool(res.Pushed)).Inc()
	g.Logger.Info("publish_result", zap.Bool("pushed", res.Pushed), zap.String("message", res.Message))
	return res
}

func (g *Git) publish(ctx context.Context, file string) Result {
	if _, err := g.Run(ctx, g.Dir, "add", "--", file); err != nil {
		return g.failed(err)
	}
	status, err := g.Run(ctx, g.Dir, "status", "--porcelain", "--", file)
	if err != nil {
		return g.failed(err)
	}
	if strings.TrimSpace(status) == "" {
		return Result{Pushed: false, Message: "no changes to commit"}
	}
	if _, err := g.Run(ctx, g.Dir, "commit", "-m", g.Message, "--", file); err != nil {
		return g.failed(err)
	}
	if _, err := g.Run(ctx, g.Dir, "push", g.Remote, g.Branch); err != nil {
		return g.failed(err)
	}
	return Result{Pushed: true, Message: fmt.Sprintf("pushed to %s/%s", g.Remote, g.Branch)}
}

func (g *Git) failed(err error) Result {
	return Result{Pushed: false, Message: "git push failed: " + g.Redactor.String(err.Error())}
}

func (g *Git) relPath(file string) string {
	if !filepath.IsAbs(file) || g.Dir == "" {
		return file
	}
	dir, err := filepath.Abs(g.Dir)
	if err != nil {
		return file
	}
	if rel, err := filepath.Rel(dir, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return file
}
