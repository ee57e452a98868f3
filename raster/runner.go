package raster

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	shellquote "github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/hazop-ai/pidsym/logger"
)

// Runner executes an external command and returns its output.
type Runner interface {
	Run(ctx context.Context, name string, log *zap.SugaredLogger, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, log *zap.SugaredLogger, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if log != nil && logger.TraceEnabled() {
		log.Debugw("running external command", "argv", shellquote.Join(append([]string{name}, args...)...))
	}

	start := time.Now()
	err := cmd.Run()
	if log != nil {
		log.Debugw("external command finished",
			"command", name,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
			"stderr", truncate(stderr.String(), 500))
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
