// Package scraper runs the external article scraper as a one-shot process.
package scraper

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// Result is what the scraper left behind.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner starts the configured scraper command.
type Runner struct {
	argv    []string
	timeout time.Duration
}

// NewRunner parses command as whitespace-separated argv. An empty command
// yields a disabled runner.
func NewRunner(command string, timeout time.Duration) *Runner {
	return &Runner{argv: strings.Fields(command), timeout: timeout}
}

// Enabled reports whether a scraper command is configured
func (r *Runner) Enabled() bool {
	return r != nil && len(r.argv) > 0
}

// Run executes the scraper once and waits for it. A non-zero exit, a
// timeout, or a failure to start is an External error; the captured output
// is returned alongside it unchanged.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	const op = "scraper.run"
	if !r.Enabled() {
		return Result{ExitCode: -1}, errors.Errorf(errors.KindInvalid, op, "no scraper command configured")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Info("Starting scraper: "+strings.Join(r.argv, " "), "Scraper")
	start := time.Now()
	err := cmd.Run()
	res := Result{ExitCode: 0, Output: out.String(), Duration: time.Since(start)}

	if err == nil {
		logger.Success(fmt.Sprintf("Scraper finished in %v", res.Duration.Round(time.Millisecond)), "Scraper")
		return res, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.ExitCode = -1
		return res, errors.E(errors.KindExternal, op, fmt.Errorf("timed out after %v", r.timeout))
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, errors.E(errors.KindExternal, op, fmt.Errorf("exit status %d", res.ExitCode))
	}

	res.ExitCode = -1
	return res, errors.E(errors.KindExternal, op, err)
}
