package vbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds every external tool invocation.
const DefaultCommandTimeout = 5 * time.Second

// Sentinel errors classifying external tool failures. Callers branch
// on these to distinguish a permanently missing binary from a
// transient failure.
var (
	ErrToolNotFound = errors.New("tool binary not found")
	ErrTimeout      = errors.New("command timed out")
)

// CommandRunner executes an external tool invocation and returns its
// standard output. Implementations classify failures into
// ErrToolNotFound, ErrTimeout, or an error carrying the tool's
// diagnostic text on nonzero exit.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs tools as subprocesses with a bounded timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultCommandTimeout}
}

// Run executes the named tool and returns its stdout. The invocation
// is cut off after the runner's timeout.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w: %s", ErrTimeout, name)
	}
	if err != nil {
		diagnostic := strings.TrimSpace(stderr.String())
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		return "", fmt.Errorf("%s failed: %s", name, diagnostic)
	}

	return stdout.String(), nil
}
