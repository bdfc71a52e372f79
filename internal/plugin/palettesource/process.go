package palettesource

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// ProcessRunner starts a palette plugin once with the given arguments and
// stdin and collects what it writes. Tests substitute a fake.
type ProcessRunner interface {
	Run(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)
}

// RealProcessRunner runs plugins as child processes.
type RealProcessRunner struct{}

// NewRealProcessRunner returns a runner backed by os/exec.
func NewRealProcessRunner() *RealProcessRunner {
	return &RealProcessRunner{}
}

// Run executes the plugin and waits for it to exit. Both streams are
// returned whatever the outcome. A cancelled or expired ctx is reported as
// ctx.Err() rather than the kill signal it caused.
func (r *RealProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- plugin path is chosen by the user
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), stderr.Bytes(), ctxErr
		}
		return stdout.Bytes(), stderr.Bytes(), err
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
