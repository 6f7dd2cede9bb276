package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrPluginTimeout is returned when a plugin does not finish within the
// executor's deadline.
var ErrPluginTimeout = errors.New("plugin timed out")

// Executor runs action plugins as short-lived subprocesses. The matched
// jutsu is written to the plugin's stdin as a JSON Request and its stdout
// is read back as a JSON Response.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills plugins running longer than
// the given timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute runs one plugin invocation for a jutsu action. The plugin's
// bundle directory is its working directory, so relative asset paths in
// the bundle resolve naturally.
func (e *Executor) Execute(p *Plugin, req *Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plugin request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Executable)
	cmd.Dir = p.Path
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w after %s", ErrPluginTimeout, e.timeout)
	}
	if runErr != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("plugin %s failed: %w, stderr: %s", p.Manifest.Name, runErr, msg)
		}
		return nil, fmt.Errorf("plugin %s failed: %w", p.Manifest.Name, runErr)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode plugin response: %w, stdout: %s", err, stdout.String())
	}
	return &resp, nil
}
