// Package gateway runs the OpenClaw binary (or a shell) inside an
// instance's context: its profile, config, state directory, and port are
// injected through the environment, and the workspace is the working
// directory.
package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"openclaw-manager/src/instance"
	"openclaw-manager/src/paths"
)

// Stdio bundles the streams passed through to the proxied process.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes the gateway binary with the given arguments in the
// instance's context. The command inherits the parent environment plus
// the OPENCLAW_* variables. Cancellation of ctx kills the child.
func Run(ctx context.Context, layout paths.Layout, inst instance.Instance, args []string, stdio Stdio) error {
	cmd := exec.CommandContext(ctx, layout.GatewayBin, args...)
	configure(cmd, layout, inst, stdio)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run %s: %w", layout.GatewayBin, err)
	}
	return nil
}

// Shell starts an interactive shell in the instance's context, for
// poking at a running instance by hand.
func Shell(ctx context.Context, layout paths.Layout, inst instance.Instance, stdio Stdio) error {
	cmd := exec.CommandContext(ctx, "/bin/bash", "--norc", "--noprofile")
	configure(cmd, layout, inst, stdio)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A non-zero shell exit (user typed `exit 1`) is not our error.
		if _, ok := err.(*exec.ExitError); ok {
			return nil
		}
		return fmt.Errorf("start shell: %w", err)
	}
	return nil
}

func configure(cmd *exec.Cmd, layout paths.Layout, inst instance.Instance, stdio Stdio) {
	cmd.Dir = layout.Workspace(inst.Name)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	cmd.Env = append(os.Environ(),
		"OPENCLAW_PROFILE="+inst.Name,
		"OPENCLAW_CONFIG_PATH="+inst.ConfigPath,
		"OPENCLAW_STATE_DIR="+inst.StateDir,
		"OPENCLAW_GATEWAY_PORT="+strconv.Itoa(inst.Port),
	)
}
