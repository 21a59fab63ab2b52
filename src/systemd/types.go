// Package systemd drives per-instance systemd user units. The Manager
// interface is deliberately narrow so the lifecycle orchestrator can be
// tested against an in-memory fake.
package systemd

import (
	"context"
	"fmt"
	"io"
)

// Unit is a rendered service unit ready to install.
type Unit struct {
	// Name is the unit file name, e.g. "openclaw-gateway-worker1.service".
	Name string
	// Content is the full unit file text.
	Content string
}

// Manager is a narrow interface over the systemd user session.
// Keep it small and focused on what we actually need so it stays mockable.
type Manager interface {
	Install(unit Unit) error
	Uninstall(name string) error

	Enable(name string) error
	Disable(name string) error
	Start(name string) error
	Stop(name string) error
	Restart(name string) error

	// IsActive returns the systemctl is-active state ("active",
	// "inactive", "failed", ...). Unknown units report "inactive".
	IsActive(name string) (string, error)
	// IsEnabled reports whether the unit starts with the user session.
	IsEnabled(name string) (bool, error)

	// Logs streams journal output for the unit to out. With follow it
	// blocks until ctx is cancelled.
	Logs(ctx context.Context, name string, follow bool, lines int, out io.Writer) error
}

// CommandError is a non-zero exit from systemctl or journalctl, with the
// tool's own diagnostics preserved verbatim.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
