package systemd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Real manages units in the systemd user session via systemctl and
// journalctl.
type Real struct {
	// UserDir is where unit files are written, normally
	// ~/.config/systemd/user.
	UserDir string
}

// NewReal returns a Manager writing unit files under userDir.
func NewReal(userDir string) *Real {
	return &Real{UserDir: userDir}
}

var _ Manager = (*Real)(nil)

func (r *Real) Install(unit Unit) error {
	if err := os.MkdirAll(r.UserDir, 0o755); err != nil {
		return fmt.Errorf("create systemd user dir: %w", err)
	}
	path := filepath.Join(r.UserDir, unit.Name)
	if err := os.WriteFile(path, []byte(unit.Content), 0o644); err != nil {
		return fmt.Errorf("write unit file: %w", err)
	}
	return r.daemonReload()
}

func (r *Real) Uninstall(name string) error {
	path := filepath.Join(r.UserDir, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove unit file: %w", err)
	}
	return r.daemonReload()
}

func (r *Real) Enable(name string) error  { return r.systemctl("enable", name) }
func (r *Real) Disable(name string) error { return r.systemctl("disable", name) }
func (r *Real) Start(name string) error   { return r.systemctl("start", name) }
func (r *Real) Stop(name string) error    { return r.systemctl("stop", name) }
func (r *Real) Restart(name string) error { return r.systemctl("restart", name) }

func (r *Real) IsActive(name string) (string, error) {
	// is-active exits non-zero for anything but "active"; the state name
	// is still on stdout, so only an empty output is an error.
	stdout, stderr, err := run("systemctl", "--user", "is-active", name)
	state := strings.TrimSpace(stdout)
	if state != "" {
		return state, nil
	}
	if err != nil {
		return "unknown", &CommandError{Command: "systemctl --user is-active " + name, Stderr: stderr, Err: err}
	}
	return "unknown", nil
}

func (r *Real) IsEnabled(name string) (bool, error) {
	stdout, _, _ := run("systemctl", "--user", "is-enabled", name)
	return strings.TrimSpace(stdout) == "enabled", nil
}

func (r *Real) Logs(ctx context.Context, name string, follow bool, lines int, out io.Writer) error {
	args := []string{"--user", "-u", name}
	if follow {
		args = append(args, "-f")
	} else {
		if lines <= 0 {
			lines = 100
		}
		args = append(args, "-n", strconv.Itoa(lines))
	}
	cmd := exec.CommandContext(ctx, "journalctl", args...)
	cmd.Stdout = out
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Interrupted follow is a normal exit for the caller.
			return nil
		}
		return &CommandError{Command: "journalctl " + strings.Join(args, " "), Stderr: stderr.String(), Err: err}
	}
	return nil
}

func (r *Real) daemonReload() error { return r.systemctl("daemon-reload") }

func (r *Real) systemctl(args ...string) error {
	full := append([]string{"--user"}, args...)
	_, stderr, err := run("systemctl", full...)
	if err != nil {
		return &CommandError{Command: "systemctl " + strings.Join(full, " "), Stderr: stderr, Err: err}
	}
	return nil
}

func run(bin string, args ...string) (string, string, error) {
	cmd := exec.Command(bin, args...)
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stdoutBuf.String(), strings.TrimSpace(stderrBuf.String()), err
}
