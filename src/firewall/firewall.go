// Package firewall manages per-instance UFW rules. Firewalling is
// defense-in-depth, not correctness-critical: callers treat failures here
// as warnings during create and as reportable step failures during delete.
package firewall

import (
	"fmt"
	"strings"
)

// Manager is a narrow interface over the host firewall.
type Manager interface {
	// Available reports whether the firewall tool exists on this host.
	Available() bool
	// Enabled reports whether the firewall is active.
	Enabled() (bool, error)
	// Allow opens the port, tagging the rule with a comment so it can be
	// recognized later. Idempotent.
	Allow(port int, comment string) error
	// Deny removes the allow rule for the port. Idempotent; removing a
	// rule that does not exist is not an error.
	Deny(port int) error
}

// CommandError is a non-zero exit from the firewall tool.
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

// RuleComment tags a UFW rule as belonging to a named instance.
func RuleComment(name string) string {
	return "OpenClaw " + strings.TrimSpace(name)
}
