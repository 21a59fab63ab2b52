// Package lifecycle sequences the multi-step instance operations: create,
// delete, backup, restore. Every external side effect goes through the
// collaborator interfaces so the ordering and rollback logic is testable
// without a host to wreck.
package lifecycle

import (
	"fmt"
	"io"
	"time"

	"openclaw-manager/src/firewall"
	"openclaw-manager/src/instance"
	"openclaw-manager/src/paths"
	"openclaw-manager/src/ports"
	"openclaw-manager/src/settings"
	"openclaw-manager/src/systemd"
)

// Orchestrator wires the registry, allocator, and external collaborators.
type Orchestrator struct {
	Layout    paths.Layout
	Registry  *instance.Registry
	Allocator ports.Allocator
	Systemd   systemd.Manager
	Firewall  firewall.Manager

	// FirewallMode is settings.FirewallAuto/On/Off.
	FirewallMode string

	// Out receives progress lines and warnings.
	Out io.Writer

	// Now is the clock, injectable for tests.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) printf(format string, args ...any) {
	if o.Out != nil {
		fmt.Fprintf(o.Out, format, args...)
	}
}

func (o *Orchestrator) warnf(format string, args ...any) {
	o.printf("Warning: "+format, args...)
}

// allowFirewall opens the instance port, honoring the firewall mode.
// Failures are warnings: firewalling is defense-in-depth, and an instance
// without its rule is still a working instance.
func (o *Orchestrator) allowFirewall(name string, port int) {
	if o.FirewallMode == settings.FirewallOff {
		return
	}
	if !o.Firewall.Available() {
		if o.FirewallMode == settings.FirewallOn {
			o.warnf("firewall tool not found; port %d left unmanaged\n", port)
		}
		return
	}
	enabled, err := o.Firewall.Enabled()
	if err != nil {
		o.warnf("firewall status check failed: %v\n", err)
		return
	}
	if !enabled && o.FirewallMode != settings.FirewallOn {
		return
	}
	if err := o.Firewall.Allow(port, firewall.RuleComment(name)); err != nil {
		o.warnf("failed to add firewall rule for port %d: %v\n", port, err)
	}
}

// resolvePort picks the instance port: an explicitly requested one must be
// free, otherwise the allocator walks the fixed sequence.
func (o *Orchestrator) resolvePort(requested int) (int, error) {
	used, err := o.Registry.UsedPorts()
	if err != nil {
		return 0, err
	}
	if requested != 0 {
		if used[requested] {
			return 0, fmt.Errorf("%w: %d", ErrPortInUse, requested)
		}
		return requested, nil
	}
	return o.Allocator.Allocate(used)
}
