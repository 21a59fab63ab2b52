package lifecycle

import (
	"errors"
	"io/fs"
	"os"

	"openclaw-manager/src/settings"
)

// Delete tears an instance down. The not-found check is the only thing
// that happens before side effects; after that every step runs even when
// earlier ones fail, because a half-deleted instance left on disk is worse
// than an incomplete failure report.
func (o *Orchestrator) Delete(name string) error {
	inst, err := o.Registry.Get(name)
	if err != nil {
		return err
	}
	service := o.Layout.ServiceName(name)

	o.printf("Deleting instance %q...\n", name)

	var failed []StepFailure
	step := func(stepName string, fn func() error) {
		if err := fn(); err != nil {
			failed = append(failed, StepFailure{Step: stepName, Err: err})
		}
	}

	step("stop service", func() error { return o.Systemd.Stop(service) })
	step("disable service", func() error { return o.Systemd.Disable(service) })
	step("uninstall service unit", func() error { return o.Systemd.Uninstall(service) })
	if o.FirewallMode != settings.FirewallOff && inst.Port != 0 {
		if o.Firewall.Available() {
			step("remove firewall rule", func() error { return o.Firewall.Deny(inst.Port) })
		} else {
			o.warnf("firewall tool not found; rule for port %d not removed\n", inst.Port)
		}
	}
	step("remove config file", func() error {
		err := os.Remove(inst.ConfigPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
	step("remove state directory", func() error { return os.RemoveAll(inst.StateDir) })

	if len(failed) > 0 {
		return &PartialError{Op: "delete " + name, Steps: failed}
	}
	return nil
}
