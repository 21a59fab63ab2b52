package lifecycle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"openclaw-manager/src/config"
	"openclaw-manager/src/instance"
	"openclaw-manager/src/systemd"
)

// CreateOptions are the caller-supplied knobs for Create.
type CreateOptions struct {
	// Port requests a specific port instead of the next free one.
	Port int
	// Model overrides the inherited default model.
	Model string
	// Start launches the service immediately after creation.
	Start bool
}

// stateSubdirs is the directory skeleton inside a fresh state directory.
var stateSubdirs = []string{
	"workspace",
	filepath.Join("agents", "main", "sessions"),
	"credentials",
}

// Create builds a new instance: validation, port allocation, and config
// composition happen before any side effect; after the exclusive state
// directory creation, any failure rolls back everything done so far and
// surfaces the root cause.
func (o *Orchestrator) Create(name string, opts CreateOptions) (instance.Instance, error) {
	var none instance.Instance

	if err := instance.ValidateName(name); err != nil {
		return none, err
	}
	if o.Registry.Exists(name) {
		return none, fmt.Errorf("%w: %s", ErrNameInUse, name)
	}

	port, err := o.resolvePort(opts.Port)
	if err != nil {
		return none, err
	}

	base, err := config.LoadBase(o.Layout.BaseConfigPath())
	if err != nil {
		return none, err
	}
	doc, err := config.Compose(base, name, port, o.Layout.Workspace(name), config.Overrides{Model: opts.Model}, o.now())
	if err != nil {
		return none, err
	}

	o.printf("Creating instance %q on port %d...\n", name, port)

	stateDir := o.Layout.StateDir(name)
	// The exclusive mkdir is the race arbiter between concurrent creates:
	// whoever gets here first owns the name.
	if err := os.Mkdir(stateDir, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return none, fmt.Errorf("%w: %s", ErrNameInUse, name)
		}
		return none, fmt.Errorf("create state directory: %w", err)
	}

	cleanup := &createCleanup{o: o, name: name}
	for _, sub := range stateSubdirs {
		if err := os.MkdirAll(filepath.Join(stateDir, sub), 0o700); err != nil {
			return none, cleanup.fail(fmt.Errorf("create state directory: %w", err))
		}
	}

	if err := os.MkdirAll(o.Layout.ConfigDir, 0o755); err != nil {
		return none, cleanup.fail(fmt.Errorf("create config directory: %w", err))
	}
	if err := config.WriteFile(o.Layout.ConfigPath(name), doc); err != nil {
		return none, cleanup.fail(fmt.Errorf("write instance config: %w", err))
	}
	cleanup.configWritten = true

	unit := systemd.RenderUnit(systemd.UnitParams{
		InstanceName: name,
		ServiceName:  o.Layout.ServiceName(name),
		Port:         port,
		Home:         o.Layout.Home,
		StateDir:     stateDir,
		ConfigPath:   o.Layout.ConfigPath(name),
		GatewayBin:   o.Layout.GatewayBin,
	})
	if err := o.Systemd.Install(unit); err != nil {
		return none, cleanup.fail(fmt.Errorf("install service unit: %w", err))
	}
	cleanup.unitInstalled = true

	o.allowFirewall(name, port)

	if err := o.Systemd.Enable(o.Layout.ServiceName(name)); err != nil {
		return none, cleanup.fail(fmt.Errorf("enable service: %w", err))
	}
	if opts.Start {
		if err := o.Systemd.Start(o.Layout.ServiceName(name)); err != nil {
			return none, cleanup.fail(fmt.Errorf("start service: %w", err))
		}
	}

	inst, err := o.Registry.Get(name)
	if err != nil {
		return none, err
	}
	return inst, nil
}

// createCleanup undoes the steps of a partially completed create, in
// reverse order. Cleanup failures are reported as warnings; the root
// cause is what the caller sees.
type createCleanup struct {
	o             *Orchestrator
	name          string
	configWritten bool
	unitInstalled bool
}

func (c *createCleanup) fail(cause error) error {
	if c.unitInstalled {
		if err := c.o.Systemd.Uninstall(c.o.Layout.ServiceName(c.name)); err != nil {
			c.o.warnf("rollback: uninstall service unit: %v\n", err)
		}
	}
	if c.configWritten {
		if err := os.Remove(c.o.Layout.ConfigPath(c.name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.o.warnf("rollback: remove config: %v\n", err)
		}
	}
	if err := os.RemoveAll(c.o.Layout.StateDir(c.name)); err != nil {
		c.o.warnf("rollback: remove state directory: %v\n", err)
	}
	return fmt.Errorf("create %s: %w", c.name, cause)
}
