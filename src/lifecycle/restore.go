package lifecycle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"openclaw-manager/src/archive"
	"openclaw-manager/src/config"
	"openclaw-manager/src/instance"
	"openclaw-manager/src/systemd"
	"openclaw-manager/src/util/progress"
)

// RestoreOptions control Restore.
type RestoreOptions struct {
	// Name overrides the instance name recorded in the manifest.
	Name string
	// Replace deletes an existing instance of the same name first.
	Replace bool
}

// Restore rebuilds an instance from a backup archive. The restored
// instance goes through the same validation and port allocation as a
// fresh create: the manifest's port is never trusted, so restoring onto a
// host where that port now belongs to someone else just picks the next
// free one.
func (o *Orchestrator) Restore(archivePath string, opts RestoreOptions) (instance.Instance, error) {
	var none instance.Instance

	mf, err := archive.ReadManifest(archivePath)
	if err != nil {
		return none, err
	}
	name := opts.Name
	if name == "" {
		name = mf.Name
	}
	if err := instance.ValidateName(name); err != nil {
		return none, err
	}

	if o.Registry.Exists(name) {
		if !opts.Replace {
			return none, fmt.Errorf("%w: %s (use --force to replace)", ErrNameInUse, name)
		}
		if err := o.Delete(name); err != nil {
			return none, fmt.Errorf("replace %s: %w", name, err)
		}
	}

	port, err := o.resolvePort(0)
	if err != nil {
		return none, err
	}

	cfgBytes, err := archive.ReadConfig(archivePath)
	if err != nil {
		return none, fmt.Errorf("archive %s: %w", archivePath, err)
	}
	doc, err := config.Parse(cfgBytes)
	if err != nil {
		return none, fmt.Errorf("%w: archived config: %v", config.ErrMalformedConfig, err)
	}

	o.printf("Restoring instance %q (archived from %q, port %d) on port %d...\n", name, mf.Name, mf.Port, port)

	stateDir := o.Layout.StateDir(name)
	if err := os.Mkdir(stateDir, 0o700); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return none, fmt.Errorf("%w: %s", ErrNameInUse, name)
		}
		return none, fmt.Errorf("create state directory: %w", err)
	}
	cleanup := &createCleanup{o: o, name: name}

	err = archive.ExtractState(archivePath, stateDir, func(r io.Reader, total int64) io.Reader {
		return progress.NewReader(r, total, "restore", o.Out)
	})
	if err != nil {
		return none, cleanup.fail(fmt.Errorf("extract state: %w", err))
	}

	// Rebind the restored config to this host's allocation.
	gateway, ok := doc["gateway"].(map[string]any)
	if !ok {
		gateway = map[string]any{}
		doc["gateway"] = gateway
	}
	gateway["port"] = port
	if defaults, ok := config.Lookup(doc, "agents.defaults"); ok {
		if dm, ok := defaults.(map[string]any); ok {
			dm["workspace"] = o.Layout.Workspace(name)
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

	inst, err := o.Registry.Get(name)
	if err != nil {
		return none, err
	}
	return inst, nil
}
