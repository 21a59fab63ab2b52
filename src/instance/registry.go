package instance

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"openclaw-manager/src/config"
	"openclaw-manager/src/paths"
)

// Registry enumerates instances by scanning the filesystem. There is no
// persistent index: the config directory and the per-instance state
// directories are the source of truth, so the registry can never drift
// from what is actually on disk. Construct one per operation.
type Registry struct {
	Layout paths.Layout
}

// NewRegistry returns a registry over the given layout.
func NewRegistry(layout paths.Layout) *Registry {
	return &Registry{Layout: layout}
}

// List returns every instance found on disk, sorted by name. An instance
// is listed when either its config file or its state directory exists;
// a half-deleted instance therefore stays visible until cleanup converges.
func (r *Registry) List() ([]Instance, error) {
	names := map[string]struct{}{}

	entries, err := os.ReadDir(r.Layout.ConfigDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan config dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := configFileInstance(e.Name())
		if ok {
			names[name] = struct{}{}
		}
	}

	homeEntries, err := os.ReadDir(r.Layout.Home)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan home dir: %w", err)
	}
	for _, e := range homeEntries {
		if !e.IsDir() {
			continue
		}
		name, ok := stateDirInstance(e.Name())
		if ok {
			names[name] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]Instance, 0, len(sorted))
	for _, name := range sorted {
		out = append(out, r.load(name))
	}
	return out, nil
}

// Get returns the named instance, or ErrNotFound when neither its config
// file nor its state directory exists.
func (r *Registry) Get(name string) (Instance, error) {
	if err := ValidateName(name); err != nil {
		return Instance{}, err
	}
	_, cfgErr := os.Stat(r.Layout.ConfigPath(name))
	_, stateErr := os.Stat(r.Layout.StateDir(name))
	if cfgErr != nil && stateErr != nil {
		return Instance{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r.load(name), nil
}

// Exists reports whether any on-disk trace of the name is present.
func (r *Registry) Exists(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// UsedPorts returns the set of ports recorded in existing instance
// configs, plus the main config's own gateway port.
func (r *Registry) UsedPorts() (map[int]bool, error) {
	used := map[int]bool{}
	instances, err := r.List()
	if err != nil {
		return nil, err
	}
	for _, inst := range instances {
		if inst.Port != 0 {
			used[inst.Port] = true
		}
	}
	if base, err := config.LoadFile(r.Layout.BaseConfigPath()); err == nil {
		if p := config.IntAt(base, "gateway.port"); p != 0 {
			used[p] = true
		}
	}
	return used, nil
}

// load fills in whatever the instance config can provide. A missing or
// malformed config still yields an entry so the operator can see and
// delete the remains; the port simply reads as 0.
func (r *Registry) load(name string) Instance {
	inst := Instance{
		Name:       name,
		StateDir:   r.Layout.StateDir(name),
		ConfigPath: r.Layout.ConfigPath(name),
	}
	doc, err := config.LoadFile(inst.ConfigPath)
	if err != nil {
		return inst
	}
	inst.Port = config.IntAt(doc, "gateway.port")
	inst.Model = config.StringAt(doc, "agents.defaults.model.primary")
	if ts := config.StringAt(doc, "meta.lastTouchedAt"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			inst.CreatedAt = t
		}
	}
	return inst
}

// configFileInstance maps "openclaw-worker1.json" to ("worker1", true).
// The main config "openclaw.json" does not match.
func configFileInstance(filename string) (string, bool) {
	name, ok := strings.CutPrefix(filename, "openclaw-")
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, ".json")
	if !ok || name == "" {
		return "", false
	}
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

// stateDirInstance maps ".openclaw-worker1" to ("worker1", true). The
// main state dir ".openclaw" and the manager's own ".openclaw-manager"
// do not match.
func stateDirInstance(dirname string) (string, bool) {
	if dirname == ".openclaw-manager" {
		return "", false
	}
	name, ok := strings.CutPrefix(dirname, ".openclaw-")
	if !ok || name == "" {
		return "", false
	}
	if ValidateName(name) != nil {
		return "", false
	}
	return name, true
}
