package cli

import (
	"io"
	"os"

	"openclaw-manager/src/firewall"
	"openclaw-manager/src/instance"
	"openclaw-manager/src/lifecycle"
	"openclaw-manager/src/paths"
	"openclaw-manager/src/ports"
	"openclaw-manager/src/settings"
	"openclaw-manager/src/systemd"
)

// env wires the real collaborators for a single command invocation. It is
// built lazily inside RunE so that --help and version never touch the
// host.
type env struct {
	Settings settings.Settings
	Layout   paths.Layout
	Registry *instance.Registry
	Systemd  systemd.Manager
	Orch     *lifecycle.Orchestrator
}

func newEnv(out io.Writer) (*env, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	s, err := settings.Load(home)
	if err != nil {
		return nil, err
	}
	layout := paths.NewLayout(home, s)
	registry := instance.NewRegistry(layout)
	sysd := systemd.NewReal(layout.SystemdUserDir)
	return &env{
		Settings: s,
		Layout:   layout,
		Registry: registry,
		Systemd:  sysd,
		Orch: &lifecycle.Orchestrator{
			Layout:       layout,
			Registry:     registry,
			Allocator:    ports.New(s.BasePort, s.PortStep),
			Systemd:      sysd,
			Firewall:     firewall.NewUFW(),
			FirewallMode: s.Firewall,
			Out:          out,
		},
	}, nil
}
