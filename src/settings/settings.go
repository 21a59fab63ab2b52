package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Firewall modes. Auto probes for ufw and skips silently when it is
// missing; on requires it; off never touches it.
const (
	FirewallAuto = "auto"
	FirewallOn   = "on"
	FirewallOff  = "off"
)

// Settings are the manager-level knobs, loaded from an optional YAML file
// under ~/.openclaw-manager. Everything has a default mirroring the stock
// OpenClaw layout, so a missing file is not an error.
type Settings struct {
	BasePort   int    `yaml:"base_port"`
	PortStep   int    `yaml:"port_step"`
	ConfigDir  string `yaml:"config_dir"`
	BackupDir  string `yaml:"backup_dir"`
	GatewayBin string `yaml:"gateway_bin"`
	Firewall   string `yaml:"firewall"`
}

// Default returns the stock settings for the given home directory.
func Default(home string) Settings {
	return Settings{
		BasePort:   18789,
		PortStep:   20,
		ConfigDir:  filepath.Join(home, ".openclaw"),
		BackupDir:  filepath.Join(home, "openclaw-backups"),
		GatewayBin: filepath.Join(home, ".npm-global", "bin", "openclaw"),
		Firewall:   FirewallAuto,
	}
}

// Path returns the settings file location for the given home directory.
func Path(home string) string {
	return filepath.Join(home, ".openclaw-manager", "config.yaml")
}

// Load reads the settings file if present and overlays it on the defaults.
func Load(home string) (Settings, error) {
	s := Default(home)
	data, err := os.ReadFile(Path(home))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", Path(home), err)
	}
	if err := s.validate(); err != nil {
		return s, fmt.Errorf("%s: %w", Path(home), err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.BasePort <= 0 || s.BasePort > 65535 {
		return fmt.Errorf("base_port must be between 1 and 65535, got %d", s.BasePort)
	}
	if s.PortStep <= 0 {
		return fmt.Errorf("port_step must be positive, got %d", s.PortStep)
	}
	switch s.Firewall {
	case FirewallAuto, FirewallOn, FirewallOff:
	default:
		return fmt.Errorf("firewall must be one of auto|on|off, got %q", s.Firewall)
	}
	return nil
}
