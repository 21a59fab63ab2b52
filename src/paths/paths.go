package paths

import (
	"fmt"
	"path/filepath"
	"time"

	"openclaw-manager/src/settings"
)

// Layout derives every path the manager touches from the home directory and
// the manager settings. Instances never choose their own paths; everything
// is a pure function of the instance name so that create and delete always
// agree on what belongs to whom.
type Layout struct {
	Home           string
	ConfigDir      string // holds openclaw.json and per-instance configs
	SystemdUserDir string // ~/.config/systemd/user
	BackupDir      string
	GatewayBin     string
}

// NewLayout builds a Layout for the given home directory and settings.
func NewLayout(home string, s settings.Settings) Layout {
	return Layout{
		Home:           home,
		ConfigDir:      s.ConfigDir,
		SystemdUserDir: filepath.Join(home, ".config", "systemd", "user"),
		BackupDir:      s.BackupDir,
		GatewayBin:     s.GatewayBin,
	}
}

// BaseConfigPath is the main (non-instance) OpenClaw config. Instances
// inherit from it but never write to it.
func (l Layout) BaseConfigPath() string {
	return filepath.Join(l.ConfigDir, "openclaw.json")
}

// StateDir is the directory exclusively owned by the named instance.
func (l Layout) StateDir(name string) string {
	return filepath.Join(l.Home, ".openclaw-"+name)
}

// Workspace is the agent workspace inside the instance state directory.
func (l Layout) Workspace(name string) string {
	return filepath.Join(l.StateDir(name), "workspace")
}

// ConfigPath is the per-instance config file in the shared config directory.
func (l Layout) ConfigPath(name string) string {
	return filepath.Join(l.ConfigDir, fmt.Sprintf("openclaw-%s.json", name))
}

// ServiceName is the systemd user unit name for the instance.
func (l Layout) ServiceName(name string) string {
	return fmt.Sprintf("openclaw-gateway-%s.service", name)
}

// UnitPath is the on-disk location of the instance's unit file.
func (l Layout) UnitPath(name string) string {
	return filepath.Join(l.SystemdUserDir, l.ServiceName(name))
}

// DefaultBackupPath names a timestamped archive in the backup directory.
func (l Layout) DefaultBackupPath(name string, now time.Time) string {
	ts := now.Format("20060102_150405")
	return filepath.Join(l.BackupDir, fmt.Sprintf("%s-%s.tar.gz", name, ts))
}
