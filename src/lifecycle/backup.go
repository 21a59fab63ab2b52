package lifecycle

import (
	"github.com/google/uuid"

	"openclaw-manager/src/archive"
)

// BackupResult summarizes a written archive.
type BackupResult struct {
	Path     string
	Size     int64
	SHA256   string
	Manifest archive.Manifest
}

// Backup archives the instance's state directory, config, and service
// unit together with a manifest. An empty dest picks a timestamped file
// in the backup directory.
func (o *Orchestrator) Backup(name, dest string) (BackupResult, error) {
	inst, err := o.Registry.Get(name)
	if err != nil {
		return BackupResult{}, err
	}
	now := o.now()
	if dest == "" {
		dest = o.Layout.DefaultBackupPath(name, now)
	}

	o.printf("Backing up instance %q to %s...\n", name, dest)

	mf := archive.Manifest{
		Type:       "instance",
		ID:         uuid.NewString(),
		Name:       inst.Name,
		Port:       inst.Port,
		Model:      inst.Model,
		CreatedAt:  inst.CreatedAt,
		BackupTime: now.UTC(),
	}
	size, err := archive.Create(dest, mf, inst.StateDir, inst.ConfigPath, o.Layout.UnitPath(name))
	if err != nil {
		return BackupResult{}, err
	}
	sum, err := archive.Sha256File(dest)
	if err != nil {
		return BackupResult{}, err
	}
	return BackupResult{Path: dest, Size: size, SHA256: sum, Manifest: mf}, nil
}
