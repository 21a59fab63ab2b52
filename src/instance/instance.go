package instance

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ReservedName is the profile name of the main OpenClaw installation.
// Instances may inherit from it but one can never be created or deleted
// under this name.
const ReservedName = "main"

// MaxNameLength bounds instance names so derived unit and file names stay
// well under filesystem and systemd limits.
const MaxNameLength = 32

var (
	// ErrInvalidName rejects names that are unsafe to embed in paths,
	// unit names, and firewall comments.
	ErrInvalidName = errors.New("invalid instance name")

	// ErrNotFound means no instance with that name exists on disk.
	ErrNotFound = errors.New("instance not found")
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Instance is one isolated OpenClaw deployment, reconstructed from the
// filesystem on every operation. Service state is deliberately absent:
// systemd is the only authority on it and must be queried, not cached.
type Instance struct {
	Name      string
	Port      int
	Model     string
	CreatedAt time.Time

	StateDir   string
	ConfigPath string
}

// ValidateName checks that a proposed instance name is safe to use in
// paths, service names, and shell arguments.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidName, name, MaxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (use only letters, digits, hyphens, and underscores)", ErrInvalidName, name)
	}
	if name == ReservedName {
		return fmt.Errorf("%w: %q is reserved for the main installation", ErrInvalidName, name)
	}
	return nil
}
