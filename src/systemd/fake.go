package systemd

import (
	"context"
	"fmt"
	"io"
)

// Fake is an in-memory Manager for unit tests. Operations are recorded in
// Calls; FailOn injects an error for a given operation name.
type Fake struct {
	Units   map[string]Unit
	Enabled map[string]bool
	Active  map[string]bool
	Calls   []string
	FailOn  map[string]error
	LogText string
}

func NewFake() *Fake {
	return &Fake{
		Units:   map[string]Unit{},
		Enabled: map[string]bool{},
		Active:  map[string]bool{},
		FailOn:  map[string]error{},
	}
}

var _ Manager = (*Fake)(nil)

func (f *Fake) record(op, name string) error {
	f.Calls = append(f.Calls, op+" "+name)
	return f.FailOn[op]
}

func (f *Fake) Install(unit Unit) error {
	if err := f.record("install", unit.Name); err != nil {
		return err
	}
	f.Units[unit.Name] = unit
	return nil
}

func (f *Fake) Uninstall(name string) error {
	if err := f.record("uninstall", name); err != nil {
		return err
	}
	delete(f.Units, name)
	delete(f.Enabled, name)
	delete(f.Active, name)
	return nil
}

func (f *Fake) Enable(name string) error {
	if err := f.record("enable", name); err != nil {
		return err
	}
	if _, ok := f.Units[name]; !ok {
		return fmt.Errorf("unit not found: %s", name)
	}
	f.Enabled[name] = true
	return nil
}

func (f *Fake) Disable(name string) error {
	if err := f.record("disable", name); err != nil {
		return err
	}
	delete(f.Enabled, name)
	return nil
}

func (f *Fake) Start(name string) error {
	if err := f.record("start", name); err != nil {
		return err
	}
	if _, ok := f.Units[name]; !ok {
		return fmt.Errorf("unit not found: %s", name)
	}
	f.Active[name] = true
	return nil
}

func (f *Fake) Stop(name string) error {
	if err := f.record("stop", name); err != nil {
		return err
	}
	delete(f.Active, name)
	return nil
}

func (f *Fake) Restart(name string) error {
	if err := f.record("restart", name); err != nil {
		return err
	}
	if _, ok := f.Units[name]; !ok {
		return fmt.Errorf("unit not found: %s", name)
	}
	f.Active[name] = true
	return nil
}

func (f *Fake) IsActive(name string) (string, error) {
	if err := f.FailOn["is-active"]; err != nil {
		return "unknown", err
	}
	if f.Active[name] {
		return "active", nil
	}
	return "inactive", nil
}

func (f *Fake) IsEnabled(name string) (bool, error) {
	return f.Enabled[name], nil
}

func (f *Fake) Logs(ctx context.Context, name string, follow bool, lines int, out io.Writer) error {
	if err := f.record("logs", name); err != nil {
		return err
	}
	_, err := io.WriteString(out, f.LogText)
	return err
}
