package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	s, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default(home)
	if s != want {
		t.Fatalf("settings = %+v, want defaults %+v", s, want)
	}
	if s.BasePort != 18789 || s.PortStep != 20 || s.Firewall != FirewallAuto {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	home := t.TempDir()
	if err := os.MkdirAll(filepath.Dir(Path(home)), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "base_port: 20000\nfirewall: \"off\"\n"
	if err := os.WriteFile(Path(home), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(home)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.BasePort != 20000 {
		t.Fatalf("base port = %d, want 20000", s.BasePort)
	}
	if s.Firewall != FirewallOff {
		t.Fatalf("firewall = %q, want off", s.Firewall)
	}
	// Keys absent from the file keep their defaults.
	if s.PortStep != 20 {
		t.Fatalf("port step = %d, want default 20", s.PortStep)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad port", "base_port: 99999\n"},
		{"bad step", "port_step: 0\n"},
		{"bad firewall", "firewall: sometimes\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			home := t.TempDir()
			if err := os.MkdirAll(filepath.Dir(Path(home)), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(Path(home), []byte(tc.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(home); err == nil {
				t.Fatalf("Load accepted %q", tc.body)
			}
		})
	}
}
