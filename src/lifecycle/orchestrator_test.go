package lifecycle_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"openclaw-manager/src/config"
	"openclaw-manager/src/firewall"
	"openclaw-manager/src/instance"
	"openclaw-manager/src/lifecycle"
	"openclaw-manager/src/paths"
	"openclaw-manager/src/ports"
	"openclaw-manager/src/settings"
	"openclaw-manager/src/systemd"
)

// The main installation holds the base port, so the first instance lands
// on base+step.
var testBaseConfig = []byte(`{
  "agents": {"defaults": {"model": {"primary": "anthropic/claude"}}},
  "providers": {"anthropic": {"baseURL": "https://api.example.com", "apiKey": "sk-test"}},
  "gateway": {"port": 18789, "auth": {"token": "main-token"}}
}`)

type fixture struct {
	orch    *lifecycle.Orchestrator
	systemd *systemd.Fake
	fw      *firewall.Fake
	layout  paths.Layout
	out     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := t.TempDir()
	st := settings.Default(home)
	layout := paths.NewLayout(home, st)
	if err := os.MkdirAll(layout.ConfigDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.BaseConfigPath(), testBaseConfig, 0o644); err != nil {
		t.Fatal(err)
	}
	sd := systemd.NewFake()
	fw := firewall.NewFake()
	out := &bytes.Buffer{}
	orch := &lifecycle.Orchestrator{
		Layout:   layout,
		Registry: instance.NewRegistry(layout),
		Allocator: ports.Allocator{
			Base:        st.BasePort,
			Step:        st.PortStep,
			MaxAttempts: 64,
			Listening:   func(int) bool { return false },
		},
		Systemd:      sd,
		Firewall:     fw,
		FirewallMode: st.Firewall,
		Out:          out,
	}
	return &fixture{orch: orch, systemd: sd, fw: fw, layout: layout, out: out}
}

func mustCreate(t *testing.T, f *fixture, name string, opts lifecycle.CreateOptions) instance.Instance {
	t.Helper()
	inst, err := f.orch.Create(name, opts)
	if err != nil {
		t.Fatalf("Create(%s): %v", name, err)
	}
	return inst
}

func TestCreate_HappyPath(t *testing.T) {
	f := newFixture(t)
	inst := mustCreate(t, f, "worker1", lifecycle.CreateOptions{})

	if inst.Port != 18809 {
		t.Fatalf("port = %d, want 18809 (base port belongs to the main install)", inst.Port)
	}
	for _, sub := range []string{"workspace", filepath.Join("agents", "main", "sessions"), "credentials"} {
		if _, err := os.Stat(filepath.Join(f.layout.StateDir("worker1"), sub)); err != nil {
			t.Fatalf("state subdir %s missing: %v", sub, err)
		}
	}
	doc, err := config.LoadFile(f.layout.ConfigPath("worker1"))
	if err != nil {
		t.Fatalf("instance config: %v", err)
	}
	if got := config.IntAt(doc, "gateway.port"); got != 18809 {
		t.Fatalf("config port = %d, want 18809", got)
	}

	service := f.layout.ServiceName("worker1")
	if _, ok := f.systemd.Units[service]; !ok {
		t.Fatalf("unit %s not installed", service)
	}
	if !f.systemd.Enabled[service] {
		t.Fatalf("unit %s not enabled", service)
	}
	if f.systemd.Active[service] {
		t.Fatalf("unit %s started without --start", service)
	}
	if got := f.fw.Rules[18809]; got != "OpenClaw worker1" {
		t.Fatalf("firewall rule comment = %q", got)
	}
}

func TestCreate_StartOption(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{Start: true})
	if !f.systemd.Active[f.layout.ServiceName("worker1")] {
		t.Fatalf("service not started despite Start option")
	}
}

func TestCreate_SequentialPorts(t *testing.T) {
	f := newFixture(t)
	first := mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	second := mustCreate(t, f, "worker2", lifecycle.CreateOptions{})
	if first.Port != 18809 || second.Port != 18829 {
		t.Fatalf("ports = %d, %d, want 18809, 18829", first.Port, second.Port)
	}
}

func TestCreate_ModelOverride(t *testing.T) {
	f := newFixture(t)
	inst := mustCreate(t, f, "worker1", lifecycle.CreateOptions{Model: "openai/gpt-x"})
	if inst.Model != "openai/gpt-x" {
		t.Fatalf("model = %q, want openai/gpt-x", inst.Model)
	}
}

func TestCreate_RequestedPortInUse(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{Port: 19000})
	_, err := f.orch.Create("worker2", lifecycle.CreateOptions{Port: 19000})
	if !errors.Is(err, lifecycle.ErrPortInUse) {
		t.Fatalf("err = %v, want ErrPortInUse", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	_, err := f.orch.Create("worker1", lifecycle.CreateOptions{})
	if !errors.Is(err, lifecycle.ErrNameInUse) {
		t.Fatalf("err = %v, want ErrNameInUse", err)
	}
}

func TestCreate_InvalidName(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Create("bad name", lifecycle.CreateOptions{})
	if !errors.Is(err, instance.ErrInvalidName) {
		t.Fatalf("err = %v, want ErrInvalidName", err)
	}
}

func TestCreate_MissingBaseConfig_NoSideEffects(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.layout.BaseConfigPath()); err != nil {
		t.Fatal(err)
	}
	_, err := f.orch.Create("worker1", lifecycle.CreateOptions{})
	if !errors.Is(err, config.ErrMissingBaseConfig) {
		t.Fatalf("err = %v, want ErrMissingBaseConfig", err)
	}
	if _, err := os.Stat(f.layout.StateDir("worker1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("state dir created despite config failure")
	}
	if len(f.systemd.Calls) != 0 {
		t.Fatalf("systemd touched despite config failure: %v", f.systemd.Calls)
	}
}

func TestCreate_RollbackOnUnitInstallFailure(t *testing.T) {
	f := newFixture(t)
	f.systemd.FailOn["install"] = errors.New("daemon-reload refused")

	_, err := f.orch.Create("worker1", lifecycle.CreateOptions{})
	if err == nil || !strings.Contains(err.Error(), "daemon-reload refused") {
		t.Fatalf("err = %v, want root cause preserved", err)
	}
	if _, err := os.Stat(f.layout.StateDir("worker1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("state dir not rolled back")
	}
	if _, err := os.Stat(f.layout.ConfigPath("worker1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config file not rolled back")
	}
}

func TestCreate_RollbackOnEnableFailure(t *testing.T) {
	f := newFixture(t)
	f.systemd.FailOn["enable"] = errors.New("enable refused")

	_, err := f.orch.Create("worker1", lifecycle.CreateOptions{})
	if err == nil || !strings.Contains(err.Error(), "enable refused") {
		t.Fatalf("err = %v, want root cause preserved", err)
	}
	if _, ok := f.systemd.Units[f.layout.ServiceName("worker1")]; ok {
		t.Fatalf("unit left installed after rollback")
	}
	if _, err := os.Stat(f.layout.StateDir("worker1")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("state dir not rolled back")
	}
}

func TestCreate_FirewallFailureIsWarning(t *testing.T) {
	f := newFixture(t)
	f.fw.FailOn["allow"] = errors.New("ufw exploded")

	if _, err := f.orch.Create("worker1", lifecycle.CreateOptions{}); err != nil {
		t.Fatalf("Create: %v (firewall failure must not fail create)", err)
	}
	if !strings.Contains(f.out.String(), "Warning:") {
		t.Fatalf("no warning emitted, output: %q", f.out.String())
	}
}

func TestCreate_FirewallOffMode(t *testing.T) {
	f := newFixture(t)
	f.orch.FirewallMode = settings.FirewallOff
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	if len(f.fw.Rules) != 0 {
		t.Fatalf("firewall touched in off mode: %v", f.fw.Rules)
	}
}

func TestCreate_ConcurrentSameName(t *testing.T) {
	f := newFixture(t)
	// Both goroutines print progress; the shared test buffer is not
	// goroutine safe.
	f.orch.Out = io.Discard

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orch.Create("worker1", lifecycle.CreateOptions{})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, lifecycle.ErrNameInUse):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("won = %d, lost = %d, want exactly one of each", won, lost)
	}
	// The winner's instance must have survived the loser's failure.
	if _, err := f.orch.Registry.Get("worker1"); err != nil {
		t.Fatalf("winner's instance missing: %v", err)
	}
}

func TestDelete_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	inst := mustCreate(t, f, "worker1", lifecycle.CreateOptions{Start: true})

	if err := f.orch.Delete("worker1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(inst.StateDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("state dir still present")
	}
	if _, err := os.Stat(inst.ConfigPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config file still present")
	}
	if _, ok := f.systemd.Units[f.layout.ServiceName("worker1")]; ok {
		t.Fatalf("unit still installed")
	}
	if _, ok := f.fw.Rules[inst.Port]; ok {
		t.Fatalf("firewall rule still present")
	}
	if f.orch.Registry.Exists("worker1") {
		t.Fatalf("instance still registered")
	}
}

func TestDelete_UnknownName_NoSideEffects(t *testing.T) {
	f := newFixture(t)
	err := f.orch.Delete("ghost")
	if !errors.Is(err, instance.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(f.systemd.Calls) != 0 {
		t.Fatalf("systemd touched for unknown instance: %v", f.systemd.Calls)
	}
}

func TestDelete_CollectsStepFailures(t *testing.T) {
	f := newFixture(t)
	inst := mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	f.systemd.FailOn["stop"] = errors.New("stop refused")
	f.systemd.FailOn["uninstall"] = errors.New("uninstall refused")

	err := f.orch.Delete("worker1")
	var partial *lifecycle.PartialError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want *PartialError", err)
	}
	if len(partial.Steps) != 2 {
		t.Fatalf("failed steps = %d, want 2: %v", len(partial.Steps), partial.Steps)
	}
	// Later steps still ran: the files are gone even though systemd failed.
	if _, err := os.Stat(inst.StateDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("state dir not removed after partial failure")
	}
	if _, err := os.Stat(inst.ConfigPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("config not removed after partial failure")
	}
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	inst := mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	marker := filepath.Join(inst.StateDir, "workspace", "marker.txt")
	if err := os.WriteFile(marker, []byte("keep me\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := f.orch.Backup("worker1", "")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if res.Size <= 0 || res.SHA256 == "" {
		t.Fatalf("backup result = %+v", res)
	}
	if res.Manifest.Name != "worker1" || res.Manifest.Port != inst.Port {
		t.Fatalf("manifest = %+v", res.Manifest)
	}

	if err := f.orch.Delete("worker1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Another instance now holds the old port; restore must allocate fresh.
	blocker := mustCreate(t, f, "blocker", lifecycle.CreateOptions{})
	if blocker.Port != inst.Port {
		t.Fatalf("blocker port = %d, want %d", blocker.Port, inst.Port)
	}

	restored, err := f.orch.Restore(res.Path, lifecycle.RestoreOptions{})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Name != "worker1" {
		t.Fatalf("restored name = %q", restored.Name)
	}
	if restored.Port == blocker.Port {
		t.Fatalf("restore reused an occupied port %d", restored.Port)
	}
	data, err := os.ReadFile(filepath.Join(restored.StateDir, "workspace", "marker.txt"))
	if err != nil {
		t.Fatalf("restored state missing: %v", err)
	}
	if string(data) != "keep me\n" {
		t.Fatalf("restored state = %q", data)
	}
	doc, err := config.LoadFile(restored.ConfigPath)
	if err != nil {
		t.Fatalf("restored config: %v", err)
	}
	if got := config.IntAt(doc, "gateway.port"); got != restored.Port {
		t.Fatalf("restored config port = %d, want %d", got, restored.Port)
	}
	if !f.systemd.Enabled[f.layout.ServiceName("worker1")] {
		t.Fatalf("restored service not enabled")
	}
}

func TestRestore_ExistingNameNeedsReplace(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	res, err := f.orch.Backup("worker1", "")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	_, err = f.orch.Restore(res.Path, lifecycle.RestoreOptions{})
	if !errors.Is(err, lifecycle.ErrNameInUse) {
		t.Fatalf("err = %v, want ErrNameInUse", err)
	}

	restored, err := f.orch.Restore(res.Path, lifecycle.RestoreOptions{Replace: true})
	if err != nil {
		t.Fatalf("Restore with Replace: %v", err)
	}
	if restored.Name != "worker1" {
		t.Fatalf("restored name = %q", restored.Name)
	}
}

func TestRestore_RenamedInstance(t *testing.T) {
	f := newFixture(t)
	mustCreate(t, f, "worker1", lifecycle.CreateOptions{})
	res, err := f.orch.Backup("worker1", "")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}

	restored, err := f.orch.Restore(res.Path, lifecycle.RestoreOptions{Name: "clone"})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Name != "clone" {
		t.Fatalf("restored name = %q, want clone", restored.Name)
	}
	if restored.StateDir != f.layout.StateDir("clone") {
		t.Fatalf("restored state dir = %q", restored.StateDir)
	}
	doc, err := config.LoadFile(restored.ConfigPath)
	if err != nil {
		t.Fatalf("restored config: %v", err)
	}
	if got := config.StringAt(doc, "agents.defaults.workspace"); got != f.layout.Workspace("clone") {
		t.Fatalf("workspace = %q, want %q", got, f.layout.Workspace("clone"))
	}
}

func TestBackup_UnknownInstance(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Backup("ghost", "")
	if !errors.Is(err, instance.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
